package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingDeclined  BookingStatus = "declined"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingApproved, BookingDeclined, BookingCancelled, BookingCompleted:
		return BookingStatus(s), true
	}
	return "", false
}

// bookingTransitions is the closed transition table. declined, cancelled and
// completed are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingDeclined, BookingCancelled},
	BookingApproved: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID        int64 `json:"id"`
	ListingID int64 `json:"listing_id"`
	RenterID  int64 `json:"renter_id"`

	// Half-open interval [StartDate, EndDate); calendar dates at midnight UTC.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Guests    int `json:"guests"`
	BabyCribs int `json:"baby_cribs"`

	KitchenNeeded Availability `json:"kitchen_needed"`
	ParkingNeeded Availability `json:"parking_needed"`
	Pets          Availability `json:"pets"`

	Status BookingStatus `json:"status"`

	// CancelHours is how many hours before 00:00 of StartDate cancellation is
	// still allowed. 0 = non-refundable.
	CancelHours  int    `json:"cancel_hours"`
	TotalCost    int64  `json:"total_cost"`
	ReasonCancel string `json:"reason_cancel,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Nights returns the stay length in nights, never below 1.
func (b *Booking) Nights() int {
	n := int(b.EndDate.Sub(b.StartDate).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Overlaps applies the half-open interval rule: [a0,a1) and [b0,b1) intersect
// iff a0 < b1 && b0 < a1.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

// CancelDeadline returns the last instant at which the renter may cancel:
// midnight of StartDate in loc minus CancelHours. With CancelHours == 0 the
// window is permanently closed, expressed as a deadline far in the past.
func (b *Booking) CancelDeadline(loc *time.Location) time.Time {
	midnight := time.Date(b.StartDate.Year(), b.StartDate.Month(), b.StartDate.Day(), 0, 0, 0, 0, loc)
	if b.CancelHours == 0 {
		return midnight.AddDate(-10, 0, 0)
	}
	return midnight.Add(-time.Duration(b.CancelHours) * time.Hour)
}

func (b *Booking) CanCancelAt(now time.Time, loc *time.Location) bool {
	return !now.After(b.CancelDeadline(loc))
}

// Live reports whether the booking still occupies its interval for conflict
// purposes: approved and not yet finished.
func (b *Booking) Live(today time.Time) bool {
	return b.Status == BookingApproved && b.EndDate.After(today)
}
