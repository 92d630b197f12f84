// Package events defines the payloads emitted by the booking engine after a
// committed write. The email worker consumes them from the message broker;
// the websocket feed pushes them to connected users.
package events

const (
	KeyBookingCreated       = "booking.created"
	KeyBookingStatusChanged = "booking.status_changed"
)

type BookingEvent struct {
	BookingID int64  `json:"booking_id"`
	ListingID int64  `json:"listing_id"`
	RenterID  int64  `json:"renter_id"`
	LessorID  int64  `json:"lessor_id"`
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TotalCost int64  `json:"total_cost"`

	RenterEmail string `json:"renter_email,omitempty"`
	LessorEmail string `json:"lessor_email,omitempty"`

	// Summary is a human-readable line used as the mail body.
	Summary string `json:"summary"`
}
