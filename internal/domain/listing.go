package domain

import "time"

// Availability is a tri-valued facility flag. Unknown never blocks a booking.
type Availability string

const (
	AvailabilityUnknown Availability = "u"
	AvailabilityYes     Availability = "y"
	AvailabilityNo      Availability = "n"
)

func ParseAvailability(s string) (Availability, bool) {
	switch Availability(s) {
	case AvailabilityUnknown, AvailabilityYes, AvailabilityNo:
		return Availability(s), true
	}
	return "", false
}

// normalized returns the flag itself, or unknown for any value outside the
// closed set.
func (a Availability) normalized() Availability {
	if v, ok := ParseAvailability(string(a)); ok {
		return v
	}
	return AvailabilityUnknown
}

type ListingType string

const (
	TypeVilla     ListingType = "villa"
	TypeHouse     ListingType = "house"
	TypeApartment ListingType = "apartment"
	TypePenthouse ListingType = "penthouse"
	TypeStudio    ListingType = "studio"
	TypeRoom      ListingType = "room"
	TypeOther     ListingType = "other"
)

// DefaultMaxSpanDays applies when a listing does not limit the stay length.
const DefaultMaxSpanDays = 365

type Listing struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	Location    string      `json:"location"`
	City        string      `json:"city,omitempty"`
	Country     string      `json:"country"`
	Type        ListingType `json:"type"`

	Price    int64  `json:"price"`
	Currency string `json:"currency"`

	Rooms        int `json:"rooms"`
	GuestsMax    int `json:"guests_max"`
	BabyCribsMax int `json:"baby_cribs_max"`
	SpanDaysMin  int `json:"span_days_min"`
	SpanDaysMax  int `json:"span_days_max"`

	HasKitchen       Availability `json:"has_kitchen"`
	ParkingAvailable Availability `json:"parking_available"`
	PetsPossible     Availability `json:"pets_possible"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveMaxSpan returns the longest allowed stay in nights.
func (l *Listing) EffectiveMaxSpan() int {
	if l.SpanDaysMax > 0 {
		return l.SpanDaysMax
	}
	return DefaultMaxSpanDays
}

// EffectiveMinSpan returns the shortest allowed stay in nights, 0 when the
// listing does not require a minimum.
func (l *Listing) EffectiveMinSpan() int {
	if l.SpanDaysMin > 0 {
		return l.SpanDaysMin
	}
	return 0
}

// GuestLimit returns the guest capacity, 0 = unlimited.
func (l *Listing) GuestLimit() int {
	if l.GuestsMax > 0 {
		return l.GuestsMax
	}
	return 0
}

// CribLimit returns the baby crib capacity, 0 = unlimited.
func (l *Listing) CribLimit() int {
	if l.BabyCribsMax > 0 {
		return l.BabyCribsMax
	}
	return 0
}

func (l *Listing) Kitchen() Availability { return l.HasKitchen.normalized() }
func (l *Listing) Parking() Availability { return l.ParkingAvailable.normalized() }
func (l *Listing) Pets() Availability    { return l.PetsPossible.normalized() }
