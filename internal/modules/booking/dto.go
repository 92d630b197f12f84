package booking

import (
	"time"

	"rentalhousing/internal/domain"
)

const dateLayout = "2006-01-02"

// DefaultCancelHours applies when a create request does not set cancel_hours.
const DefaultCancelHours = 48

type CreateBookingRequest struct {
	ListingID int64  `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`

	Guests    int `json:"guests"`
	BabyCribs int `json:"baby_cribs"`

	// nil = unknown, true = needed, false = not needed
	KitchenNeeded *bool `json:"kitchen_needed"`
	ParkingNeeded *bool `json:"parking_needed"`
	Pets          *bool `json:"pets"`

	CancelHours *int `json:"cancel_hours"`
}

type UpdateBookingRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`

	Guests    *int `json:"guests"`
	BabyCribs *int `json:"baby_cribs"`

	KitchenNeeded *bool `json:"kitchen_needed"`
	ParkingNeeded *bool `json:"parking_needed"`
	Pets          *bool `json:"pets"`

	CancelHours *int `json:"cancel_hours"`
}

type ActionRequest struct {
	ReasonCancel string `json:"reason_cancel"`
}

type ActionResponse struct {
	ID     int64                `json:"id"`
	Status domain.BookingStatus `json:"status"`
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, reject(field, "date_format", "%s must be an ISO-8601 calendar date (YYYY-MM-DD).", field)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func availabilityFromBool(p *bool) domain.Availability {
	switch {
	case p == nil:
		return domain.AvailabilityUnknown
	case *p:
		return domain.AvailabilityYes
	default:
		return domain.AvailabilityNo
	}
}
