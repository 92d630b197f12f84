package booking

import (
	"time"

	"rentalhousing/internal/domain"
)

// candidate is the normalized booking context built once per validation:
// listing snapshot plus the candidate fields, so the individual checks never
// have to null-coalesce.
type candidate struct {
	renterID  int64
	startDate time.Time
	endDate   time.Time
	guests    int
	babyCribs int

	kitchenNeeded domain.Availability
	parkingNeeded domain.Availability
	pets          domain.Availability

	// excludeID skips the booking's own row when validating an update.
	excludeID int64
}

func (c candidate) spanDays() int {
	return int(c.endDate.Sub(c.startDate).Hours() / 24)
}

// approvedOverlapFn asks the overlap index whether any live approved booking
// of the listing intersects [start, end).
type approvedOverlapFn func(start, end time.Time, excludeID int64) (bool, error)

// validateCandidate runs the ordered check battery. First failure wins; the
// cheap authorization-flavored checks run before the interval query. Returns
// a *Rejection for field errors, ErrDatesOverlap for interval conflicts.
func validateCandidate(c candidate, l *domain.Listing, today time.Time, hasApprovedOverlap approvedOverlapFn) error {
	if c.renterID == l.OwnerID {
		return reject("renter_id", "self_booking", "Owner cannot book their own listing.")
	}

	if !l.IsActive {
		return reject("listing_id", "listing_inactive", "Listing %d is inactive and cannot be booked.", l.ID)
	}

	if !c.endDate.After(c.startDate) {
		return reject("end_date", "date_order", "end_date (%s) must be after start date (%s).",
			c.endDate.Format("2006-01-02"), c.startDate.Format("2006-01-02"))
	}

	if c.startDate.Before(today) {
		return reject("start_date", "date_past", "The booking start date (%s) must be in the future.",
			c.startDate.Format("2006-01-02"))
	}

	span := c.spanDays()
	if min := l.EffectiveMinSpan(); min > 0 && span < min {
		return reject("span_days", "span_too_short", "Reservation must be at least %d nights.", min)
	}
	if max := l.EffectiveMaxSpan(); span > max {
		return reject("span_days", "span_too_long", "Reservations cannot exceed %d nights.", max)
	}

	overlap, err := hasApprovedOverlap(c.startDate, c.endDate, c.excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return ErrDatesOverlap
	}

	if limit := l.GuestLimit(); limit > 0 && c.guests > limit {
		return reject("guests", "guests_limit", "Guests exceed the listing limit (max: %d).", limit)
	}
	if limit := l.CribLimit(); limit > 0 && c.babyCribs > limit {
		return reject("baby_cribs", "baby_cribs_limit", "Baby cribs exceed the listing limit (max: %d).", limit)
	}

	// a needed flag only blocks when the listing says an explicit no; unknown
	// availability never blocks
	if c.kitchenNeeded == domain.AvailabilityYes && l.Kitchen() == domain.AvailabilityNo {
		return reject("kitchen_needed", "kitchen_unavailable", "Kitchen is not available for this listing.")
	}
	if c.parkingNeeded == domain.AvailabilityYes && l.Parking() == domain.AvailabilityNo {
		return reject("parking_needed", "parking_unavailable", "Parking is not available for this listing.")
	}
	if c.pets == domain.AvailabilityYes && l.Pets() == domain.AvailabilityNo {
		return reject("pets", "pets_not_possible", "Pets is not possible for this listing.")
	}

	if c.guests < 1 {
		return reject("guests", "guests_min", "Guests must be >= 1.")
	}
	if c.babyCribs < 0 {
		return reject("baby_cribs", "baby_cribs_min", "Baby cribs must be >= 0.")
	}

	return nil
}
