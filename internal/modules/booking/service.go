package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/events"
	"rentalhousing/internal/repository"
)

type Service struct {
	bookings BookingRepository
	listings ListingRepository
	users    UserDirectory
	notifs   NotificationSender

	// injected clock; "today" is the local calendar date
	now func() time.Time
	loc *time.Location
}

func NewService(
	bookings BookingRepository,
	listings ListingRepository,
	users UserDirectory,
	notifs NotificationSender,
) *Service {
	return &Service{
		bookings: bookings,
		listings: listings,
		users:    users,
		notifs:   notifs,
		now:      time.Now,
		loc:      time.UTC,
	}
}

// today returns the current local calendar date at midnight UTC, matching how
// booking dates are stored.
func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) approvedOverlapFn(ctx context.Context, listingID int64) approvedOverlapFn {
	return func(start, end time.Time, excludeID int64) (bool, error) {
		conflicts, err := s.bookings.FindConflicts(ctx, listingID, start, end, domain.BookingApproved, excludeID, s.today())
		if err != nil {
			return false, err
		}
		return len(conflicts) > 0, nil
	}
}

func (s *Service) Create(ctx context.Context, renterID int64, req CreateBookingRequest) (*domain.Booking, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c := candidate{
		renterID:      renterID,
		startDate:     start,
		endDate:       end,
		guests:        req.Guests,
		babyCribs:     req.BabyCribs,
		kitchenNeeded: availabilityFromBool(req.KitchenNeeded),
		parkingNeeded: availabilityFromBool(req.ParkingNeeded),
		pets:          availabilityFromBool(req.Pets),
	}
	if err := validateCandidate(c, listing, s.today(), s.approvedOverlapFn(ctx, listing.ID)); err != nil {
		return nil, err
	}

	cancelHours := DefaultCancelHours
	if req.CancelHours != nil && *req.CancelHours >= 0 {
		cancelHours = *req.CancelHours
	}

	b := &domain.Booking{
		ListingID:     listing.ID,
		RenterID:      renterID,
		StartDate:     start,
		EndDate:       end,
		Guests:        req.Guests,
		BabyCribs:     req.BabyCribs,
		KitchenNeeded: c.kitchenNeeded,
		ParkingNeeded: c.parkingNeeded,
		Pets:          c.pets,
		Status:        domain.BookingPending,
		CancelHours:   cancelHours,
	}
	b.TotalCost = int64(b.Nights()) * listing.Price

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.BookingCreated(ctx, s.buildEvent(ctx, b, listing, ""))
	}

	return b, nil
}

// Update edits a pending booking's dates, counts or flags and recomputes
// total_cost. Only the renter or an admin may edit, and only while pending.
func (s *Service) Update(ctx context.Context, id, actorID int64, actorRole domain.UserRole, req UpdateBookingRequest) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !(actorRole == domain.RoleAdmin || b.RenterID == actorID) {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	if req.StartDate != nil {
		if b.StartDate, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if b.EndDate, err = parseDate("end_date", *req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.Guests != nil {
		b.Guests = *req.Guests
	}
	if req.BabyCribs != nil {
		b.BabyCribs = *req.BabyCribs
	}
	if req.KitchenNeeded != nil {
		b.KitchenNeeded = availabilityFromBool(req.KitchenNeeded)
	}
	if req.ParkingNeeded != nil {
		b.ParkingNeeded = availabilityFromBool(req.ParkingNeeded)
	}
	if req.Pets != nil {
		b.Pets = availabilityFromBool(req.Pets)
	}
	if req.CancelHours != nil && *req.CancelHours >= 0 {
		b.CancelHours = *req.CancelHours
	}

	c := candidate{
		renterID:      b.RenterID,
		startDate:     b.StartDate,
		endDate:       b.EndDate,
		guests:        b.Guests,
		babyCribs:     b.BabyCribs,
		kitchenNeeded: b.KitchenNeeded,
		parkingNeeded: b.ParkingNeeded,
		pets:          b.Pets,
		excludeID:     b.ID,
	}
	if err := validateCandidate(c, listing, s.today(), s.approvedOverlapFn(ctx, listing.ID)); err != nil {
		return nil, err
	}

	b.TotalCost = int64(b.Nights()) * listing.Price

	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get hides bookings from unrelated actors as not-found rather than
// forbidden, so the response does not leak which bookings exist.
func (s *Service) Get(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole.CanModerate() || b.RenterID == actorID || listing.OwnerID == actorID {
		return b, nil
	}
	return nil, ErrNotFound
}

// List returns the actor's view: renters see their bookings, lessors the
// bookings on their listings, admins and moderators everything.
func (s *Service) List(ctx context.Context, actorID int64, actorRole domain.UserRole, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	switch {
	case actorRole.CanModerate():
		return s.bookings.ListAll(ctx, limit, offset)
	case actorRole == domain.RoleLessor:
		return s.bookings.ListByOwner(ctx, actorID, limit, offset)
	default:
		return s.bookings.ListByRenter(ctx, actorID, limit, offset)
	}
}

// Approve moves a pending booking to approved and auto-declines overlapping
// pending bookings of the same listing. The conflict re-check and the cascade
// run inside one repository transaction; events are emitted only after it has
// committed.
func (s *Service) Approve(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLessorAction(listing, actorID, actorRole); err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	declinedIDs, err := s.bookings.ApproveWithCascade(ctx, b, s.today())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrApproveConflict):
			return nil, ErrApproveRace
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	old := b.Status
	b.Status = domain.BookingApproved
	s.emitStatusChange(ctx, b, listing, old)

	for _, declinedID := range declinedIDs {
		db, err := s.bookings.GetByID(ctx, declinedID)
		if err != nil {
			continue
		}
		s.emitStatusChange(ctx, db, listing, domain.BookingPending)
	}

	return b, nil
}

func (s *Service) Decline(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLessorAction(listing, actorID, actorRole); err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingDeclined); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	old := b.Status
	b.Status = domain.BookingDeclined
	s.emitStatusChange(ctx, b, listing, old)

	return b, nil
}

// Cancel is renter-initiated and deadline-bound. Cancelling an already
// cancelled booking is an explicit no-op success.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, actorRole domain.UserRole, reason string) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !(actorRole == domain.RoleAdmin || b.RenterID == actorID) {
		return nil, ErrForbidden
	}

	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingApproved {
		return nil, ErrInvalidStatusTransition
	}
	if !b.CanCancelAt(s.now(), s.loc) {
		return nil, ErrCancelDeadlinePassed
	}

	if err := s.bookings.CancelWithReason(ctx, b.ID, reason); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	old := b.Status
	b.Status = domain.BookingCancelled
	b.ReasonCancel = reason
	s.emitStatusChange(ctx, b, listing, old)

	return b, nil
}

// Complete marks an approved booking as finished once checkout has passed.
// Completing an already completed booking is an explicit no-op success.
func (s *Service) Complete(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLessorAction(listing, actorID, actorRole); err != nil {
		return nil, err
	}

	if b.Status == domain.BookingCompleted {
		return b, nil
	}
	if b.Status != domain.BookingApproved {
		return nil, ErrInvalidStatusTransition
	}
	if b.EndDate.After(s.today()) {
		return nil, ErrNotCheckedOut
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingApproved, domain.BookingCompleted); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	old := b.Status
	b.Status = domain.BookingCompleted
	s.emitStatusChange(ctx, b, listing, old)

	return b, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, *domain.Listing, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	listing, err := s.listings.GetByID(ctx, b.ListingID)
	if err != nil {
		return nil, nil, err
	}
	return b, listing, nil
}

// authorizeLessorAction guards approve, decline and complete: listing owner,
// admin or moderator.
func (s *Service) authorizeLessorAction(listing *domain.Listing, actorID int64, actorRole domain.UserRole) error {
	if actorRole.CanModerate() {
		return nil
	}
	if actorRole == domain.RoleLessor && listing.OwnerID == actorID {
		return nil
	}
	return ErrForbidden
}

func (s *Service) buildEvent(ctx context.Context, b *domain.Booking, listing *domain.Listing, old domain.BookingStatus) events.BookingEvent {
	ev := events.BookingEvent{
		BookingID: b.ID,
		ListingID: b.ListingID,
		RenterID:  b.RenterID,
		LessorID:  listing.OwnerID,
		OldStatus: string(old),
		NewStatus: string(b.Status),
		StartDate: b.StartDate.Format(dateLayout),
		EndDate:   b.EndDate.Format(dateLayout),
		TotalCost: b.TotalCost,
	}

	if old == "" {
		ev.Summary = fmt.Sprintf("Booking %s (ID: %d) from %s to %s (total cost: %d) has been created.",
			listing.Title, b.ID, ev.StartDate, ev.EndDate, b.TotalCost)
	} else {
		ev.Summary = fmt.Sprintf("Booking %s (ID: %d) has changed: from %s to %s, total cost: %d, status: %s.",
			listing.Title, b.ID, ev.StartDate, ev.EndDate, b.TotalCost, b.Status)
	}

	if u, err := s.users.GetByID(ctx, b.RenterID); err == nil {
		ev.RenterEmail = u.Email
	}
	if u, err := s.users.GetByID(ctx, listing.OwnerID); err == nil {
		ev.LessorEmail = u.Email
	}
	return ev
}

func (s *Service) emitStatusChange(ctx context.Context, b *domain.Booking, listing *domain.Listing, old domain.BookingStatus) {
	if s.notifs == nil {
		return
	}
	_ = s.notifs.BookingStatusChanged(ctx, s.buildEvent(ctx, b, listing, old))
}
