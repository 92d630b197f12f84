package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/events"
	"rentalhousing/internal/repository"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 100
	}
	return args.Error(0)
}

func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindConflicts(ctx context.Context, listingID int64, start, end time.Time, status domain.BookingStatus, excludeID int64, notFinishedBefore time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, listingID, start, end, status, excludeID, notFinishedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ApproveWithCascade(ctx context.Context, b *domain.Booking, today time.Time) ([]int64, error) {
	args := m.Called(ctx, b, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockBookingRepo) CancelWithReason(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockBookingRepo) ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, renterID, limit, offset)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByListing(ctx context.Context, listingID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingCreated(ctx context.Context, ev events.BookingEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockNotifier) BookingStatusChanged(ctx context.Context, ev events.BookingEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type fixture struct {
	bookings *mockBookingRepo
	listings *mockListingRepo
	users    *mockUserDirectory
	notifs   *mockNotifier
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		bookings: &mockBookingRepo{},
		listings: &mockListingRepo{},
		users:    &mockUserDirectory{},
		notifs:   &mockNotifier{},
	}
	f.service = NewService(f.bookings, f.listings, f.users, f.notifs)
	f.service.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }

	f.users.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound).Maybe()
	return f
}

func fixtureListing() *domain.Listing {
	return &domain.Listing{
		ID:          1,
		OwnerID:     10,
		Title:       "Sea view apartment",
		Price:       9500,
		GuestsMax:   4,
		SpanDaysMax: 30,
		IsActive:    true,
	}
}

func fixtureBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:          100,
		ListingID:   1,
		RenterID:    20,
		StartDate:   date(2026, 7, 10),
		EndDate:     date(2026, 7, 15),
		Guests:      2,
		Status:      status,
		CancelHours: 48,
		TotalCost:   5 * 9500,
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("FindConflicts", mock.Anything, int64(1), date(2026, 7, 10), date(2026, 7, 15),
		domain.BookingApproved, int64(0), date(2026, 7, 1)).Return([]domain.Booking{}, nil)
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	f.notifs.On("BookingCreated", mock.Anything, mock.AnythingOfType("events.BookingEvent")).Return(nil)

	b, err := f.service.Create(context.Background(), 20, CreateBookingRequest{
		ListingID: 1,
		StartDate: "2026-07-10",
		EndDate:   "2026-07-15",
		Guests:    2,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(5*9500), b.TotalCost)
	assert.Equal(t, DefaultCancelHours, b.CancelHours)
	f.notifs.AssertCalled(t, "BookingCreated", mock.Anything, mock.AnythingOfType("events.BookingEvent"))
}

func TestCreateBookingBadDateFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), 20, CreateBookingRequest{
		ListingID: 1,
		StartDate: "10.07.2026",
		EndDate:   "2026-07-15",
	})

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "start_date", rej.Field)
	f.listings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateBookingUnknownListing(t *testing.T) {
	f := newFixture(t)
	f.listings.On("GetByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.Create(context.Background(), 20, CreateBookingRequest{
		ListingID: 9,
		StartDate: "2026-07-10",
		EndDate:   "2026-07-15",
		Guests:    2,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingOverlapRejected(t *testing.T) {
	f := newFixture(t)

	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("FindConflicts", mock.Anything, int64(1), mock.Anything, mock.Anything,
		domain.BookingApproved, int64(0), mock.Anything).
		Return([]domain.Booking{*fixtureBooking(domain.BookingApproved)}, nil)

	_, err := f.service.Create(context.Background(), 20, CreateBookingRequest{
		ListingID: 1,
		StartDate: "2026-07-12",
		EndDate:   "2026-07-18",
		Guests:    2,
	})

	assert.ErrorIs(t, err, ErrDatesOverlap)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApproveCascadesAndNotifies(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingPending)
	declined := fixtureBooking(domain.BookingDeclined)
	declined.ID = 101
	declined.ReasonCancel = "Dates overlap with approved booking #100"

	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(declined, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("ApproveWithCascade", mock.Anything, b, date(2026, 7, 1)).Return([]int64{101}, nil)

	var notified []events.BookingEvent
	f.notifs.On("BookingStatusChanged", mock.Anything, mock.AnythingOfType("events.BookingEvent")).
		Run(func(args mock.Arguments) {
			notified = append(notified, args.Get(1).(events.BookingEvent))
		}).Return(nil)

	got, err := f.service.Approve(context.Background(), 100, 10, domain.RoleLessor)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, got.Status)

	// one event for the approval, one per cascade-declined booking
	require.Len(t, notified, 2)
	assert.Equal(t, int64(100), notified[0].BookingID)
	assert.Equal(t, string(domain.BookingApproved), notified[0].NewStatus)
	assert.Equal(t, int64(101), notified[1].BookingID)
	assert.Equal(t, string(domain.BookingDeclined), notified[1].NewStatus)
	assert.Equal(t, string(domain.BookingPending), notified[1].OldStatus)
}

func TestApproveConflictMapsToRace(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingPending)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("ApproveWithCascade", mock.Anything, b, mock.Anything).
		Return(nil, repository.ErrApproveConflict)

	_, err := f.service.Approve(context.Background(), 100, 10, domain.RoleLessor)
	assert.ErrorIs(t, err, ErrApproveRace)
	f.notifs.AssertNotCalled(t, "BookingStatusChanged", mock.Anything, mock.Anything)
}

func TestApproveAuthorization(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingPending)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	// the renter cannot approve their own booking
	_, err := f.service.Approve(context.Background(), 100, 20, domain.RoleRenter)
	assert.ErrorIs(t, err, ErrForbidden)

	// an unrelated lessor cannot approve either
	_, err = f.service.Approve(context.Background(), 100, 99, domain.RoleLessor)
	assert.ErrorIs(t, err, ErrForbidden)

	// a moderator can
	f.bookings.On("ApproveWithCascade", mock.Anything, b, mock.Anything).Return([]int64{}, nil)
	f.notifs.On("BookingStatusChanged", mock.Anything, mock.Anything).Return(nil)
	_, err = f.service.Approve(context.Background(), 100, 99, domain.RoleModerator)
	assert.NoError(t, err)
}

func TestApproveNonPending(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingDeclined)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	_, err := f.service.Approve(context.Background(), 100, 10, domain.RoleLessor)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancelWithinDeadline(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("CancelWithReason", mock.Anything, int64(100), "plans changed").Return(nil)
	f.notifs.On("BookingStatusChanged", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.Cancel(context.Background(), 100, 20, domain.RoleRenter, "plans changed")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, "plans changed", got.ReasonCancel)
}

func TestCancelDeadlinePassed(t *testing.T) {
	f := newFixture(t)

	// deadline is 2026-07-08 00:00, clock is past it
	f.service.now = func() time.Time { return time.Date(2026, 7, 9, 12, 0, 0, 0, time.UTC) }

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	_, err := f.service.Cancel(context.Background(), 100, 20, domain.RoleRenter, "")
	assert.ErrorIs(t, err, ErrCancelDeadlinePassed)
	f.bookings.AssertNotCalled(t, "CancelWithReason", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelIdempotent(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingCancelled)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	got, err := f.service.Cancel(context.Background(), 100, 20, domain.RoleRenter, "")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	f.bookings.AssertNotCalled(t, "CancelWithReason", mock.Anything, mock.Anything, mock.Anything)
	f.notifs.AssertNotCalled(t, "BookingStatusChanged", mock.Anything, mock.Anything)
}

func TestCancelForbiddenForLessor(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	// the listing owner cannot cancel on the renter's behalf
	_, err := f.service.Cancel(context.Background(), 100, 10, domain.RoleLessor, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteAfterCheckout(t *testing.T) {
	f := newFixture(t)
	f.service.now = func() time.Time { return time.Date(2026, 7, 16, 9, 0, 0, 0, time.UTC) }

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, int64(100), domain.BookingApproved, domain.BookingCompleted).Return(nil)
	f.notifs.On("BookingStatusChanged", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.Complete(context.Background(), 100, 10, domain.RoleLessor)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
}

func TestCompleteBeforeCheckout(t *testing.T) {
	f := newFixture(t)
	// end date is 2026-07-15; on checkout day completion is allowed, before it is not
	f.service.now = func() time.Time { return time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC) }

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	_, err := f.service.Complete(context.Background(), 100, 10, domain.RoleLessor)
	assert.ErrorIs(t, err, ErrNotCheckedOut)
}

func TestCompleteIdempotent(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingCompleted)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	got, err := f.service.Complete(context.Background(), 100, 10, domain.RoleLessor)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
	f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetHidesUnrelatedBookings(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingPending)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	// renter, listing owner and moderator see the booking
	for _, tc := range []struct {
		actorID int64
		role    domain.UserRole
	}{
		{20, domain.RoleRenter},
		{10, domain.RoleLessor},
		{99, domain.RoleModerator},
	} {
		got, err := f.service.Get(context.Background(), 100, tc.actorID, tc.role)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.ID)
	}

	// an unrelated renter gets not-found, not forbidden
	_, err := f.service.Get(context.Background(), 100, 33, domain.RoleRenter)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)

	f.bookings.On("ListAll", mock.Anything, 50, 0).Return([]domain.Booking{}, nil)
	f.bookings.On("ListByOwner", mock.Anything, int64(10), 50, 0).Return([]domain.Booking{}, nil)
	f.bookings.On("ListByRenter", mock.Anything, int64(20), 50, 0).Return([]domain.Booking{}, nil)

	_, err := f.service.List(context.Background(), 99, domain.RoleAdmin, 0, 0)
	require.NoError(t, err)
	f.bookings.AssertCalled(t, "ListAll", mock.Anything, 50, 0)

	_, err = f.service.List(context.Background(), 10, domain.RoleLessor, 0, 0)
	require.NoError(t, err)
	f.bookings.AssertCalled(t, "ListByOwner", mock.Anything, int64(10), 50, 0)

	_, err = f.service.List(context.Background(), 20, domain.RoleRenter, 0, 0)
	require.NoError(t, err)
	f.bookings.AssertCalled(t, "ListByRenter", mock.Anything, int64(20), 50, 0)
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingApproved)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)

	guests := 3
	_, err := f.service.Update(context.Background(), 100, 20, domain.RoleRenter, UpdateBookingRequest{Guests: &guests})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateRecomputesCost(t *testing.T) {
	f := newFixture(t)

	b := fixtureBooking(domain.BookingPending)
	f.bookings.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
	f.listings.On("GetByID", mock.Anything, int64(1)).Return(fixtureListing(), nil)
	f.bookings.On("FindConflicts", mock.Anything, int64(1), mock.Anything, mock.Anything,
		domain.BookingApproved, int64(100), mock.Anything).Return([]domain.Booking{}, nil)
	f.bookings.On("Update", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)

	end := "2026-07-17"
	got, err := f.service.Update(context.Background(), 100, 20, domain.RoleRenter, UpdateBookingRequest{EndDate: &end})

	require.NoError(t, err)
	assert.Equal(t, int64(7*9500), got.TotalCost)
}
