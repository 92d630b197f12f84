package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhousing/internal/database"
	"rentalhousing/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDB(t *testing.T) *BookingRepository {
	t.Helper()

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewBookingRepository(db)
}

func seedBooking(t *testing.T, repo *BookingRepository, listingID int64, status domain.BookingStatus, start, end time.Time) *domain.Booking {
	t.Helper()

	b := &domain.Booking{
		ListingID:   listingID,
		RenterID:    20,
		StartDate:   start,
		EndDate:     end,
		Guests:      2,
		Status:      status,
		CancelHours: 48,
		TotalCost:   1000,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

var today = date(2026, 7, 1)

func TestFindConflictsHalfOpenBoundaries(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))

	// back-to-back intervals do not conflict
	got, err := repo.FindConflicts(ctx, 1, date(2026, 7, 15), date(2026, 7, 20), domain.BookingApproved, 0, today)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindConflicts(ctx, 1, date(2026, 7, 5), date(2026, 7, 10), domain.BookingApproved, 0, today)
	require.NoError(t, err)
	assert.Empty(t, got)

	// one shared night conflicts
	got, err = repo.FindConflicts(ctx, 1, date(2026, 7, 14), date(2026, 7, 16), domain.BookingApproved, 0, today)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// containment conflicts
	got, err = repo.FindConflicts(ctx, 1, date(2026, 7, 1), date(2026, 7, 30), domain.BookingApproved, 0, today)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFindConflictsFilters(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	approved := seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))
	seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))
	seedBooking(t, repo, 2, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))

	// status and listing scoping
	got, err := repo.FindConflicts(ctx, 1, date(2026, 7, 10), date(2026, 7, 15), domain.BookingApproved, 0, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, approved.ID, got[0].ID)

	// excludeID skips the booking's own row
	got, err = repo.FindConflicts(ctx, 1, date(2026, 7, 10), date(2026, 7, 15), domain.BookingApproved, approved.ID, today)
	require.NoError(t, err)
	assert.Empty(t, got)

	// stays finished before the horizon do not count
	got, err = repo.FindConflicts(ctx, 1, date(2026, 7, 10), date(2026, 7, 15), domain.BookingApproved, 0, date(2026, 7, 15))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApproveWithCascade(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	target := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))
	overlapping := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 12), date(2026, 7, 18))
	disjoint := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 20), date(2026, 7, 25))
	otherListing := seedBooking(t, repo, 2, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))

	declined, err := repo.ApproveWithCascade(ctx, target, today)
	require.NoError(t, err)
	assert.Equal(t, []int64{overlapping.ID}, declined)

	got, err := repo.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, got.Status)

	got, err = repo.GetByID(ctx, overlapping.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDeclined, got.Status)
	assert.Equal(t, fmt.Sprintf("Dates overlap with approved booking #%d", target.ID), got.ReasonCancel)

	for _, untouched := range []*domain.Booking{disjoint, otherListing} {
		got, err = repo.GetByID(ctx, untouched.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingPending, got.Status)
	}
}

func TestApproveWithCascadeConflict(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 7, 12), date(2026, 7, 18))
	target := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))

	_, err := repo.ApproveWithCascade(ctx, target, today)
	assert.ErrorIs(t, err, ErrApproveConflict)

	got, err := repo.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestApproveWithCascadeFinishedStayDoesNotBlock(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	// an approved stay that already ended frees its interval
	seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 6, 10), date(2026, 6, 15))
	target := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 6, 12), date(2026, 6, 20))

	_, err := repo.ApproveWithCascade(ctx, target, date(2026, 6, 16))
	assert.NoError(t, err)
}

func TestApproveWithCascadeStatusChanged(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	target := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))
	require.NoError(t, repo.UpdateStatus(ctx, target.ID, domain.BookingPending, domain.BookingDeclined))

	_, err := repo.ApproveWithCascade(ctx, target, today)
	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestUpdateStatusCAS(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	b := seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))

	// wrong expected status matches no row
	err := repo.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingDeclined)
	assert.ErrorIs(t, err, ErrStatusChanged)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.BookingApproved, domain.BookingCompleted))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
}

func TestCancelWithReason(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	b := seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))
	require.NoError(t, repo.CancelWithReason(ctx, b.ID, "plans changed"))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, "plans changed", got.ReasonCancel)

	// terminal states cannot be cancelled again
	err = repo.CancelWithReason(ctx, b.ID, "again")
	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestRecalcPendingForListing(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	pending := seedBooking(t, repo, 1, domain.BookingPending, date(2026, 7, 10), date(2026, 7, 15))
	approved := seedBooking(t, repo, 1, domain.BookingApproved, date(2026, 8, 10), date(2026, 8, 15))

	updated, err := repo.RecalcPendingForListing(ctx, 1, 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5*2000), got.TotalCost)

	// approved bookings keep their agreed price
	got, err = repo.GetByID(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.TotalCost)
}

func TestHasCompletedForListing(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	seedBooking(t, repo, 1, domain.BookingCompleted, date(2026, 5, 10), date(2026, 5, 15))
	seedBooking(t, repo, 2, domain.BookingApproved, date(2026, 7, 10), date(2026, 7, 15))

	ok, err := repo.HasCompletedForListing(ctx, 20, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasCompletedForListing(ctx, 20, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.HasCompletedForListing(ctx, 99, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
