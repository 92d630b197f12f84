package booking

import (
	"context"
	"time"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/events"
)

// BookingRepository is the transactional store behind the engine. It must be
// re-queryable (no cached snapshots): FindConflicts runs once per validation
// and again inside the approve transaction.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindConflicts(ctx context.Context, listingID int64, start, end time.Time, status domain.BookingStatus, excludeID int64, notFinishedBefore time.Time) ([]domain.Booking, error)
	ApproveWithCascade(ctx context.Context, b *domain.Booking, today time.Time) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	CancelWithReason(ctx context.Context, id int64, reason string) error
	ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error)
	ListByListing(ctx context.Context, listingID int64) ([]domain.Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Booking, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// UserDirectory resolves actor and counterpart emails for event payloads.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// NotificationSender is fire-and-forget: failures are logged by the
// implementation and never fail the booking operation.
type NotificationSender interface {
	BookingCreated(ctx context.Context, ev events.BookingEvent) error
	BookingStatusChanged(ctx context.Context, ev events.BookingEvent) error
}
