package review

import (
	"context"

	"rentalhousing/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	Update(ctx context.Context, rv *domain.Review) error
	GetByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error)
	Aggregates(ctx context.Context, listingID int64) (int64, float64, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type ListingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// StatsUpdater receives recomputed aggregates after every review write.
type StatsUpdater interface {
	SetReviewAggregates(ctx context.Context, listingID, count int64, avg float64) error
}
