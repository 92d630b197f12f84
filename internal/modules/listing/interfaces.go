package listing

import (
	"context"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/repository"
)

type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	Update(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, f repository.ListingFilter) ([]domain.Listing, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// BookingRecalculator keeps pending booking costs in sync after a price change.
type BookingRecalculator interface {
	RecalcPendingForListing(ctx context.Context, listingID, price int64) (int, error)
}

type ViewRecorder interface {
	RecordView(ctx context.Context, listingID, viewerID int64) error
}
