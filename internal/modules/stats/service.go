package stats

import (
	"context"

	"rentalhousing/internal/domain"
)

type StatsRepository interface {
	Get(ctx context.Context, listingID int64) (*domain.ListingStats, error)
	RecordView(ctx context.Context, v *domain.ListingView) error
}

type Service struct {
	stats StatsRepository
}

func NewService(stats StatsRepository) *Service {
	return &Service{stats: stats}
}

func (s *Service) Get(ctx context.Context, listingID int64) (*domain.ListingStats, error) {
	return s.stats.Get(ctx, listingID)
}

// RecordView counts a listing page view. Anonymous viewers pass viewerID 0.
func (s *Service) RecordView(ctx context.Context, listingID, viewerID int64) error {
	v := &domain.ListingView{ListingID: listingID}
	if viewerID > 0 {
		v.UserID = &viewerID
	}
	return s.stats.RecordView(ctx, v)
}
