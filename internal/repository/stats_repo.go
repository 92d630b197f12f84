package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalhousing/internal/domain"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Get(ctx context.Context, listingID int64) (*domain.ListingStats, error) {
	var s domain.ListingStats
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		FirstOrInit(&s, domain.ListingStats{ListingID: listingID}).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordView stores the view row and bumps the counter in one transaction.
func (r *StatsRepository) RecordView(ctx context.Context, v *domain.ListingView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}

		stats := domain.ListingStats{ListingID: v.ListingID, ViewsCount: 1}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}},
			DoUpdates: clause.Assignments(map[string]any{"views_count": gorm.Expr("listing_stats.views_count + 1")}),
		}).Create(&stats).Error
	})
}

// SetReviewAggregates overwrites the review counters after a review write.
func (r *StatsRepository) SetReviewAggregates(ctx context.Context, listingID, count int64, avg float64) error {
	stats := domain.ListingStats{
		ListingID:    listingID,
		ReviewsCount: count,
		AvgRating:    avg,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"reviews_count": count,
			"avg_rating":    avg,
		}),
	}).Create(&stats).Error
}
