package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"rentalhousing/internal/domain"
)

// ErrDuplicateReview is returned when a booking already has a review. The
// idx_reviews_booking unique index is the source of truth.
var ErrDuplicateReview = errors.New("booking already reviewed")

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Save(rv).Error
}

func (r *ReviewRepository) GetByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error) {
	var out []domain.Review
	q := r.db.WithContext(ctx).
		Where("listing_id = ? AND is_valid = ?", listingID, true).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregates returns the valid-review count and average rating for a listing.
func (r *ReviewRepository) Aggregates(ctx context.Context, listingID int64) (int64, float64, error) {
	type agg struct {
		Cnt int64
		Avg float64
	}
	var a agg
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COUNT(1) AS cnt, COALESCE(AVG(rating), 0) AS avg").
		Where("listing_id = ? AND is_valid = ?", listingID, true).
		Scan(&a).Error
	if err != nil {
		return 0, 0, err
	}
	return a.Cnt, a.Avg, nil
}
