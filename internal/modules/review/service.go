package review

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/repository"
)

type Service struct {
	reviews  ReviewRepository
	bookings BookingReader
	listings ListingReader
	stats    StatsUpdater

	now func() time.Time
}

func NewService(reviews ReviewRepository, bookings BookingReader, listings ListingReader, stats StatsUpdater) *Service {
	return &Service{
		reviews:  reviews,
		bookings: bookings,
		listings: listings,
		stats:    stats,
		now:      time.Now,
	}
}

// Create records a renter review. Only the renter of a completed booking may
// review, and each booking carries at most one review.
func (s *Service) Create(ctx context.Context, authorID int64, req CreateReviewRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.RenterID != authorID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrNotCompleted
	}

	rv := &domain.Review{
		ListingID: b.ListingID,
		BookingID: b.ID,
		AuthorID:  authorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		IsValid:   true,
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	s.refreshAggregates(ctx, rv.ListingID)
	return rv, nil
}

// Respond lets the listing owner attach a single reply to a review.
func (s *Service) Respond(ctx context.Context, actorID int64, role domain.UserRole, reviewID int64, req RespondRequest) (*domain.Review, error) {
	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	l, err := s.listings.GetByID(ctx, rv.ListingID)
	if err != nil {
		return nil, err
	}
	if !role.CanModerate() && l.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if rv.OwnerComment != "" {
		return nil, ErrAlreadyAnswered
	}

	now := s.now()
	rv.OwnerComment = req.OwnerComment
	rv.RespondedAt = &now

	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Moderate toggles review visibility. Invalid reviews drop out of listings
// and aggregates.
func (s *Service) Moderate(ctx context.Context, role domain.UserRole, reviewID int64, req ModerateRequest) (*domain.Review, error) {
	if !role.CanModerate() {
		return nil, ErrForbidden
	}

	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	rv.IsValid = req.IsValid
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.refreshAggregates(ctx, rv.ListingID)
	return rv, nil
}

func (s *Service) ListByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.reviews.GetByListing(ctx, listingID, limit, offset)
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

// refreshAggregates is best effort. Stats lag behind rather than failing the
// review write.
func (s *Service) refreshAggregates(ctx context.Context, listingID int64) {
	if s.stats == nil {
		return
	}
	count, avg, err := s.reviews.Aggregates(ctx, listingID)
	if err == nil {
		err = s.stats.SetReviewAggregates(ctx, listingID, count, avg)
	}
	if err != nil {
		logrus.WithError(err).WithField("listing_id", listingID).
			Warn("failed to refresh review aggregates")
	}
}
