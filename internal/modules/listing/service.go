package listing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/repository"
)

type Service struct {
	listings ListingRepository
	bookings BookingRecalculator
	views    ViewRecorder
}

func NewService(listings ListingRepository, bookings BookingRecalculator, views ViewRecorder) *Service {
	return &Service{listings: listings, bookings: bookings, views: views}
}

func availabilityFromBool(v *bool) domain.Availability {
	switch {
	case v == nil:
		return domain.AvailabilityUnknown
	case *v:
		return domain.AvailabilityYes
	default:
		return domain.AvailabilityNo
	}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreateListingRequest) (*domain.Listing, error) {
	lt := domain.ListingType(req.Type)
	switch lt {
	case domain.TypeVilla, domain.TypeHouse, domain.TypeApartment,
		domain.TypePenthouse, domain.TypeStudio, domain.TypeRoom, domain.TypeOther:
	default:
		return nil, ErrInvalidType
	}

	if req.SpanDaysMin > 0 && req.SpanDaysMax > 0 && req.SpanDaysMin > req.SpanDaysMax {
		return nil, ErrInvalidSpan
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	l := &domain.Listing{
		OwnerID:          ownerID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		City:             req.City,
		Country:          req.Country,
		Type:             lt,
		Price:            req.Price,
		Currency:         currency,
		Rooms:            req.Rooms,
		GuestsMax:        req.GuestsMax,
		BabyCribsMax:     req.BabyCribsMax,
		SpanDaysMin:      req.SpanDaysMin,
		SpanDaysMax:      req.SpanDaysMax,
		HasKitchen:       availabilityFromBool(req.HasKitchen),
		ParkingAvailable: availabilityFromBool(req.ParkingAvailable),
		PetsPossible:     availabilityFromBool(req.PetsPossible),
		IsActive:         true,
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, actorID int64, role domain.UserRole, id int64, req UpdateListingRequest) (*domain.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.CanModerate() && l.OwnerID != actorID {
		return nil, ErrNotFound
	}

	oldPrice := l.Price

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Location != nil {
		l.Location = *req.Location
	}
	if req.City != nil {
		l.City = *req.City
	}
	if req.Country != nil {
		l.Country = *req.Country
	}
	if req.Type != nil {
		lt := domain.ListingType(*req.Type)
		switch lt {
		case domain.TypeVilla, domain.TypeHouse, domain.TypeApartment,
			domain.TypePenthouse, domain.TypeStudio, domain.TypeRoom, domain.TypeOther:
			l.Type = lt
		default:
			return nil, ErrInvalidType
		}
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Currency != nil {
		l.Currency = *req.Currency
	}
	if req.Rooms != nil {
		l.Rooms = *req.Rooms
	}
	if req.GuestsMax != nil {
		l.GuestsMax = *req.GuestsMax
	}
	if req.BabyCribsMax != nil {
		l.BabyCribsMax = *req.BabyCribsMax
	}
	if req.SpanDaysMin != nil {
		l.SpanDaysMin = *req.SpanDaysMin
	}
	if req.SpanDaysMax != nil {
		l.SpanDaysMax = *req.SpanDaysMax
	}
	if req.HasKitchen != nil {
		l.HasKitchen = availabilityFromBool(req.HasKitchen)
	}
	if req.ParkingAvailable != nil {
		l.ParkingAvailable = availabilityFromBool(req.ParkingAvailable)
	}
	if req.PetsPossible != nil {
		l.PetsPossible = availabilityFromBool(req.PetsPossible)
	}
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}

	if l.SpanDaysMin > 0 && l.SpanDaysMax > 0 && l.SpanDaysMin > l.SpanDaysMax {
		return nil, ErrInvalidSpan
	}

	if err := s.listings.Update(ctx, l); err != nil {
		return nil, err
	}

	// Pending bookings keep their quote in sync with the listing price.
	if l.Price != oldPrice && s.bookings != nil {
		n, err := s.bookings.RecalcPendingForListing(ctx, l.ID, l.Price)
		if err != nil {
			logrus.WithError(err).WithField("listing_id", l.ID).
				Warn("failed to recalculate pending booking costs")
		} else if n > 0 {
			logrus.WithFields(logrus.Fields{"listing_id": l.ID, "bookings": n}).
				Info("recalculated pending booking costs after price change")
		}
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, actorID int64, role domain.UserRole, id int64) (*domain.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Hidden listings stay visible to their owner and to moderators.
	if !l.IsActive && !role.CanModerate() && l.OwnerID != actorID {
		return nil, ErrNotFound
	}

	if s.views != nil && actorID != l.OwnerID {
		if err := s.views.RecordView(ctx, l.ID, actorID); err != nil {
			logrus.WithError(err).WithField("listing_id", l.ID).Debug("failed to record listing view")
		}
	}

	return l, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Listing, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.listings.List(ctx, repository.ListingFilter{
		City:   q.City,
		Limit:  limit,
		Offset: q.Offset,
	})
}

func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	return s.listings.List(ctx, repository.ListingFilter{
		OwnerID:       ownerID,
		IncludeHidden: true,
	})
}

func (s *Service) SetActive(ctx context.Context, actorID int64, role domain.UserRole, id int64, active bool) (*domain.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.CanModerate() && l.OwnerID != actorID {
		return nil, ErrNotFound
	}

	if err := s.listings.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	l.IsActive = active
	return l, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}
