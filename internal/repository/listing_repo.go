package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"rentalhousing/internal/domain"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

type listingModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	OwnerID          int64     `gorm:"column:owner_id"`
	Title            string    `gorm:"column:title"`
	Description      *string   `gorm:"column:description"`
	Location         string    `gorm:"column:location"`
	City             *string   `gorm:"column:city"`
	Country          string    `gorm:"column:country"`
	Type             string    `gorm:"column:type"`
	Price            int64     `gorm:"column:price"`
	Currency         string    `gorm:"column:currency"`
	Rooms            int       `gorm:"column:rooms"`
	GuestsMax        int       `gorm:"column:guests_max"`
	BabyCribsMax     int       `gorm:"column:baby_cribs_max"`
	SpanDaysMin      int       `gorm:"column:span_days_min"`
	SpanDaysMax      int       `gorm:"column:span_days_max"`
	HasKitchen       string    `gorm:"column:has_kitchen"`
	ParkingAvailable string    `gorm:"column:parking_available"`
	PetsPossible     string    `gorm:"column:pets_possible"`
	IsActive         bool      `gorm:"column:is_active"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (listingModel) TableName() string { return "listings" }

func toDomainListing(m listingModel) *domain.Listing {
	var description, city string
	if m.Description != nil {
		description = *m.Description
	}
	if m.City != nil {
		city = *m.City
	}

	return &domain.Listing{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		Title:            m.Title,
		Description:      description,
		Location:         m.Location,
		City:             city,
		Country:          m.Country,
		Type:             domain.ListingType(m.Type),
		Price:            m.Price,
		Currency:         m.Currency,
		Rooms:            m.Rooms,
		GuestsMax:        m.GuestsMax,
		BabyCribsMax:     m.BabyCribsMax,
		SpanDaysMin:      m.SpanDaysMin,
		SpanDaysMax:      m.SpanDaysMax,
		HasKitchen:       domain.Availability(m.HasKitchen),
		ParkingAvailable: domain.Availability(m.ParkingAvailable),
		PetsPossible:     domain.Availability(m.PetsPossible),
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toListingModel(l *domain.Listing) listingModel {
	var description, city *string
	if l.Description != "" {
		v := l.Description
		description = &v
	}
	if l.City != "" {
		v := l.City
		city = &v
	}

	return listingModel{
		ID:               l.ID,
		OwnerID:          l.OwnerID,
		Title:            l.Title,
		Description:      description,
		Location:         l.Location,
		City:             city,
		Country:          l.Country,
		Type:             string(l.Type),
		Price:            l.Price,
		Currency:         l.Currency,
		Rooms:            l.Rooms,
		GuestsMax:        l.GuestsMax,
		BabyCribsMax:     l.BabyCribsMax,
		SpanDaysMin:      l.SpanDaysMin,
		SpanDaysMax:      l.SpanDaysMax,
		HasKitchen:       string(l.HasKitchen),
		ParkingAvailable: string(l.ParkingAvailable),
		PetsPossible:     string(l.PetsPossible),
		IsActive:         l.IsActive,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	m := toListingModel(l)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*l = *toDomainListing(m)
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	m := toListingModel(l)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*l = *toDomainListing(m)
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var m listingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainListing(m), nil
}

type ListingFilter struct {
	City          string
	OwnerID       int64
	IncludeHidden bool
	Limit         int
	Offset        int
}

func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]domain.Listing, error) {
	q := r.db.WithContext(ctx).Model(&listingModel{})

	if !f.IncludeHidden {
		q = q.Where("is_active = ?", true)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.OwnerID > 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	q = q.Offset(f.Offset).Order("created_at DESC")

	var rows []listingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Listing, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainListing(m))
	}
	return out, nil
}

func (r *ListingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&listingModel{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
