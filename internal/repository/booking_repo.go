package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalhousing/internal/domain"
)

var (
	// ErrApproveConflict is returned when the approve-time re-check (or the
	// Postgres exclusion constraint) finds another live approved booking with
	// an intersecting date range.
	ErrApproveConflict = errors.New("dates overlap with another approved booking")

	// ErrStatusChanged is returned when a conditional status update matched no
	// row, meaning the booking moved to a different state concurrently.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ListingID     int64     `gorm:"column:listing_id"`
	RenterID      int64     `gorm:"column:renter_id"`
	StartDate     time.Time `gorm:"column:start_date"`
	EndDate       time.Time `gorm:"column:end_date"`
	Guests        int       `gorm:"column:guests"`
	BabyCribs     int       `gorm:"column:baby_cribs"`
	KitchenNeeded string    `gorm:"column:kitchen_needed"`
	ParkingNeeded string    `gorm:"column:parking_needed"`
	Pets          string    `gorm:"column:pets"`
	Status        string    `gorm:"column:status"`
	CancelHours   int       `gorm:"column:cancel_hours"`
	TotalCost     int64     `gorm:"column:total_cost"`
	ReasonCancel  *string   `gorm:"column:reason_cancel"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var reason string
	if m.ReasonCancel != nil {
		reason = *m.ReasonCancel
	}

	return &domain.Booking{
		ID:            m.ID,
		ListingID:     m.ListingID,
		RenterID:      m.RenterID,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Guests:        m.Guests,
		BabyCribs:     m.BabyCribs,
		KitchenNeeded: domain.Availability(m.KitchenNeeded),
		ParkingNeeded: domain.Availability(m.ParkingNeeded),
		Pets:          domain.Availability(m.Pets),
		Status:        domain.BookingStatus(m.Status),
		CancelHours:   m.CancelHours,
		TotalCost:     m.TotalCost,
		ReasonCancel:  reason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var reason *string
	if b.ReasonCancel != "" {
		v := b.ReasonCancel
		reason = &v
	}

	return bookingModel{
		ID:            b.ID,
		ListingID:     b.ListingID,
		RenterID:      b.RenterID,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Guests:        b.Guests,
		BabyCribs:     b.BabyCribs,
		KitchenNeeded: string(b.KitchenNeeded),
		ParkingNeeded: string(b.ParkingNeeded),
		Pets:          string(b.Pets),
		Status:        string(b.Status),
		CancelHours:   b.CancelHours,
		TotalCost:     b.TotalCost,
		ReasonCancel:  reason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// FindConflicts is the overlap index: bookings of the listing in the given
// status whose half-open [start_date, end_date) intersects [start, end) and
// which are not finished before notFinishedBefore. excludeID skips one booking
// (used when validating an update against the booking's own row).
func (r *BookingRepository) FindConflicts(
	ctx context.Context,
	listingID int64,
	start, end time.Time,
	status domain.BookingStatus,
	excludeID int64,
	notFinishedBefore time.Time,
) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("listing_id = ? AND status = ?", listingID, string(status)).
		Where("end_date > ?", notFinishedBefore).
		Where("start_date < ? AND end_date > ?", end, start)

	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []bookingModel
	if err := q.Order("start_date").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ApproveWithCascade moves a pending booking to approved and, in the same
// transaction, declines every overlapping pending booking of the listing. The
// overlap re-check runs against locked rows immediately before the status
// write; on Postgres the bookings_no_overlap_excl constraint backs it up at
// commit time. Returns the ids of the auto-declined bookings.
func (r *BookingRepository) ApproveWithCascade(ctx context.Context, b *domain.Booking, today time.Time) ([]int64, error) {
	var declined []int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&bookingModel{}).
			Where("listing_id = ? AND status = ? AND end_date > ?", b.ListingID, string(domain.BookingApproved), today).
			Where("start_date < ? AND end_date > ?", b.EndDate, b.StartDate).
			Where("id <> ?", b.ID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var approved []bookingModel
		if err := q.Find(&approved).Error; err != nil {
			return err
		}
		if len(approved) > 0 {
			return ErrApproveConflict
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", b.ID, string(domain.BookingPending)).
			Update("status", string(domain.BookingApproved))
		if res.Error != nil {
			if isExclusionViolation(res.Error) {
				return ErrApproveConflict
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		// cascade: overlapping pendings of the same listing are declined
		// unconditionally, with a machine-generated reason.
		var pendings []bookingModel
		if err := tx.Model(&bookingModel{}).
			Where("listing_id = ? AND status = ? AND end_date > ?", b.ListingID, string(domain.BookingPending), today).
			Where("start_date < ? AND end_date > ?", b.EndDate, b.StartDate).
			Where("id <> ?", b.ID).
			Find(&pendings).Error; err != nil {
			return err
		}

		if len(pendings) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(pendings))
		for _, p := range pendings {
			ids = append(ids, p.ID)
		}
		reason := fmt.Sprintf("Dates overlap with approved booking #%d", b.ID)
		if err := tx.Model(&bookingModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":        string(domain.BookingDeclined),
				"reason_cancel": reason,
			}).Error; err != nil {
			return err
		}

		declined = ids
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrApproveConflict
		}
		return nil, err
	}

	return declined, nil
}

// UpdateStatus is a compare-and-swap on status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// CancelWithReason cancels from pending or approved and records the renter's
// reason.
func (r *BookingRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status IN ?", id, []string{string(domain.BookingPending), string(domain.BookingApproved)}).
		Updates(map[string]any{
			"status":        string(domain.BookingCancelled),
			"reason_cancel": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("start_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// ListByOwner returns bookings placed against any listing of the owner.
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// HasCompletedForListing reports whether the renter finished a stay at the
// listing; reviews are gated on it.
func (r *BookingRepository) HasCompletedForListing(ctx context.Context, renterID, listingID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("renter_id = ? AND listing_id = ? AND status = ?", renterID, listingID, string(domain.BookingCompleted)).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// RecalcPendingForListing recomputes total_cost of pending bookings after a
// listing price change. Returns the number of updated bookings.
func (r *BookingRepository) RecalcPendingForListing(ctx context.Context, listingID, price int64) (int, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, string(domain.BookingPending)).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, m := range rows {
		b := toDomainBooking(m)
		cost := int64(b.Nights()) * price
		if cost == m.TotalCost {
			continue
		}
		if err := r.db.WithContext(ctx).Model(&bookingModel{}).
			Where("id = ?", m.ID).
			Update("total_cost", cost).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap_excl"
	}
	return false
}
