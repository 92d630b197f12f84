package database

import (
	"fmt"

	"gorm.io/gorm"

	"rentalhousing/internal/domain"
)

// Migrate brings the schema up to date and installs the Postgres exclusion
// constraint that keeps overlapping approved bookings out at commit time.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Booking{},
		&domain.Review{},
		&domain.ListingStats{},
		&domain.ListingView{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := ensureBookingIndexes(db); err != nil {
		return err
	}

	return ensureNoOverlapConstraint(db)
}

func ensureBookingIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_bookings_listing_dates ON bookings (listing_id, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_booking ON reviews (booking_id)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// ensureNoOverlapConstraint adds the store-level guarantee behind the
// approve-time overlap re-check: two approved bookings for one listing can
// never hold intersecting [start_date, end_date) ranges. SQLite has no
// exclusion constraints, so local development relies on the in-transaction
// re-check alone.
func ensureNoOverlapConstraint(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("create btree_gist extension: %w", err)
	}

	const stmt = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap_excl') THEN
		ALTER TABLE bookings
			ADD CONSTRAINT bookings_no_overlap_excl
			EXCLUDE USING gist (
				listing_id WITH =,
				daterange(start_date::date, end_date::date, '[)') WITH &&
			)
			WHERE (status = 'approved');
	END IF;
END
$$;
`
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create no-overlap constraint: %w", err)
	}
	return nil
}
