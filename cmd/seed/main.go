// Command seed loads a small demo dataset: one account per role, two
// listings, and a pending booking ready to approve.
package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"rentalhousing/internal/config"
	"rentalhousing/internal/database"
	"rentalhousing/internal/domain"
	"rentalhousing/internal/repository"
)

const demoPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	listings := repository.NewListingRepository(db)
	bookings := repository.NewBookingRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("failed to hash demo password")
	}

	seedUsers := []*domain.User{
		{Email: "admin@example.com", Role: domain.RoleAdmin, Name: "Admin"},
		{Email: "moderator@example.com", Role: domain.RoleModerator, Name: "Mira Moderator"},
		{Email: "lessor@example.com", Role: domain.RoleLessor, Name: "Lena Lessor"},
		{Email: "renter@example.com", Role: domain.RoleRenter, Name: "Rita Renter"},
	}
	for _, u := range seedUsers {
		exists, err := users.EmailExists(ctx, u.Email)
		if err != nil {
			log.WithError(err).Fatal("failed to check user")
		}
		if exists {
			log.WithField("email", u.Email).Info("user already seeded, skipping")
			existing, err := users.GetByEmail(ctx, u.Email)
			if err != nil {
				log.WithError(err).Fatal("failed to load user")
			}
			*u = *existing
			continue
		}
		u.PasswordHash = string(hash)
		if err := users.Create(ctx, u); err != nil {
			log.WithError(err).WithField("email", u.Email).Fatal("failed to create user")
		}
		log.WithFields(log.Fields{"email": u.Email, "role": u.Role}).Info("created user")
	}
	lessor, renter := seedUsers[2], seedUsers[3]

	existing, err := listings.List(ctx, repository.ListingFilter{OwnerID: lessor.ID, IncludeHidden: true})
	if err != nil {
		log.WithError(err).Fatal("failed to list listings")
	}
	if len(existing) > 0 {
		log.Info("listings already seeded, nothing to do")
		return
	}

	seaView := &domain.Listing{
		OwnerID:          lessor.ID,
		Title:            "Sea view apartment",
		Description:      "Two rooms, five minutes from the beach.",
		Location:         "Promenade 12",
		City:             "Valencia",
		Country:          "Spain",
		Type:             domain.TypeApartment,
		Price:            9500,
		Currency:         "EUR",
		Rooms:            2,
		GuestsMax:        4,
		BabyCribsMax:     1,
		SpanDaysMin:      2,
		SpanDaysMax:      30,
		HasKitchen:       domain.AvailabilityYes,
		ParkingAvailable: domain.AvailabilityUnknown,
		PetsPossible:     domain.AvailabilityNo,
		IsActive:         true,
	}
	cabin := &domain.Listing{
		OwnerID:          lessor.ID,
		Title:            "Forest cabin",
		Location:         "Old Mill Road 3",
		City:             "Innsbruck",
		Country:          "Austria",
		Type:             domain.TypeHouse,
		Price:            14000,
		Currency:         "EUR",
		Rooms:            3,
		GuestsMax:        6,
		HasKitchen:       domain.AvailabilityYes,
		ParkingAvailable: domain.AvailabilityYes,
		PetsPossible:     domain.AvailabilityYes,
		IsActive:         true,
	}
	for _, l := range []*domain.Listing{seaView, cabin} {
		if err := listings.Create(ctx, l); err != nil {
			log.WithError(err).WithField("title", l.Title).Fatal("failed to create listing")
		}
		log.WithFields(log.Fields{"id": l.ID, "title": l.Title}).Info("created listing")
	}

	start := time.Now().UTC().AddDate(0, 0, 14)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	b := &domain.Booking{
		ListingID:   seaView.ID,
		RenterID:    renter.ID,
		StartDate:   start,
		EndDate:     end,
		Guests:      2,
		Status:      domain.BookingPending,
		CancelHours: 48,
		TotalCost:   5 * seaView.Price,
	}
	if err := bookings.Create(ctx, b); err != nil {
		log.WithError(err).Fatal("failed to create booking")
	}
	log.WithFields(log.Fields{"id": b.ID, "listing_id": b.ListingID}).Info("created pending booking")

	log.WithField("password", demoPassword).Info("demo data ready")
}
