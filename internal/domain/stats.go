package domain

import "time"

// ListingStats is the aggregated counter row for a listing. It is a read/write
// collaborator of the listing and review services, not part of the booking
// engine's correctness.
type ListingStats struct {
	ListingID    int64     `json:"listing_id" gorm:"primaryKey"`
	ViewsCount   int64     `json:"views_count"`
	ReviewsCount int64     `json:"reviews_count"`
	AvgRating    float64   `json:"avg_rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ListingStats) TableName() string { return "listing_stats" }

// ListingView is one recorded view of a listing page.
type ListingView struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ListingView) TableName() string { return "listing_views" }
