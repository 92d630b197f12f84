package domain

import "time"

type Review struct {
	ID           int64      `json:"id"`
	ListingID    int64      `json:"listing_id"`
	BookingID    int64      `json:"booking_id"`
	AuthorID     int64      `json:"author_id"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment,omitempty" gorm:"type:text"`
	OwnerComment string     `json:"owner_comment,omitempty" gorm:"type:text"`
	IsValid      bool       `json:"is_valid"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
