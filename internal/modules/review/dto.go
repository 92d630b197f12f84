package review

type CreateReviewRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

type RespondRequest struct {
	OwnerComment string `json:"owner_comment" binding:"required"`
}

type ModerateRequest struct {
	IsValid bool `json:"is_valid"`
}
