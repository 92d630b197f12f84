package listing

type CreateListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"required"`
	City        string `json:"city"`
	Country     string `json:"country" binding:"required"`
	Type        string `json:"type" binding:"required"`

	Price    int64  `json:"price" binding:"required,gt=0"`
	Currency string `json:"currency"`

	Rooms        int `json:"rooms"`
	GuestsMax    int `json:"guests_max"`
	BabyCribsMax int `json:"baby_cribs_max"`
	SpanDaysMin  int `json:"span_days_min"`
	SpanDaysMax  int `json:"span_days_max"`

	HasKitchen       *bool `json:"has_kitchen"`
	ParkingAvailable *bool `json:"parking_available"`
	PetsPossible     *bool `json:"pets_possible"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	Type        *string `json:"type"`

	Price    *int64  `json:"price"`
	Currency *string `json:"currency"`

	Rooms        *int `json:"rooms"`
	GuestsMax    *int `json:"guests_max"`
	BabyCribsMax *int `json:"baby_cribs_max"`
	SpanDaysMin  *int `json:"span_days_min"`
	SpanDaysMax  *int `json:"span_days_max"`

	HasKitchen       *bool `json:"has_kitchen"`
	ParkingAvailable *bool `json:"parking_available"`
	PetsPossible     *bool `json:"pets_possible"`

	IsActive *bool `json:"is_active"`
}

type ListQuery struct {
	City   string `form:"city"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
