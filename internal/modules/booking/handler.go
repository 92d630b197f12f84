package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalhousing/internal/domain"
	"rentalhousing/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.List)
	rg.GET("/bookings/:id", h.Get)
	rg.PATCH("/bookings/:id", h.Update)
	rg.POST("/bookings/:id/approve", h.Approve)
	rg.POST("/bookings/:id/decline", h.Decline)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/complete", h.Complete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), actorRole(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Approve(c *gin.Context) {
	h.action(c, func(id int64) (*domain.Booking, error) {
		return h.service.Approve(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c))
	})
}

func (h *Handler) Decline(c *gin.Context) {
	h.action(c, func(id int64) (*domain.Booking, error) {
		return h.service.Decline(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c))
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	var req ActionRequest
	_ = c.ShouldBindJSON(&req)

	h.action(c, func(id int64) (*domain.Booking, error) {
		return h.service.Cancel(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c), req.ReasonCancel)
	})
}

func (h *Handler) Complete(c *gin.Context) {
	h.action(c, func(id int64) (*domain.Booking, error) {
		return h.service.Complete(c.Request.Context(), id, c.GetInt64("user_id"), actorRole(c))
	})
}

func (h *Handler) action(c *gin.Context, fn func(id int64) (*domain.Booking, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := fn(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ActionResponse{ID: b.ID, Status: b.Status})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func actorRole(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString("role"))
}

// respondError maps engine errors onto the HTTP status classes: validation
// 400, authorization 403, conflicts 409, state errors 400, unknown bookings
// 404.
func respondError(c *gin.Context, err error) {
	var rej *Rejection
	if errors.As(err, &rej) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", rej.Message, gin.H{
			"field": rej.Field,
			"code":  rej.Code,
		})
		return
	}

	switch {
	case errors.Is(err, ErrDatesOverlap), errors.Is(err, ErrApproveRace):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Forbidden")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrCancelDeadlinePassed):
		response.Error(c, http.StatusBadRequest, "STATE_ERROR", "Cancel deadline passed")
	case errors.Is(err, ErrNotCheckedOut):
		response.Error(c, http.StatusBadRequest, "STATE_ERROR", "Cannot complete before checkout date")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusBadRequest, "STATE_ERROR", "Transition not allowed from current status")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Booking operation failed")
	}
}
