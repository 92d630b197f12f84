package listing

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

// RegisterRoutes mounts the catalogue on two groups: browsing works without
// a token, management requires one.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/listings", h.List)
	public.GET("/listings/:id", h.Get)

	protected.POST("/listings", h.Create)
	protected.GET("/listings/mine", h.ListMine)
	protected.PATCH("/listings/:id", h.Update)
	protected.POST("/listings/:id/activate", h.Activate)
	protected.POST("/listings/:id/deactivate", h.Deactivate)
}

func (h *Handler) Create(c *gin.Context) {
	role := actorRole(c)
	if role != domain.RoleLessor && !role.CanModerate() {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only lessors can create listings")
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	l, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"listing": l})
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	listings, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listings": listings})
}

func (h *Handler) ListMine(c *gin.Context) {
	listings, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listings": listings})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), actorRole(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	l, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), actorRole(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) Activate(c *gin.Context)   { h.setActive(c, true) }
func (h *Handler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	l, err := h.service.SetActive(c.Request.Context(), c.GetInt64("user_id"), actorRole(c), id, active)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listing": l})
}

func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return 0, false
	}
	return id, true
}

func actorRole(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString("role"))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Forbidden")
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidSpan):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Listing operation failed")
	}
}
