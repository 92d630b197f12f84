package stats

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalhousing/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/listings/:id/stats", h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	s, err := h.service.Get(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Stats lookup failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": s})
}
