package registration

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendex/event-portal-backend/internal/events"
)

type Handler struct {
	service *Service
	intake  *Intake
}

func NewHandler(service *Service, intake *Intake) *Handler {
	return &Handler{service: service, intake: intake}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	evs := rg.Group("/events/:id")
	{
		evs.GET("/scanner", h.Scanner)
		evs.GET("/scans/pending", h.Pending)
		evs.POST("/scans/:tag/claim", h.Claim)
	}
}

// Scanner upgrades the connection for a bridge device.
func (h *Handler) Scanner(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	h.intake.Serve(c.Writer, c.Request, eventID)
}

func (h *Handler) Pending(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	frames, err := h.service.PendingSlots(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": frames})
}

type claimRequest struct {
	AttendeeID uuid.UUID `json:"attendee_id" binding:"required"`
}

func (h *Handler) Claim(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendee, err := h.service.ClaimSlot(c.Request.Context(), eventID, c.Param("tag"), req.AttendeeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, events.ErrAttendeeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, attendee)
}
