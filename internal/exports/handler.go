package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendex/event-portal-backend/internal/events"
)

// AttendanceSource is the slice of the events service the download
// endpoints need.
type AttendanceSource interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	ListAttendees(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]events.Attendee, error)
}

// Handler serves attendance sheets as downloads.
type Handler struct {
	source AttendanceSource
}

func NewHandler(source AttendanceSource) *Handler {
	return &Handler{source: source}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	evs := rg.Group("/events/:id/export")
	{
		evs.GET("/attendance.xlsx", h.AttendanceXLSX)
		evs.GET("/attendance.csv", h.AttendanceCSV)
	}
}

func (h *Handler) AttendanceXLSX(c *gin.Context) {
	event, attendees, ok := h.load(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := AttendanceXLSX(&buf, event, attendees); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := fmt.Sprintf("attendance-%s.xlsx", event.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) AttendanceCSV(c *gin.Context) {
	event, attendees, ok := h.load(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := AttendanceCSV(&buf, attendees); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := fmt.Sprintf("attendance-%s.csv", event.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) load(c *gin.Context) (*events.Event, []events.Attendee, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return nil, nil, false
	}

	checkedInOnly := c.Query("checked_in") == "true"

	event, err := h.source.GetEvent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, nil, false
	}

	attendees, err := h.source.ListAttendees(c.Request.Context(), id, checkedInOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return event, attendees, true
}
