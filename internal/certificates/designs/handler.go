package designs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendex/event-portal-backend/internal/certificates/template"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	d := rg.Group("/designs")
	{
		d.POST("", h.Create)
		d.GET("", h.List)
		d.GET("/:id", h.Get)
		d.PUT("/:id", h.Save)
		d.DELETE("/:id", h.Delete)

		d.POST("/:id/elements", h.AddElement)
		d.PATCH("/:id/elements/:elementId", h.UpdateElement)
		d.DELETE("/:id/elements/:elementId", h.RemoveElement)
		d.POST("/:id/elements/:elementId/reorder", h.ReorderLayer)
		d.POST("/:id/elements/:elementId/duplicate", h.DuplicateElement)
		d.POST("/:id/apply-preset", h.ApplyPreset)

		d.GET("/:id/export", h.Export)
		d.POST("/:id/issue", h.Issue)
		d.GET("/:id/runs", h.Runs)
	}
	rg.GET("/design-presets", h.ListPresets)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, design)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("event_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPresets(c *gin.Context) {
	names := PresetNames()
	out := make([]Preset, 0, len(names))
	for _, name := range names {
		p, _ := PresetByName(name)
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	design, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, design)
}

func (h *Handler) Save(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var doc template.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := h.service.SaveDocument(c.Request.Context(), id, doc)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, design)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddElement(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var req struct {
		Kind template.ElementKind `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, elementID, err := h.service.AddElement(c.Request.Context(), id, req.Kind)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"element_id": elementID, "document": doc})
}

func (h *Handler) UpdateElement(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var patch template.ElementPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.UpdateElement(c.Request.Context(), id, c.Param("elementId"), patch)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) RemoveElement(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	doc, err := h.service.RemoveElement(c.Request.Context(), id, c.Param("elementId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) ReorderLayer(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var req struct {
		Direction template.LayerDirection `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.ReorderLayer(c.Request.Context(), id, c.Param("elementId"), req.Direction)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DuplicateElement(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	doc, newID, err := h.service.DuplicateElement(c.Request.Context(), id, c.Param("elementId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	if newID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "element not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"element_id": newID, "document": doc})
}

func (h *Handler) ApplyPreset(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var req struct {
		Preset string `json:"preset" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.ApplyPreset(c.Request.Context(), id, req.Preset)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Export(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	artifact, err := h.service.Export(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func (h *Handler) Issue(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	var req struct {
		CheckedInOnly bool `json:"checked_in_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID, err := h.service.Issue(c.Request.Context(), id, req.CheckedInOnly)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

func (h *Handler) Runs(c *gin.Context) {
	id, ok := h.designID(c)
	if !ok {
		return
	}

	runs, err := h.service.Runs(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) designID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if errors.Is(err, ErrDesignNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
