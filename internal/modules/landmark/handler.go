package landmark

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/labormap/core/internal/middleware"
	"github.com/labormap/core/internal/pkg/pagination"
	"github.com/labormap/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc      *Service
	importer *Importer
}

func NewHandler(svc *Service, importer *Importer) *Handler {
	return &Handler{svc: svc, importer: importer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/landmarks")

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)

	a := g.Group("", authMW)
	a.POST("/import", h.importBatch)
	a.PUT("/:id", h.update)
	a.PATCH("/:id/publish", h.setPublished)
	a.DELETE("/:id", h.delete)
}

// GET /landmarks
func (h *Handler) list(c *gin.Context) {
	isAdmin := middleware.IsAuthenticated(c)
	q := pagination.FromContext(c)

	items, pag, err := h.svc.List(q, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]landmarkResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i], isAdmin)
	}
	if pag != nil {
		response.Paged(c, out, *pag)
		return
	}
	response.OK(c, out)
}

// GET /landmarks/:id
func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	isAdmin := middleware.IsAuthenticated(c)
	l, err := h.svc.GetByID(id, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if l == nil {
		response.NotFoundMsg(c, "landmark not found")
		return
	}
	response.OK(c, toResponse(l, isAdmin))
}

// POST /landmarks — public suggestion or admin entry
func (h *Handler) create(c *gin.Context) {
	var dto CreateLandmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(dto.Name) == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if dto.Lat == nil || dto.Lng == nil {
		response.BadRequest(c, "lat and lng are required")
		return
	}

	isAdmin := middleware.IsAuthenticated(c)
	l, err := h.svc.Create(&dto, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(l, isAdmin))
}

// POST /landmarks/import — reconcile a scraped batch
func (h *Handler) importBatch(c *gin.Context) {
	var records []ImportRecordDTO
	if err := c.ShouldBindJSON(&records); err != nil {
		response.BadRequest(c, "import payload must be a JSON array of landmark records")
		return
	}

	stats, err := h.importer.Run(records)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(c, vErr.Error())
			return
		}
		// All-or-nothing: report one generic failure, never partial stats.
		_ = c.Error(err)
		response.InternalError(c, errors.New("import failed, no records were applied"))
		return
	}

	response.OK(c, gin.H{
		"message": fmt.Sprintf("import completed, %d records processed", len(records)),
		"stats":   stats,
	})
}

// PUT /landmarks/:id
func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateLandmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		response.BadRequest(c, "name cannot be empty")
		return
	}

	l, err := h.svc.Update(id, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if l == nil {
		response.NotFoundMsg(c, "landmark not found")
		return
	}
	response.OK(c, toResponse(l, true))
}

// PATCH /landmarks/:id/publish
func (h *Handler) setPublished(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto publishDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetPublished(id, dto.IsPublished); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "landmark not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// DELETE /landmarks/:id
func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "landmark not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// parseID reads the :id path param, replying 400 on garbage.
func parseID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid landmark id")
		return 0, false
	}
	return uint(v), true
}
