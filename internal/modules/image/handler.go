package image

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/labormap/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/landmarks/:id/images")

	// Public: the suggestion form uploads photos right after creating its
	// pending landmark.
	g.POST("", h.upload)
	g.GET("", h.list)

	a := g.Group("", authMW)
	a.PUT("/reorder", h.reorder)
	a.PATCH("/:imageId", h.updateCaption)
	a.DELETE("/:imageId", h.delete)
}

// RegisterUploadRoutes serves stored files.
func (h *Handler) RegisterUploadRoutes(rg *gin.RouterGroup) {
	rg.GET("/uploads/:name", h.serve)
}

// POST /landmarks/:id/images — multipart field "images", multiple files
func (h *Handler) upload(c *gin.Context) {
	landmarkID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form required")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		response.BadRequest(c, "no images supplied")
		return
	}

	saved := make([]interface{}, 0, len(files))
	for _, fh := range files {
		img, err := h.svc.SaveUpload(landmarkID, fh)
		if err != nil {
			switch {
			case errors.Is(err, ErrLandmarkNotFound):
				response.NotFoundMsg(c, "landmark not found")
			case errors.Is(err, ErrInvalidUpload):
				response.BadRequest(c, err.Error())
			default:
				response.InternalError(c, err)
			}
			return
		}
		saved = append(saved, img)
	}
	response.Created(c, saved)
}

// GET /landmarks/:id/images
func (h *Handler) list(c *gin.Context) {
	landmarkID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.List(landmarkID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

type captionDTO struct {
	Caption string `json:"caption"`
}

// PATCH /landmarks/:id/images/:imageId
func (h *Handler) updateCaption(c *gin.Context) {
	landmarkID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseParamID(c, "imageId")
	if !ok {
		return
	}
	var dto captionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	img, err := h.svc.UpdateCaption(landmarkID, imageID, dto.Caption)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.NotFoundMsg(c, "image not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, img)
}

type reorderDTO struct {
	IDs []uint `json:"ids"`
}

// PUT /landmarks/:id/images/reorder
func (h *Handler) reorder(c *gin.Context) {
	landmarkID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	var dto reorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Reorder(landmarkID, dto.IDs); err != nil {
		if errors.Is(err, ErrInvalidUpload) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// DELETE /landmarks/:id/images/:imageId
func (h *Handler) delete(c *gin.Context) {
	landmarkID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseParamID(c, "imageId")
	if !ok {
		return
	}
	if err := h.svc.Delete(landmarkID, imageID); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.NotFoundMsg(c, "image not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /uploads/:name
func (h *Handler) serve(c *gin.Context) {
	name := safeName(c.Param("name"))
	if name == "" {
		response.NotFound(c)
		return
	}
	path := filepath.Join(h.svc.UploadsDir(), name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000")
	c.File(path)
}

func parseParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
