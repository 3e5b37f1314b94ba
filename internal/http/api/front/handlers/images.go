package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visora-labs/visora-relay/internal/imagegen"
)

// ImageHandler serves stored generated images.
type ImageHandler struct {
	generator *imagegen.Generator
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(generator *imagegen.Generator) *ImageHandler {
	return &ImageHandler{generator: generator}
}

// Get handles GET /api/images/:id. Image IDs are unguessable, so the route
// needs no session.
func (h *ImageHandler) Get(c *gin.Context) {
	image, errLoad := h.generator.Load(c.Request.Context(), c.Param("id"))
	if errLoad != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, image.ContentType, image.Data)
}
