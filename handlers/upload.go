package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type uploadRequest struct {
	Image string `json:"image" binding:"required"`
}

type removeImageRequest struct {
	PublicID string `json:"publicId" binding:"required"`
}

// UploadImages accepts either a multipart "image" file or a JSON base64 data URI and returns
// the hosted {url, publicId} pair.
func (h *Handler) UploadImages(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image hosting is not configured"})
		return
	}

	var file interface{}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		header, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided", "field": "image"})
			return
		}
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read image", "field": "image"})
			return
		}
		defer f.Close()
		file = f
	} else {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if !strings.HasPrefix(req.Image, "data:image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image must be a base64 data URI", "field": "image"})
			return
		}
		file = req.Image
	}

	img, err := h.Images.Upload(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *Handler) RemoveImage(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image hosting is not configured"})
		return
	}

	var req removeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.Images.Remove(c.Request.Context(), req.PublicID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
