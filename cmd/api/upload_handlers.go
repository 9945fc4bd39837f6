package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/config"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// uploadHandler stores an image under a random name and returns its public URL.
// @Summary  Upload image
// @Tags     upload
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    file formData file true "image file"
// @Success  201 {object} map[string]string
// @Failure  400 {object} map[string]string
// @Router   /upload [post]
func uploadHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "file is required")
			return
		}
		if fh.Size > maxUploadSize {
			httpx.Error(c, http.StatusBadRequest, "file too large")
			return
		}
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedImageExt[ext] {
			httpx.Error(c, http.StatusBadRequest, "unsupported file type")
			return
		}
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			respondErr(c, err)
			return
		}
		name := uuid.NewString() + ext
		if err := c.SaveUploadedFile(fh, filepath.Join(cfg.UploadDir, name)); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"url": fmt.Sprintf("%s/uploads/%s", cfg.PublicURL, name)})
	}
}
