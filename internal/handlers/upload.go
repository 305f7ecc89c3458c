package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/services"
)

const MaxImageSize = 5 << 20

// UploadImage stores the multipart file of field under prefix and returns
// its public URL and object key. It answers the request itself on failure.
func (d *Deps) UploadImage(c *gin.Context, field, prefix string) (string, string, bool) {
	if d.Storage == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return "", "", false
	}

	file, header, err := c.Request.FormFile(field)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing file field " + field})
		return "", "", false
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image larger than 5 MB"})
		return "", "", false
	}
	contentType := header.Header.Get("Content-Type")
	if _, err := services.ObjectKey(prefix, header.Filename, contentType); err != nil {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only JPEG, PNG, WebP and GIF images are accepted"})
		return "", "", false
	}

	ctx, cancel := Ctx(c, 30*time.Second)
	defer cancel()

	url, key, err := d.Storage.Upload(ctx, prefix, header.Filename, file, header.Size, contentType)
	if err != nil {
		zap.L().Error("❌ image upload failed", zap.String("prefix", prefix), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
		return "", "", false
	}
	zap.L().Info("🪣 image uploaded", zap.String("key", key))
	return url, key, true
}
