package content

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

var sectionKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,39}$`)

func keyParam(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if !sectionKey.MatchString(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section key"})
		return "", false
	}
	return key, true
}

// GetSection serves a CMS block such as "faq", "about" or "footer".
func (h *Handler) GetSection(c *gin.Context) {
	key, ok := keyParam(c)
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	var sec models.ContentSection
	if hit, err := h.Cache.GetJSON(ctx, cache.ContentKey(key), &sec); err == nil && hit {
		c.JSON(http.StatusOK, sec)
		return
	}
	found, err := h.Stores.Content.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	if err := h.Cache.SetJSON(ctx, cache.ContentKey(key), found, cache.ContentTTL); err != nil {
		zap.L().Warn("⚠️ cache section", zap.String("key", key), zap.Error(err))
	}
	c.JSON(http.StatusOK, found)
}

type sectionRequest struct {
	Title string              `json:"title" binding:"required,max=120"`
	Body  string              `json:"body" binding:"max=50000"`
	FAQs  []models.FAQItem    `json:"faqs" binding:"max=100,dive"`
	Links []models.FooterLink `json:"links" binding:"max=100,dive"`
	Extra map[string]any      `json:"extra"`
}

// PutSection replaces a section. HTML is cleaned with the UGC policy.
func (h *Handler) PutSection(c *gin.Context) {
	key, ok := keyParam(c)
	if !ok {
		return
	}
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	sec := models.ContentSection{
		Key:       key,
		Title:     utils.StripTags(req.Title),
		Body:      utils.SanitizeHTML(req.Body),
		Extra:     req.Extra,
		UpdatedBy: c.GetString(middleware.CtxUserID),
	}
	for _, f := range req.FAQs {
		sec.FAQs = append(sec.FAQs, models.FAQItem{Question: utils.StripTags(f.Question), Answer: utils.SanitizeHTML(f.Answer)})
	}
	for _, l := range req.Links {
		sec.Links = append(sec.Links, models.FooterLink{Group: utils.StripTags(l.Group), Label: utils.StripTags(l.Label), URL: l.URL})
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Content.Upsert(ctx, &sec); err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Cache.Delete(ctx, cache.ContentKey(key)); err != nil {
		zap.L().Warn("⚠️ invalidate section", zap.String("key", key), zap.Error(err))
	}
	c.Set(middleware.CtxAuditValue, gin.H{"title": sec.Title, "faqs": len(sec.FAQs), "links": len(sec.Links)})
	c.JSON(http.StatusOK, sec)
}
