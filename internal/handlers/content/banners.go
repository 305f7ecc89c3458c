package content

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/utils"
)

// Handler serves the CMS: homepage banners, static sections and the blog.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

type bannerForm struct {
	Title    string `form:"title" binding:"required,max=120"`
	Subtitle string `form:"subtitle" binding:"max=240"`
	LinkURL  string `form:"linkUrl" binding:"omitempty,max=500"`
	Position int    `form:"position" binding:"min=0"`
	IsActive *bool  `form:"isActive"`
}

func (f bannerForm) apply(b *models.Banner) {
	b.Title = utils.StripTags(f.Title)
	b.Subtitle = utils.StripTags(f.Subtitle)
	b.LinkURL = f.LinkURL
	b.Position = f.Position
	if f.IsActive != nil {
		b.IsActive = *f.IsActive
	}
}

func (h *Handler) invalidateBanners(c *gin.Context) {
	if err := h.Cache.Delete(c.Request.Context(), cache.BannersKey); err != nil {
		zap.L().Warn("⚠️ invalidate banners cache", zap.Error(err))
	}
}

// ListBanners returns the active homepage banners in display order.
func (h *Handler) ListBanners(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	var banners []models.Banner
	if hit, err := h.Cache.GetJSON(ctx, cache.BannersKey, &banners); err == nil && hit {
		c.JSON(http.StatusOK, gin.H{"banners": banners})
		return
	}
	banners, err := h.Stores.Banners.List(ctx, true)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Cache.SetJSON(ctx, cache.BannersKey, banners, cache.BannersTTL); err != nil {
		zap.L().Warn("⚠️ cache banners", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// AdminListBanners includes hidden banners.
func (h *Handler) AdminListBanners(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	banners, err := h.Stores.Banners.List(ctx, false)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// 🟢 CreateBanner takes a multipart form with the banner image in "image".
func (h *Handler) CreateBanner(c *gin.Context) {
	var form bannerForm
	if err := c.ShouldBind(&form); err != nil {
		handlers.BindError(c, err)
		return
	}
	url, key, ok := h.UploadImage(c, "image", "banners")
	if !ok {
		return
	}

	now := h.Clock()
	b := models.Banner{ImageURL: url, ObjectKey: key, IsActive: true, CreatedAt: now, UpdatedAt: now}
	form.apply(&b)

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Banners.Create(ctx, &b); err != nil {
		h.removeObject(c, key)
		utils.HandleError(c, err)
		return
	}
	h.invalidateBanners(c)
	c.Set(middleware.CtxAuditValue, b)
	c.JSON(http.StatusCreated, b)
}

// 🟡 UpdateBanner edits the fields and replaces the image when a new one is sent.
func (h *Handler) UpdateBanner(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var form bannerForm
	if err := c.ShouldBind(&form); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	b, err := h.Stores.Banners.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	oldKey := ""
	if _, err := c.FormFile("image"); err == nil {
		url, key, ok := h.UploadImage(c, "image", "banners")
		if !ok {
			return
		}
		oldKey = b.ObjectKey
		b.ImageURL, b.ObjectKey = url, key
	}
	form.apply(b)
	b.UpdatedAt = h.Clock()

	if err := h.Stores.Banners.Update(ctx, b); err != nil {
		utils.HandleError(c, err)
		return
	}
	h.removeObject(c, oldKey)
	h.invalidateBanners(c)
	c.Set(middleware.CtxAuditValue, b)
	c.JSON(http.StatusOK, b)
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,len=24,hexadecimal"`
}

// ReorderBanners sets positions from the order of ids.
func (h *Handler) ReorderBanners(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, _ := primitive.ObjectIDFromHex(raw)
		ids = append(ids, id)
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Banners.Reorder(ctx, ids); err != nil {
		utils.HandleError(c, err)
		return
	}
	h.invalidateBanners(c)
	c.Set(middleware.CtxAuditValue, req.IDs)
	c.JSON(http.StatusOK, gin.H{"message": "Banners reordered"})
}

// 🔴 DeleteBanner removes the banner and its image.
func (h *Handler) DeleteBanner(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	b, err := h.Stores.Banners.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Stores.Banners.Delete(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	h.removeObject(c, b.ObjectKey)
	h.invalidateBanners(c)
	c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
}

func (h *Handler) removeObject(c *gin.Context, key string) {
	if key == "" || h.Storage == nil {
		return
	}
	if err := h.Storage.Delete(c.Request.Context(), key); err != nil {
		zap.L().Warn("⚠️ delete object", zap.String("key", key), zap.Error(err))
	}
}
