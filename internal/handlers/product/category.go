package product

import (
	"errors"
	"net/http"
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

// Handler serves the catalog: categories, products, search and reviews.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=60"`
	Slug        string `json:"slug" binding:"omitempty,max=60"`
	Description string `json:"description" binding:"max=500"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	Position    int    `json:"position"`
}

// 🔵 ListCategories serves the category menu from Redis when possible.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	var cats []models.Category
	if hit, err := h.Cache.GetJSON(ctx, cache.CategoriesKey, &cats); err == nil && hit {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, gin.H{"categories": cats})
		return
	}

	cats, err := h.Stores.Categories.List(ctx)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Cache.SetJSON(ctx, cache.CategoriesKey, cats, cache.CategoriesTTL); err != nil {
		zap.L().Warn("⚠️ cache categories", zap.Error(err))
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) invalidateCategories(c *gin.Context) {
	if err := h.Cache.Delete(c.Request.Context(), cache.CategoriesKey); err != nil {
		zap.L().Warn("⚠️ invalidate categories cache", zap.Error(err))
	}
}

// 🟢 CreateCategory (admin)
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	cat := models.Category{
		Name:        req.Name,
		Slug:        slugOr(req.Slug, req.Name),
		Description: utils.StripTags(req.Description),
		ImageURL:    req.ImageURL,
		Position:    req.Position,
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Categories.Create(ctx, &cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this slug already exists"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	h.invalidateCategories(c)
	c.Set(middleware.CtxAuditValue, cat)
	c.JSON(http.StatusCreated, cat)
}

// 🟡 UpdateCategory (admin)
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	cat, err := h.Stores.Categories.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	cat.Name = req.Name
	cat.Slug = slugOr(req.Slug, req.Name)
	cat.Description = utils.StripTags(req.Description)
	cat.ImageURL = req.ImageURL
	cat.Position = req.Position

	if err := h.Stores.Categories.Update(ctx, cat); err != nil {
		utils.HandleError(c, err)
		return
	}
	h.invalidateCategories(c)
	c.Set(middleware.CtxAuditValue, cat)
	c.JSON(http.StatusOK, cat)
}

// 🔴 DeleteCategory refuses to orphan products.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	_, total, err := h.Stores.Products.List(ctx, store.ProductFilter{CategoryID: &id, Page: store.Page{Page: 1, Limit: 1}})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if total > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has products", "products": total})
		return
	}
	if err := h.Stores.Categories.Delete(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	h.invalidateCategories(c)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func slugOr(slug, name string) string {
	if s := utils.Slugify(slug); s != "" {
		return s
	}
	return utils.Slugify(name)
}
