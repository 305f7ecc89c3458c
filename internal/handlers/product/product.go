package product

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

type variantRequest struct {
	ID    string  `json:"id" binding:"omitempty,len=24,hexadecimal"`
	Label string  `json:"label" binding:"required,max=40"`
	Price float64 `json:"price" binding:"required,gt=0"`
	MRP   float64 `json:"mrp" binding:"omitempty,gtefield=Price"`
	Stock int     `json:"stock" binding:"min=0"`
}

type productRequest struct {
	Name        string           `json:"name" binding:"required,min=2,max=120"`
	Slug        string           `json:"slug" binding:"omitempty,max=120"`
	Description string           `json:"description" binding:"max=5000"`
	CategoryID  string           `json:"categoryId" binding:"required,len=24,hexadecimal"`
	ImageURLs   []string         `json:"imageUrls" binding:"max=10,dive,url"`
	Tags        []string         `json:"tags" binding:"max=20"`
	Variants    []variantRequest `json:"variants" binding:"required,min=1,max=20,dive"`
	IsActive    *bool            `json:"isActive"`
}

// apply copies the request onto p, keeping the ids of known variants.
func (r productRequest) apply(p *models.Product) {
	p.Name = r.Name
	p.Slug = slugOr(r.Slug, r.Name)
	p.Description = utils.SanitizeHTML(r.Description)
	p.CategoryID, _ = primitive.ObjectIDFromHex(r.CategoryID)
	p.ImageURLs = r.ImageURLs
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	p.Tags = r.Tags
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}

	variants := make([]models.Variant, 0, len(r.Variants))
	for _, v := range r.Variants {
		id := primitive.NewObjectID()
		if v.ID != "" {
			id, _ = primitive.ObjectIDFromHex(v.ID)
		}
		variants = append(variants, models.Variant{ID: id, Label: v.Label, Price: v.Price, MRP: v.MRP, Stock: v.Stock})
	}
	p.Variants = variants
}

func (h *Handler) reindex(ctx context.Context, p models.Product) {
	if h.Search == nil {
		return
	}
	if err := h.Search.Index(ctx, p); err != nil {
		zap.L().Warn("⚠️ product indexing failed", zap.String("product", p.ID.Hex()), zap.Error(err))
	}
}

// ListProducts is the public, paginated catalog. ?category= filters by id.
func (h *Handler) ListProducts(c *gin.Context) {
	h.listProducts(c, true)
}

// AdminListProducts includes inactive products.
func (h *Handler) AdminListProducts(c *gin.Context) {
	h.listProducts(c, false)
}

func (h *Handler) listProducts(c *gin.Context, activeOnly bool) {
	page := utils.PageFromQuery(c)
	f := store.ProductFilter{ActiveOnly: activeOnly, Page: page}
	if raw := c.Query("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		f.CategoryID = &id
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	products, total, err := h.Stores.Products.List(ctx, f)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.PageResponse("products", products, total, page))
}

// GetProduct accepts an id or a slug.
func (h *Handler) GetProduct(c *gin.Context) {
	ref := c.Param("id")
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	var (
		p   *models.Product
		err error
	)
	if id, perr := primitive.ObjectIDFromHex(ref); perr == nil {
		p, err = h.Stores.Products.FindByID(ctx, id)
	} else {
		p, err = h.Stores.Products.FindBySlug(ctx, ref)
	}
	if err == nil && !p.IsActive && !handlers.IsAdmin(c) {
		err = store.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	rating, err := h.Stores.Reviews.Rating(ctx, p.ID)
	if err != nil {
		zap.L().Warn("⚠️ product rating", zap.String("product", p.ID.Hex()), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"product": p, "rating": rating})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	p := models.Product{IsActive: true}
	req.apply(&p)

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	if _, err := h.Stores.Categories.FindByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	if err := h.Stores.Products.Create(ctx, &p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	h.reindex(ctx, p)

	zap.L().Info("✅ product created", zap.String("product", p.ID.Hex()), zap.String("slug", p.Slug))
	c.Set(middleware.CtxAuditValue, gin.H{"name": p.Name, "slug": p.Slug})
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	p, err := h.Stores.Products.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	req.apply(p)
	if err := h.Stores.Products.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	h.reindex(ctx, *p)

	c.Set(middleware.CtxAuditValue, gin.H{"name": p.Name, "variants": p.Variants, "isActive": p.IsActive})
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	if err := h.Stores.Products.Delete(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	if h.Search != nil {
		if err := h.Search.Remove(ctx, id.Hex()); err != nil {
			zap.L().Warn("⚠️ remove product from index", zap.String("product", id.Hex()), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImage stores a product picture and returns its URL; the client adds
// it to imageUrls on the next save.
func (h *Handler) UploadImage(c *gin.Context) {
	url, key, ok := h.Deps.UploadImage(c, "file", "products")
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
}
