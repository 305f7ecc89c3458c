package content

import (
	"context"
	"errors"
	"fmt"
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

const excerptLength = 180

type blogRequest struct {
	Title     string   `json:"title" binding:"required,min=3,max=160"`
	Slug      string   `json:"slug" binding:"omitempty,max=160"`
	Markdown  string   `json:"markdown" binding:"required,max=100000"`
	Excerpt   string   `json:"excerpt" binding:"max=400"`
	CoverURL  string   `json:"coverUrl" binding:"omitempty,url"`
	Tags      []string `json:"tags" binding:"max=10"`
	Published bool     `json:"published"`
}

// ListBlogs is the public blog index; ?page= and ?limit= paginate.
func (h *Handler) ListBlogs(c *gin.Context) {
	h.listBlogs(c, true)
}

func (h *Handler) AdminListBlogs(c *gin.Context) {
	h.listBlogs(c, false)
}

func (h *Handler) listBlogs(c *gin.Context, publishedOnly bool) {
	page := utils.PageFromQuery(c)
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	blogs, total, err := h.Stores.Blogs.List(ctx, publishedOnly, page)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if publishedOnly {
		for i := range blogs {
			blogs[i].Markdown = ""
		}
	}
	c.JSON(http.StatusOK, utils.PageResponse("blogs", blogs, total, page))
}

func (h *Handler) GetBlog(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	b, err := h.Stores.Blogs.FindBySlug(ctx, c.Param("slug"))
	if err == nil && !b.Published {
		err = store.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	b.Markdown = ""
	c.JSON(http.StatusOK, b)
}

// uniqueSlug derives a slug and suffixes -2, -3... until no other post has it.
func (h *Handler) uniqueSlug(ctx context.Context, wanted, title string, self primitive.ObjectID) (string, error) {
	base := utils.Slugify(wanted)
	if base == "" {
		base = utils.Slugify(title)
	}
	if base == "" {
		base = "post"
	}
	slug := base
	for n := 2; ; n++ {
		taken, err := h.Stores.Blogs.SlugExists(ctx, slug, self)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// render fills the derived fields of b from the request.
func (h *Handler) render(ctx context.Context, b *models.Blog, req blogRequest) error {
	html, err := utils.RenderMarkdown(req.Markdown)
	if err != nil {
		return err
	}
	slug, err := h.uniqueSlug(ctx, req.Slug, req.Title, b.ID)
	if err != nil {
		return err
	}
	b.Title = utils.StripTags(req.Title)
	b.Slug = slug
	b.Markdown = req.Markdown
	b.HTML = html
	b.Excerpt = utils.StripTags(req.Excerpt)
	if b.Excerpt == "" {
		b.Excerpt = utils.Excerpt(html, excerptLength)
	}
	b.CoverURL = req.CoverURL
	b.Tags = req.Tags
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if req.Published && b.PublishedAt == nil {
		now := h.Clock()
		b.PublishedAt = &now
	}
	b.Published = req.Published
	return nil
}

// 🟢 CreateBlog renders the Markdown body to sanitized HTML.
func (h *Handler) CreateBlog(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	var b models.Blog
	if err := h.render(ctx, &b, req); err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Stores.Blogs.Create(ctx, &b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A post with this slug already exists"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	zap.L().Info("📝 blog post created", zap.String("slug", b.Slug), zap.Bool("published", b.Published))
	c.Set(middleware.CtxAuditValue, gin.H{"title": b.Title, "slug": b.Slug, "published": b.Published})
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBlog(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	b, err := h.Stores.Blogs.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.render(ctx, b, req); err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Stores.Blogs.Update(ctx, b); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Set(middleware.CtxAuditValue, gin.H{"title": b.Title, "slug": b.Slug, "published": b.Published})
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBlog(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Blogs.Delete(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// UploadCover stores a cover image; the URL goes into coverUrl on save.
func (h *Handler) UploadCover(c *gin.Context) {
	url, key, ok := h.UploadImage(c, "file", "blogs")
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
}
