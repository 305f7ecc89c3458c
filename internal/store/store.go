// Package store holds the persistence ports of the storefront and their
// MongoDB and ScyllaDB implementations.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"farmlyf_back_end/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("concurrent modification")
	ErrDuplicate = errors.New("already exists")
	ErrNoStock   = errors.New("insufficient stock")
)

const (
	colUsers         = "users"
	colCategories    = "categories"
	colProducts      = "products"
	colOrders        = "orders"
	colReturns       = "returns"
	colReviews       = "reviews"
	colBanners       = "banners"
	colContent       = "content_sections"
	colBlogs         = "blogs"
	colNotifications = "notifications"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) Skip() int64 {
	p = p.Normalize()
	return int64((p.Page - 1) * p.Limit)
}

type ProductFilter struct {
	CategoryID *primitive.ObjectID
	ActiveOnly bool
	Page       Page
}

type OrderFilter struct {
	Status models.OrderStatus
	Page   Page
}

type ReturnFilter struct {
	Status models.ReturnStatus
	Type   models.ReturnType
	Page   Page
}

type AuditFilter struct {
	Day    time.Time
	Action string
	Limit  int
}

// OrderStats aggregates the order collection for the dashboard.
type OrderStats struct {
	Total    int64
	Revenue  float64
	ByStatus map[string]int64
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string, addresses []models.Address) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	List(ctx context.Context, page Page) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, q string, limit int) ([]models.Product, error)
	// DecrementStock fails with ErrNoStock when the variant holds fewer than qty units.
	DecrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error
	Count(ctx context.Context) (int64, error)
	LowStock(ctx context.Context, threshold int) ([]models.LowStockItem, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	// UpdateStatus moves the order from one status to another and fails with
	// ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error)
	SetPayment(ctx context.Context, id primitive.ObjectID, paymentStatus, intentID string) error
	// ClaimReturnItems reserves order lines for one return request. It fails
	// with ErrConflict when any of keys is already held by another request.
	ClaimReturnItems(ctx context.Context, id primitive.ObjectID, keys []string) error
	ReleaseReturnItems(ctx context.Context, id primitive.ObjectID, keys []string) error
	HasDeliveredProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	Stats(ctx context.Context) (OrderStats, error)
}

type ReturnStore interface {
	Create(ctx context.Context, r *models.ReturnRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReturnRequest, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ReturnRequest, error)
	ListByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.ReturnRequest, error)
	List(ctx context.Context, f ReturnFilter) ([]models.ReturnRequest, int64, error)
	// UpdateStatus appends change to the history when the stored status is
	// still from, otherwise it fails with ErrConflict.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.ReturnStatus, change models.StatusChange, refundRef string) (*models.ReturnRequest, error)
	// SetRefundReference swaps a pending refund reference for the gateway's.
	SetRefundReference(ctx context.Context, id primitive.ObjectID, ref string) (*models.ReturnRequest, error)
	// RevertStatus undoes the last transition into from while its refund is
	// still pending, restoring to.
	RevertStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReturnStatus) (*models.ReturnRequest, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	Rating(ctx context.Context, productID primitive.ObjectID) (models.ProductRating, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BannerStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Banner, error)
	Create(ctx context.Context, b *models.Banner) error
	Update(ctx context.Context, b *models.Banner) error
	Reorder(ctx context.Context, ids []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ContentStore interface {
	Get(ctx context.Context, key string) (*models.ContentSection, error)
	Upsert(ctx context.Context, s *models.ContentSection) error
}

type BlogStore interface {
	List(ctx context.Context, publishedOnly bool, page Page) ([]models.Blog, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	SlugExists(ctx context.Context, slug string, except primitive.ObjectID) (bool, error)
	Create(ctx context.Context, b *models.Blog) error
	Update(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context) error
}

type AuditStore interface {
	Record(ctx context.Context, entry models.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)
}

// Stores bundles every port the handlers depend on.
type Stores struct {
	Users         UserStore
	Categories    CategoryStore
	Products      ProductStore
	Orders        OrderStore
	Returns       ReturnStore
	Reviews       ReviewStore
	Banners       BannerStore
	Content       ContentStore
	Blogs         BlogStore
	Notifications NotificationStore
	Audit         AuditStore
}

// NewMongoStores wires the MongoDB implementations over db.
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:         &mongoUsers{col: db.Collection(colUsers)},
		Categories:    &mongoCategories{col: db.Collection(colCategories)},
		Products:      &mongoProducts{col: db.Collection(colProducts)},
		Orders:        &mongoOrders{col: db.Collection(colOrders)},
		Returns:       &mongoReturns{col: db.Collection(colReturns)},
		Reviews:       &mongoReviews{col: db.Collection(colReviews)},
		Banners:       &mongoBanners{col: db.Collection(colBanners)},
		Content:       &mongoContent{col: db.Collection(colContent)},
		Blogs:         &mongoBlogs{col: db.Collection(colBlogs)},
		Notifications: &mongoNotifications{col: db.Collection(colNotifications)},
		Audit:         NopAudit{},
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
