// Package storetest provides in-memory implementations of the store ports
// for handler tests.
package storetest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
)

// New returns a Stores bundle backed entirely by memory.
func New() *store.Stores {
	return &store.Stores{
		Users:         &Users{byID: map[primitive.ObjectID]models.User{}},
		Categories:    &Categories{byID: map[primitive.ObjectID]models.Category{}},
		Products:      &Products{byID: map[primitive.ObjectID]models.Product{}},
		Orders:        &Orders{byID: map[primitive.ObjectID]models.Order{}},
		Returns:       &Returns{byID: map[primitive.ObjectID]models.ReturnRequest{}},
		Reviews:       &Reviews{byID: map[primitive.ObjectID]models.Review{}},
		Banners:       &Banners{byID: map[primitive.ObjectID]models.Banner{}},
		Content:       &Content{byKey: map[string]models.ContentSection{}},
		Blogs:         &Blogs{byID: map[primitive.ObjectID]models.Blog{}},
		Notifications: &Notifications{},
		Audit:         &Audit{},
	}
}

func paginate[T any](items []T, p store.Page) []T {
	p = p.Normalize()
	start := int(p.Skip())
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func (s *Users) find(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id })
}

func (s *Users) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Phone != "" && u.Phone == phone })
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email != "" && u.Email == email })
}

func (s *Users) FindByProvider(_ context.Context, provider, providerID string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Provider == provider && u.ProviderID == providerID })
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if (u.Phone != "" && existing.Phone == u.Phone) || (u.Email != "" && existing.Email == u.Email) {
			return store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	s.byID[id] = u
	return nil
}

func (s *Users) SetRole(_ context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Role = role
	s.byID[id] = u
	return &u, nil
}

func (s *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, name, email string, addresses []models.Address) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if addresses != nil {
		u.Addresses = addresses
	}
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return &u, nil
}

func (s *Users) List(_ context.Context, page store.Page) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), int64(len(all)), nil
}

func (s *Users) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.byID {
		if u.Role == models.RoleCustomer {
			n++
		}
	}
	return n, nil
}

type Categories struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Category
}

func (s *Categories) List(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Categories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Categories) Create(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Slug == c.Slug {
			return store.ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now().UTC()
	s.byID[c.ID] = *c
	return nil
}

func (s *Categories) Update(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *Categories) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type Products struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Product
}

func (s *Products) List(_ context.Context, f store.ProductFilter) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Product{}
	for _, p := range s.byID {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, f.Page), int64(len(all)), nil
}

func (s *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Products) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Products) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Slug == p.Slug {
			return store.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	for i := range p.Variants {
		if p.Variants[i].ID.IsZero() {
			p.Variants[i].ID = primitive.NewObjectID()
		}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.byID[p.ID] = cloneProduct(*p)
	return nil
}

func (s *Products) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return store.ErrNotFound
	}
	for i := range p.Variants {
		if p.Variants[i].ID.IsZero() {
			p.Variants[i].ID = primitive.NewObjectID()
		}
	}
	p.UpdatedAt = time.Now().UTC()
	s.byID[p.ID] = cloneProduct(*p)
	return nil
}

func (s *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Products) Search(_ context.Context, q string, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(q)
	out := []models.Product{}
	for _, p := range s.byID {
		if p.IsActive && strings.Contains(strings.ToLower(p.Name+" "+p.Description), q) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Products) adjust(productID, variantID primitive.ObjectID, delta int) error {
	p, ok := s.byID[productID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range p.Variants {
		if p.Variants[i].ID != variantID {
			continue
		}
		if p.Variants[i].Stock+delta < 0 {
			return store.ErrNoStock
		}
		p.Variants[i].Stock += delta
		s.byID[productID] = p
		return nil
	}
	return store.ErrNotFound
}

func (s *Products) DecrementStock(_ context.Context, productID, variantID primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.adjust(productID, variantID, -qty)
	if err == store.ErrNotFound {
		return store.ErrNoStock
	}
	return err
}

func (s *Products) IncrementStock(_ context.Context, productID, variantID primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjust(productID, variantID, qty)
}

func (s *Products) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byID)), nil
}

func (s *Products) LowStock(_ context.Context, threshold int) ([]models.LowStockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.LowStockItem{}
	for _, p := range s.byID {
		for _, v := range p.Variants {
			if v.Stock < threshold {
				out = append(out, models.LowStockItem{
					ProductID: p.ID, ProductName: p.Name,
					VariantID: v.ID, VariantLabel: v.Label, Stock: v.Stock,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func cloneProduct(p models.Product) models.Product {
	p.Variants = append([]models.Variant(nil), p.Variants...)
	return p
}

type Orders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Order
}

func (s *Orders) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	s.byID[o.ID] = *o
	return nil
}

func (s *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Orders) FindByPaymentIntent(_ context.Context, intentID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byID {
		if o.PaymentIntentID == intentID {
			return &o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Orders) List(_ context.Context, f store.OrderFilter) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Order{}
	for _, o := range s.byID {
		if f.Status == "" || o.Status == f.Status {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Page), int64(len(all)), nil
}

func (s *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if o.Status != from {
		return nil, store.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = at
	if to == models.OrderDelivered {
		o.DeliveredAt = &at
	}
	s.byID[id] = o
	return &o, nil
}

func (s *Orders) SetPayment(_ context.Context, id primitive.ObjectID, paymentStatus, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	if intentID != "" {
		o.PaymentIntentID = intentID
	}
	s.byID[id] = o
	return nil
}

func (s *Orders) ClaimReturnItems(_ context.Context, id primitive.ObjectID, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, k := range keys {
		if slices.Contains(o.ReturnedItems, k) {
			return store.ErrConflict
		}
	}
	o.ReturnedItems = append(slices.Clone(o.ReturnedItems), keys...)
	s.byID[id] = o
	return nil
}

func (s *Orders) ReleaseReturnItems(_ context.Context, id primitive.ObjectID, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	o.ReturnedItems = slices.DeleteFunc(slices.Clone(o.ReturnedItems), func(k string) bool {
		return slices.Contains(keys, k)
	})
	s.byID[id] = o
	return nil
}

func (s *Orders) HasDeliveredProduct(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byID {
		if o.UserID != userID || o.Status != models.OrderDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.ProductRef == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Orders) Stats(_ context.Context) (store.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := store.OrderStats{ByStatus: map[string]int64{}}
	for _, o := range s.byID {
		stats.Total++
		stats.ByStatus[string(o.Status)]++
		if o.Status != models.OrderCancelled {
			stats.Revenue += o.Amount
		}
	}
	return stats, nil
}

type Returns struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.ReturnRequest
}

func cloneReturn(r models.ReturnRequest) models.ReturnRequest {
	r.Items = append([]models.ReturnItem(nil), r.Items...)
	r.History = append([]models.StatusChange(nil), r.History...)
	return r
}

func (s *Returns) Create(_ context.Context, r *models.ReturnRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.UpdatedAt = r.RequestDate
	s.byID[r.ID] = cloneReturn(*r)
	return nil
}

func (s *Returns) FindByID(_ context.Context, id primitive.ObjectID) (*models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = cloneReturn(r)
	return &r, nil
}

func (s *Returns) filter(match func(models.ReturnRequest) bool) []models.ReturnRequest {
	out := []models.ReturnRequest{}
	for _, r := range s.byID {
		if match(r) {
			out = append(out, cloneReturn(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out
}

func (s *Returns) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r models.ReturnRequest) bool { return r.UserID == userID }), nil
}

func (s *Returns) ListByOrder(_ context.Context, orderID primitive.ObjectID) ([]models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r models.ReturnRequest) bool { return r.OrderID == orderID }), nil
}

func (s *Returns) List(_ context.Context, f store.ReturnFilter) ([]models.ReturnRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.filter(func(r models.ReturnRequest) bool {
		return (f.Status == "" || r.Status == f.Status) && (f.Type == "" || r.Type == f.Type)
	})
	return paginate(all, f.Page), int64(len(all)), nil
}

func (s *Returns) UpdateStatus(_ context.Context, id primitive.ObjectID, from models.ReturnStatus, change models.StatusChange, refundRef string) (*models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if r.Status != from {
		return nil, store.ErrConflict
	}
	r = cloneReturn(r)
	r.Status = change.Status
	r.UpdatedAt = change.At
	r.History = append(r.History, change)
	if refundRef != "" {
		r.RefundReference = refundRef
	}
	s.byID[id] = r
	out := cloneReturn(r)
	return &out, nil
}

func (s *Returns) SetRefundReference(_ context.Context, id primitive.ObjectID, ref string) (*models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if r.RefundReference != models.RefundPending {
		return nil, store.ErrConflict
	}
	r = cloneReturn(r)
	r.RefundReference = ref
	s.byID[id] = r
	out := cloneReturn(r)
	return &out, nil
}

func (s *Returns) RevertStatus(_ context.Context, id primitive.ObjectID, from, to models.ReturnStatus) (*models.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if r.Status != from || r.RefundReference != models.RefundPending {
		return nil, store.ErrConflict
	}
	r = cloneReturn(r)
	r.Status = to
	r.RefundReference = ""
	r.UpdatedAt = time.Now().UTC()
	if len(r.History) > 0 {
		r.History = r.History[:len(r.History)-1]
	}
	s.byID[id] = r
	out := cloneReturn(r)
	return &out, nil
}

func (s *Returns) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, r := range s.byID {
		out[string(r.Status)]++
	}
	return out, nil
}

type Reviews struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Review
}

func (s *Reviews) Create(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return store.ErrDuplicate
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now().UTC()
	s.byID[r.ID] = *r
	return nil
}

func (s *Reviews) ListByProduct(_ context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, r := range s.byID {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Reviews) Rating(_ context.Context, productID primitive.ObjectID) (models.ProductRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rating := models.ProductRating{ProductID: productID}
	sum := 0
	for _, r := range s.byID {
		if r.ProductID == productID {
			sum += r.Rating
			rating.TotalReviews++
		}
	}
	if rating.TotalReviews > 0 {
		rating.AverageRating = float64(sum) / float64(rating.TotalReviews)
	}
	return rating, nil
}

func (s *Reviews) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type Banners struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Banner
}

func (s *Banners) List(_ context.Context, activeOnly bool) ([]models.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Banner{}
	for _, b := range s.byID {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Banners) FindByID(_ context.Context, id primitive.ObjectID) (*models.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Banners) Create(_ context.Context, b *models.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.byID[b.ID] = *b
	return nil
}

func (s *Banners) Update(_ context.Context, b *models.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[b.ID]; !ok {
		return store.ErrNotFound
	}
	s.byID[b.ID] = *b
	return nil
}

func (s *Banners) Reorder(_ context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		if b, ok := s.byID[id]; ok {
			b.Position = i
			s.byID[id] = b
		}
	}
	return nil
}

func (s *Banners) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type Content struct {
	mu    sync.Mutex
	byKey map[string]models.ContentSection
}

func (s *Content) Get(_ context.Context, key string) (*models.ContentSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.byKey[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sec, nil
}

func (s *Content) Upsert(_ context.Context, sec *models.ContentSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec.UpdatedAt = time.Now().UTC()
	s.byKey[sec.Key] = *sec
	return nil
}

type Blogs struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Blog
}

func (s *Blogs) List(_ context.Context, publishedOnly bool, page store.Page) ([]models.Blog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Blog{}
	for _, b := range s.byID {
		if !publishedOnly || b.Published {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), int64(len(all)), nil
}

func (s *Blogs) FindBySlug(_ context.Context, slug string) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byID {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Blogs) FindByID(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Blogs) SlugExists(_ context.Context, slug string, except primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byID {
		if b.Slug == slug && b.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (s *Blogs) Create(_ context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Slug == b.Slug {
			return store.ErrDuplicate
		}
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.byID[b.ID] = *b
	return nil
}

func (s *Blogs) Update(_ context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[b.ID]; !ok {
		return store.ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	s.byID[b.ID] = *b
	return nil
}

func (s *Blogs) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type Notifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (s *Notifications) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *Notifications) List(_ context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if unreadOnly && s.items[i].Read {
			continue
		}
		out = append(out, s.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Notifications) UnreadCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (s *Notifications) MarkRead(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Notifications) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	return nil
}

type Audit struct {
	mu      sync.Mutex
	Entries []models.AuditLog
}

func (s *Audit) Record(_ context.Context, e models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, e)
	return nil
}

func (s *Audit) List(_ context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AuditLog{}
	for _, e := range s.Entries {
		if f.Action == "" || e.Action == f.Action {
			out = append(out, e)
		}
	}
	return out, nil
}

// Snapshot returns a copy of the recorded audit entries.
func (s *Audit) Snapshot() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.Entries...)
}
