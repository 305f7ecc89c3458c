package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
)

const notificationChannel = "admin:notifications"

// Bus fans notifications out to every connected admin socket.
type Bus interface {
	Publish(ctx context.Context, n models.Notification) error
	// Subscribe returns a feed of notifications and a function that stops it.
	Subscribe(ctx context.Context) (<-chan models.Notification, func())
}

// RedisBus uses Redis pub/sub so every server instance sees every event.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, notificationChannel, data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan models.Notification, func()) {
	sub := b.rdb.Subscribe(ctx, notificationChannel)
	out := make(chan models.Notification, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					zap.L().Warn("⚠️ bad notification payload", zap.Error(err))
					continue
				}
				select {
				case out <- n:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}
}

// Hub is an in-process Bus.
type Hub struct {
	mu   sync.Mutex
	subs map[chan models.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[chan models.Notification]struct{}{}}
}

func (h *Hub) Publish(_ context.Context, n models.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			// slow subscriber, drop rather than block publishers
		}
	}
	return nil
}

func (h *Hub) Subscribe(context.Context) (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Notifier persists admin notifications and pushes them live.
type Notifier struct {
	store store.NotificationStore
	bus   Bus
}

func NewNotifier(s store.NotificationStore, bus Bus) *Notifier {
	return &Notifier{store: s, bus: bus}
}

// Notify never fails the caller; errors are logged.
func (n *Notifier) Notify(ctx context.Context, kind, message, resourceID string) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	item := models.Notification{Kind: kind, Message: message, ResourceID: resourceID, CreatedAt: time.Now().UTC()}
	if err := n.store.Create(ctx, &item); err != nil {
		zap.L().Warn("⚠️ store notification", zap.String("kind", kind), zap.Error(err))
		return
	}
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(ctx, item); err != nil {
		zap.L().Warn("⚠️ publish notification", zap.String("kind", kind), zap.Error(err))
	}
}

func (n *Notifier) Bus() Bus { return n.bus }
