package admin

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/utils"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.Config.IsDev() || slices.Contains(h.Config.CORSOrigins, origin)
		},
	}
}

// ListNotifications returns the newest notifications; ?unread=true keeps
// only unread ones.
func (h *Handler) ListNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	items, err := h.Stores.Notifications.List(ctx, unread, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	count, err := h.Stores.Notifications.UnreadCount(ctx)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "unread": count})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	count, err := h.Stores.Notifications.UnreadCount(ctx)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Notifications.MarkRead(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Notifications.MarkAllRead(ctx); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// 🔔 NotificationSocket streams new notifications to a connected admin.
func (h *Handler) NotificationSocket(c *gin.Context) {
	if h.Notifier == nil || h.Notifier.Bus() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live notifications are not available"})
		return
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("⚠️ websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	feed, stop := h.Notifier.Bus().Subscribe(ctx)
	defer stop()

	// The read loop only notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	count, _ := h.Stores.Notifications.UnreadCount(ctx)
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(gin.H{"type": "connected", "unread": count}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case n, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(gin.H{"type": "notification", "notification": n}); err != nil {
				zap.L().Debug("websocket write", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
