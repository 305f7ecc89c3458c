package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

const maxAuditLimit = 500

func auditFilter(c *gin.Context) (store.AuditFilter, bool) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > maxAuditLimit {
		limit = 100
	}
	f := store.AuditFilter{Action: c.Query("action"), Limit: limit}
	if raw := c.Query("day"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return f, false
		}
		f.Day = day
	}
	return f, true
}

// GetAuditLogs lists one day of admin actions (today by default).
func (h *Handler) GetAuditLogs(c *gin.Context) {
	f, ok := auditFilter(c)
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	logs, err := h.Stores.Audit.List(ctx, f)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": len(logs)})
}

// GetAuditStats counts the day's actions by action name and outcome.
func (h *Handler) GetAuditStats(c *gin.Context) {
	f, ok := auditFilter(c)
	if !ok {
		return
	}
	f.Limit = maxAuditLimit
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	logs, err := h.Stores.Audit.List(ctx, f)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	byAction := map[string]int{}
	failed := 0
	for _, l := range logs {
		byAction[l.Action]++
		if !l.Success {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    len(logs),
		"failed":   failed,
		"byAction": byAction,
	})
}
