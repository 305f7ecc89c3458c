package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

// 📊 Dashboard aggregates the storefront counters.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	var (
		stats    models.DashboardStats
		orders   store.OrderStats
		returns  map[string]int64
		lowStock []models.LowStockItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = h.Stores.Orders.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = h.Stores.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = h.Stores.Products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		returns, err = h.Stores.Returns.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = h.Stores.Products.LowStock(gctx, models.LowStockThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.HandleError(c, err)
		return
	}

	stats.TotalOrders = orders.Total
	stats.Revenue = orders.Revenue
	stats.OrdersByStatus = orders.ByStatus
	stats.ReturnsByStatus = returns
	stats.PendingReturns = returns[string(models.ReturnPending)]
	stats.LowStock = lowStock
	if stats.LowStock == nil {
		stats.LowStock = []models.LowStockItem{}
	}
	c.JSON(http.StatusOK, stats)
}
