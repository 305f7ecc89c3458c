package product

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/utils"
)

const searchLimit = 24

// SearchProducts answers ?q= from Elasticsearch and falls back to MongoDB when the
// index is missing or failing.
func (h *Handler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must be at least 2 characters"})
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if h.Search != nil {
		ids, err := h.Search.Search(ctx, q, searchLimit)
		if err == nil {
			products, err := h.loadInOrder(c, ids)
			if err != nil {
				utils.HandleError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"products": products, "source": "elastic"})
			return
		}
		zap.L().Warn("⚠️ elastic search failed, using mongo", zap.String("q", q), zap.Error(err))
	}

	products, err := h.Stores.Products.Search(ctx, q, searchLimit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "source": "mongo"})
}

// loadInOrder keeps the relevance order of the index hits and drops
// products that were deactivated since they were indexed.
func (h *Handler) loadInOrder(c *gin.Context, ids []string) ([]models.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	found, err := h.Stores.Products.FindByIDs(c.Request.Context(), oids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(oids))
	for _, id := range oids {
		if p, ok := byID[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}
