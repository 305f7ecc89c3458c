package product

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

// CreateReview is open to customers who received the product; one review
// per customer and product.
func (h *Handler) CreateReview(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	productID, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	p, err := h.Stores.Products.FindByID(ctx, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	bought, err := h.Stores.Orders.HasDeliveredProduct(ctx, uid, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if !bought {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only customers who received this product can review it"})
		return
	}

	u, err := h.Stores.Users.FindByID(ctx, uid)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	name := u.Name
	if name == "" {
		name = "FarmLyf customer"
	}

	review := models.Review{
		ProductID: p.ID,
		UserID:    uid,
		UserName:  name,
		Rating:    req.Rating,
		Comment:   utils.StripTags(req.Comment),
		CreatedAt: h.Clock(),
	}
	if err := h.Stores.Reviews.Create(ctx, &review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "You already reviewed this product"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	h.Notifier.Notify(ctx, models.NotifyReviewPosted, name+" reviewed "+p.Name, review.ID.Hex())

	c.JSON(http.StatusCreated, review)
}

// ListReviews returns the reviews of a product with its average rating.
func (h *Handler) ListReviews(c *gin.Context) {
	productID, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	reviews, err := h.Stores.Reviews.ListByProduct(ctx, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	rating, err := h.Stores.Reviews.Rating(ctx, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":       reviews,
		"averageRating": rating.AverageRating,
		"totalReviews":  rating.TotalReviews,
	})
}

// DeleteReview (admin) removes an abusive review.
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if err := h.Stores.Reviews.Delete(ctx, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
