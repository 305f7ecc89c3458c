package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

// Handler serves the customer facing /api/users, /api/orders and
// /api/returns routes.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

type otpRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
	Name  string `json:"name" binding:"omitempty,max=80"`
}

// RequestOTP sends a login code to the phone number.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	phone := utils.NormalizePhone(req.Phone)

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	code, err := utils.GenerateOTP()
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := h.Cache.SaveOTP(ctx, phone, code, cache.OTPTTL); err != nil {
		utils.HandleError(c, err)
		return
	}

	var email string
	if u, err := h.Stores.Users.FindByPhone(ctx, phone); err == nil {
		email = u.Email
	}
	if err := h.OTP.SendOTP(ctx, phone, email, code, cache.OTPTTL); err != nil {
		zap.L().Error("❌ otp delivery failed", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not deliver the code, try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "OTP sent",
		"expires_in": int(cache.OTPTTL.Seconds()),
	})
}

// VerifyOTP logs the customer in, creating the account on first login.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	phone := utils.NormalizePhone(req.Phone)

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	switch err := h.Cache.VerifyOTP(ctx, phone, req.OTP); {
	case err == nil:
	case errors.Is(err, cache.ErrOTPMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect OTP"})
		return
	case errors.Is(err, cache.ErrOTPLocked):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many wrong attempts, request a new OTP"})
		return
	case errors.Is(err, cache.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired, request a new one"})
		return
	default:
		utils.HandleError(c, err)
		return
	}

	u, err := h.Stores.Users.FindByPhone(ctx, phone)
	created := false
	if errors.Is(err, store.ErrNotFound) {
		u = &models.User{
			Name:      req.Name,
			Phone:     phone,
			Role:      models.RoleCustomer,
			Provider:  models.ProviderOTP,
			Addresses: []models.Address{},
		}
		err = h.Stores.Users.Create(ctx, u)
		created = err == nil
	}
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	resp, err := h.StartSession(c, *u)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	resp["new_user"] = created
	zap.L().Info("✅ otp login", zap.String("user_id", u.ID.Hex()), zap.Bool("new_user", created))
	c.JSON(http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates the refresh token and issues a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing refresh token"})
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	userID, err := h.Cache.ConsumeRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if !errors.Is(err, cache.ErrTokenGone) {
			zap.L().Warn("⚠️ refresh lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalid or expired"})
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalid or expired"})
		return
	}
	u, err := h.Stores.Users.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	resp, err := h.StartSession(c, *u)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the access token until it expires and drops the refresh token.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	if jti := c.GetString(middleware.CtxTokenID); jti != "" {
		if ttl := middleware.TokenRemaining(c); ttl > 0 {
			if err := h.Cache.BlacklistToken(ctx, jti, ttl); err != nil {
				zap.L().Warn("⚠️ blacklist token", zap.Error(err))
			}
		}
	}
	if req.RefreshToken != "" {
		if err := h.Cache.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
			zap.L().Warn("⚠️ delete refresh token", zap.Error(err))
		}
	}

	handlers.ClearTokenCookie(c, !h.Config.IsDev())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	u, err := h.Stores.Users.FindByID(ctx, uid)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type profileRequest struct {
	Name      string           `json:"name" binding:"required,min=2,max=80"`
	Email     string           `json:"email" binding:"omitempty,email"`
	Addresses []models.Address `json:"addresses" binding:"omitempty,max=10,dive"`
}

// UpdateMe replaces name, email and the address book.
func (h *Handler) UpdateMe(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	if req.Addresses == nil {
		req.Addresses = []models.Address{}
	}
	for i := range req.Addresses {
		req.Addresses[i].Phone = utils.NormalizePhone(req.Addresses[i].Phone)
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	u, err := h.Stores.Users.UpdateProfile(ctx, uid, req.Name, req.Email, req.Addresses)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already used by another account"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// BeginAuth redirects to the social login provider.
func (h *Handler) BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No provider given"})
		return
	}
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth finishes the social login, sets the session cookie and sends
// the browser back to the shop.
func (h *Handler) CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gu, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		zap.L().Warn("⚠️ oauth callback failed", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Social login failed"})
		return
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	u, err := h.findOrCreateSocialUser(ctx, provider, gu.UserID, gu.Email, gu.Name)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if _, err := h.StartSession(c, *u); err != nil {
		utils.HandleError(c, err)
		return
	}
	zap.L().Info("✅ social login", zap.String("provider", provider), zap.String("user_id", u.ID.Hex()))
	c.Redirect(http.StatusTemporaryRedirect, h.Config.FrontendURL+"/auth/success")
}

func (h *Handler) findOrCreateSocialUser(ctx context.Context, provider, providerID, email, name string) (*models.User, error) {
	u, err := h.Stores.Users.FindByProvider(ctx, provider, providerID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if email != "" {
		u, err = h.Stores.Users.FindByEmail(ctx, email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	u = &models.User{
		Name:       name,
		Email:      email,
		Role:       models.RoleCustomer,
		Provider:   provider,
		ProviderID: providerID,
		Addresses:  []models.Address{},
	}
	if err := h.Stores.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
