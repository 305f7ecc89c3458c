package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/utils"
)

// StartSession issues the access and refresh tokens for u, sets the
// session cookie and returns the login response body.
func (d *Deps) StartSession(c *gin.Context, u models.User) (gin.H, error) {
	access, _, err := d.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := d.Cache.StoreRefreshToken(c.Request.Context(), refresh, u.ID.Hex(), d.Config.RefreshTokenTTL); err != nil {
		return nil, err
	}

	SetTokenCookie(c, access, int(d.Tokens.TTL().Seconds()), !d.Config.IsDev())
	return gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    int(d.Tokens.TTL().Seconds()),
		"user":          u,
	}, nil
}

func SetTokenCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", secure, true)
}

func ClearTokenCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secure, true)
}
