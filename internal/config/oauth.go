package config

import (
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"
)

// InitOAuth registers the social login providers with goth.
// Google is skipped when its credentials are missing.
func InitOAuth(cfg *Config) bool {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(600)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = !cfg.IsDev()
	gothic.Store = store

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		zap.L().Warn("⚠️ Google OAuth disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
		return false
	}

	goth.UseProviders(
		google.New(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.OAuthCallbackBase+"/api/auth/google/callback", "email", "profile"),
	)
	zap.L().Info("✅ Google OAuth provider registered")
	return true
}
