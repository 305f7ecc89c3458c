package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/config"
	"farmlyf_back_end/internal/database"
	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/routes"
	"farmlyf_back_end/internal/services"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	logger := utils.InitLogger(cfg.LogLevel, cfg.IsDev())
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDatabases(ctx, cfg); err != nil {
		logger.Fatal("❌ database connection failed", zap.Error(err))
	}

	deps := buildDeps(cfg)
	config.InitOAuth(cfg)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.RegisterRoutes(r, deps, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 FarmLyf API listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ graceful shutdown", zap.Error(err))
	}
	database.CloseDatabases(shutdownCtx)
}

// buildDeps wires the stores and the optional backends. Interfaces are only
// assigned when the backend exists so handlers can nil-check them.
func buildDeps(cfg *config.Config) *handlers.Deps {
	stores := store.NewMongoStores(database.DB)
	if database.Scylla != nil {
		stores.Audit = store.NewScyllaAudit(database.Scylla)
	}

	var mailer utils.Mailer = utils.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = &utils.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}

	deps := &handlers.Deps{
		Config:   cfg,
		Stores:   stores,
		Cache:    cache.NewRedis(database.Redis),
		Tokens:   utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
		OTP:      &services.MailOTPSender{Mailer: mailer, Dev: cfg.IsDev()},
		Mailer:   mailer,
		Notifier: services.NewNotifier(stores.Notifications, services.NewRedisBus(database.Redis)),
	}

	if gw := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret); gw != nil {
		deps.Payments = gw
		zap.L().Info("💳 Stripe payments enabled")
	} else {
		zap.L().Warn("⚠️ STRIPE_SECRET_KEY missing, online payments disabled")
	}
	if database.MinIO != nil {
		deps.Storage = services.NewMinioStorage(database.MinIO, cfg.MinioBucket, cfg.MinioEndpoint, cfg.MinioPublicURL, cfg.MinioUseSSL)
	}
	if database.Elastic != nil {
		deps.Search = services.NewElasticIndex(database.Elastic)
	}
	return deps
}
