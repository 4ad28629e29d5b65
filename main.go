package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pliqo-backend/auth"
	"pliqo-backend/config"
	"pliqo-backend/handlers"
	"pliqo-backend/logging"
	"pliqo-backend/middleware"
	"pliqo-backend/models"
	"pliqo-backend/notify"
	"pliqo-backend/referral"
	"pliqo-backend/scheduler"
	"pliqo-backend/store"
	"pliqo-backend/wager"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment")
	}
	cfg := config.Load()

	if err := logging.InitLogger(cfg.Env == "release"); err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer logging.L().Sync()

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer st.Close()

	if err := ensureAdmin(ctx, st, cfg); err != nil {
		log.Fatalf("❌ Failed to ensure admin account: %v", err)
	}

	referrals := referral.New(st, logging.L())
	wagers := wager.New(st, logging.L())
	sched := scheduler.New(logging.L())
	defer sched.Shutdown()

	if tg, err := notify.NewTelegram(cfg, logging.L()); err != nil {
		log.Printf("⚠️ Telegram notifications disabled: %v", err)
	} else if tg != nil {
		referrals.WithNotifier(tg)
	}

	handlers.Init(cfg, st, referrals, wagers, sched)

	if cfg.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.SetTrustedProxies(cfg.TrustedProxies)
	r.Use(middleware.SetupCORS(cfg))

	registerRoutes(r, cfg)

	log.Printf("🚀 Backend listening on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Println("⚠️ Using in-memory store, data will not survive restarts")
		return store.NewMemory(), nil
	}
	return store.OpenPostgres(ctx, cfg)
}

// ensureAdmin creates the default admin account on first start.
func ensureAdmin(ctx context.Context, st store.Store, cfg *config.Config) error {
	return st.Update(ctx, func(d *store.Data) error {
		if d.FindAdmin() != nil || d.FindUserByEmail(cfg.AdminEmail) != nil {
			return nil
		}
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}
		d.Users = append(d.Users, models.User{
			ID:             uuid.NewString(),
			Name:           "Admin",
			Email:          cfg.AdminEmail,
			PasswordHash:   hash,
			Plan:           987,
			Active:         true,
			Role:           models.RoleAdmin,
			Level:          1,
			WhatsappNumber: cfg.AdminWhatsapp,
			CreatedAt:      time.Now().UTC(),
		})
		log.Printf("✅ Admin account created: %s", cfg.AdminEmail)
		return nil
	})
}

func registerRoutes(r *gin.Engine, cfg *config.Config) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/register", handlers.RegisterHandler)
	r.POST("/auth/login", handlers.LoginHandler)
	r.POST("/auth/refresh", handlers.RefreshHandler)
	r.GET("/user/:id/public", handlers.PublicProfileHandler)
	r.GET("/user/:id/payment/public", handlers.PublicPaymentHandler)
	r.GET("/public/admin", handlers.PublicAdminHandler)
	r.POST("/referral/visit", handlers.ReferralVisitHandler)
	r.POST("/referral/video", handlers.ReferralVideoHandler)

	// Authenticated
	authed := r.Group("/", middleware.AuthMiddleware(cfg))
	{
		authed.GET("/users/me", handlers.MeHandler)
		authed.POST("/users/me/update", handlers.UpdateMeHandler)
		authed.DELETE("/users/me", handlers.DeleteMeHandler)
		authed.POST("/settings", handlers.SettingsHandler)

		authed.POST("/users/me/notify-payment", handlers.NotifyPaymentHandler)
		authed.GET("/users/me/sponsor", handlers.SponsorHandler)
		authed.GET("/users/me/referral/stats", handlers.ReferralStatsHandler)
		authed.GET("/users/referrals", handlers.PendingReferralsHandler)
		authed.GET("/users/referrals/requests", handlers.ReferralRequestsHandler)
		authed.POST("/users/:id/activate", handlers.ActivateHandler)
		authed.GET("/sales", handlers.SalesHandler)
		authed.GET("/levels", handlers.LevelsHandler)

		authed.POST("/bets", handlers.CreateBetHandler)
		authed.POST("/bets/random", handlers.CreateRandomBetHandler)
		authed.GET("/bets", handlers.ListBetsHandler)
		authed.POST("/bets/:id/deposit", handlers.DepositHandler)
		authed.POST("/bets/:id/start", handlers.StartBetHandler)

		authed.POST("/bot/binary/start", handlers.BinaryStartHandler)
		authed.POST("/bot/binary/stop", handlers.BinaryStopHandler)
		authed.GET("/bot/binary/status", handlers.BinaryStatusHandler)

		authed.POST("/settings/2fa/setup", handlers.TwoFASetupHandler)
		authed.POST("/settings/2fa/enable", handlers.TwoFAEnableHandler)
		authed.POST("/settings/2fa/disable", handlers.TwoFADisableHandler)
	}

	// Admin
	admin := r.Group("/", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/bets/:id/payout", handlers.PayoutHandler)
		admin.POST("/admin/users/:id/level", handlers.SetUserLevelHandler)
	}

	r.GET("/admin/payment", middleware.AuthMiddleware(cfg), handlers.AdminPaymentHandler)
}
