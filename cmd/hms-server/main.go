package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medicore/hms/internal/config"
	"github.com/medicore/hms/internal/domain/activity"
	"github.com/medicore/hms/internal/domain/admission"
	"github.com/medicore/hms/internal/domain/billing"
	"github.com/medicore/hms/internal/domain/clinical"
	"github.com/medicore/hms/internal/domain/identity"
	"github.com/medicore/hms/internal/domain/inbox"
	"github.com/medicore/hms/internal/domain/pharmacy"
	"github.com/medicore/hms/internal/domain/scheduling"
	"github.com/medicore/hms/internal/domain/search"
	"github.com/medicore/hms/internal/domain/workforce"
	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/internal/platform/blobstore"
	"github.com/medicore/hms/internal/platform/db"
	"github.com/medicore/hms/internal/platform/metrics"
	"github.com/medicore/hms/internal/platform/middleware"
	"github.com/medicore/hms/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Sessions
	sessions := auth.NewSessionManager(cfg.SessionSecret, auth.DefaultSessionTTL, cfg.IsProduction())

	// Profile image storage
	var images blobstore.Store
	if cfg.S3Bucket != "" {
		s3Store, err := blobstore.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
		images = s3Store
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("object storage enabled")
	} else {
		images = blobstore.NewMemoryStore()
		logger.Warn().Msg("S3_BUCKET not set; profile images stored in memory")
	}

	// Real-time hub
	hub := websocket.NewHub(logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Health check and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// API group
	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Session auth for everything except registration and login
	api.Use(auth.Middleware(sessions, func(c echo.Context) bool {
		switch c.Path() {
		case "/api/v1/auth/register", "/api/v1/auth/login":
			return true
		}
		return false
	}))

	// Audit trail for mutating requests
	activityRepo := activity.NewLogRepoPG(pool)
	recorder := activity.NewRecorder(activityRepo, logger)
	api.Use(activity.Middleware(recorder))

	// Notifications
	notificationRepo := inbox.NewNotificationRepoPG(pool)
	messageRepo := inbox.NewMessageRepoPG(pool)
	notifier := inbox.NewNotifier(notificationRepo, hub, logger)
	inboxSvc := inbox.NewService(notificationRepo, messageRepo, hub)
	inbox.NewHandler(inboxSvc).RegisterRoutes(api)

	// Identity
	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(userRepo, images, cfg.StaffRegistrationSecret)
	identityHandler := identity.NewHandler(identitySvc, sessions)
	identityHandler.RegisterPublicRoutes(api)
	identityHandler.RegisterRoutes(api)

	// Scheduling
	appointmentRepo := scheduling.NewAppointmentRepoPG(pool)
	reviewRepo := scheduling.NewReviewRepoPG(pool)
	schedulingSvc := scheduling.NewService(appointmentRepo, reviewRepo, notifier)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)

	// Pharmacy
	medicineRepo := pharmacy.NewMedicineRepoPG(pool)
	prescriptionRepo := pharmacy.NewPrescriptionRepoPG(pool)
	pharmacySvc := pharmacy.NewService(medicineRepo, prescriptionRepo)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(api)

	// Billing
	invoiceRepo := billing.NewInvoiceRepoPG(pool)
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	billingSvc := billing.NewService(invoiceRepo, medicineRepo, txRunner, notifier)
	billing.NewHandler(billingSvc).RegisterRoutes(api)

	// Clinical
	labReportRepo := clinical.NewLabReportRepoPG(pool)
	historyRepo := clinical.NewHistoryRepoPG(pool)
	clinicalSvc := clinical.NewService(labReportRepo, historyRepo, notifier)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api)

	// Admission
	bedRepo := admission.NewBedRepoPG(pool)
	admissionSvc := admission.NewService(bedRepo, billingSvc, logger)
	admission.NewHandler(admissionSvc).RegisterRoutes(api)

	// Workforce
	attendanceRepo := workforce.NewAttendanceRepoPG(pool)
	leaveRepo := workforce.NewLeaveRepoPG(pool)
	workforceSvc := workforce.NewService(attendanceRepo, leaveRepo, notifier, hub)
	workforce.NewHandler(workforceSvc).RegisterRoutes(api)

	// Activity log listing
	activity.NewHandler(activityRepo).RegisterRoutes(api)

	// Search
	searchSvc := search.NewService(userRepo, medicineRepo, appointmentRepo)
	search.NewHandler(searchSvc).RegisterRoutes(api)

	// WebSocket endpoint authenticates its own handshake via the session cookie.
	websocket.NewHandler(hub, sessions, cfg.CORSOrigins).RegisterRoutes(e.Group(""))

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
