package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicops/clinicops/internal/config"
	"github.com/clinicops/clinicops/internal/domain/appointment"
	"github.com/clinicops/clinicops/internal/domain/availability"
	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/domain/calendar"
	"github.com/clinicops/clinicops/internal/domain/catalog"
	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/internal/platform/cache"
	"github.com/clinicops/clinicops/internal/platform/clock"
	"github.com/clinicops/clinicops/internal/platform/db"
	"github.com/clinicops/clinicops/internal/platform/events"
	"github.com/clinicops/clinicops/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic operations API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
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

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Roll forward with a new migration instead.")
			return nil
		},
	})

	return cmd
}

// sweepCmd deletes abandoned provisional holds. Run it from cron or a
// scheduler; the server itself never expires holds.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete abandoned booking holds past the hold TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			clk, err := clock.New(cfg.ClinicTimezone)
			if err != nil {
				return err
			}

			apptRepo := appointment.NewRepoPG(pool)
			svc := appointment.NewService(apptRepo, pool, nil, nil, nil, nil, nil, nil,
				events.Noop{}, clk, time.Duration(cfg.HoldTTLMinutes)*time.Minute)

			n, err := svc.SweepAbandoned(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			logger.Info().Int64("deleted", n).Msg("swept abandoned holds")
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	clk, err := clock.New(cfg.ClinicTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid clinic timezone")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Cache for resolved operating hours
	cacheTTL := time.Duration(cfg.CacheTTLMin) * time.Minute
	var store cache.Store
	if cfg.CacheBackend == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid redis URL")
		}
		store = cache.NewRedis(redis.NewClient(opts), "clinicops", cacheTTL)
		logger.Info().Msg("using redis cache")
	} else {
		store = cache.NewMemory(cfg.CacheSize, cacheTTL)
	}

	// Lifecycle events
	var pub events.Publisher = events.Noop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafka := events.NewKafka(brokers, cfg.KafkaTopic, logger)
		defer kafka.Close()
		pub = kafka
		logger.Info().Strs("brokers", brokers).Msg("publishing lifecycle events to kafka")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware. The patient booking surface stays open; staff and
	// admin routes check roles per-route on top of the validated token.
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.JWTSecret),
		}, publicRoute))
	}

	// Repositories
	branchRepo := branch.NewRepoPG(pool)
	hourRepo := branch.NewOperatingHourRepoPG(pool)
	apptHourRepo := branch.NewAppointmentHourRepoPG(pool)
	holidayRepo := calendar.NewHolidayRepoPG(pool)
	blockoffRepo := calendar.NewBlockoffRepoPG(pool)
	groupRepo := catalog.NewGroupRepoPG(pool)
	serviceRepo := catalog.NewServiceRepoPG(pool)
	codeRepo := catalog.NewCorporateCodeRepoPG(pool)
	onsiteRepo := catalog.NewOnsiteBranchRepoPG(pool)
	ledgerRepo := availability.NewLedgerRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)

	// Services
	interval := time.Duration(cfg.SlotIntervalMinutes) * time.Minute
	branchSvc := branch.NewService(branchRepo, hourRepo, apptHourRepo)
	calendarSvc := calendar.NewService(holidayRepo, blockoffRepo, hourRepo, clk)
	catalogMgr := catalog.NewManager(groupRepo, serviceRepo, codeRepo, onsiteRepo)
	resolver := availability.NewHoursResolver(hourRepo, apptHourRepo, holidayRepo, blockoffRepo, store, interval)
	window := availability.NewWindowResolver(serviceRepo, groupRepo, branchRepo, onsiteRepo, cfg.BookingHorizonMonths)
	ledger := availability.NewLedger(ledgerRepo)
	availSvc := availability.NewService(branchRepo, serviceRepo, groupRepo, resolver, window, ledger)
	apptSvc := appointment.NewService(apptRepo, pool, availSvc, ledger,
		branchRepo, serviceRepo, groupRepo, catalogMgr, pub, clk,
		time.Duration(cfg.HoldTTLMinutes)*time.Minute)

	// Routes
	api := e.Group("/api/v1")
	branch.NewHandler(branchSvc).RegisterRoutes(api)
	calendar.NewHandler(calendarSvc).RegisterRoutes(api)
	catalog.NewHandler(catalogMgr, clk.Now).RegisterRoutes(api)
	availability.NewHandler(availSvc, clk).RegisterRoutes(api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// publicRoute lists the unauthenticated surface: health checks and the
// patient-facing booking endpoints.
func publicRoute(c echo.Context) bool {
	p := c.Request().URL.Path
	switch {
	case p == "/health", p == "/health/db":
		return true
	case strings.HasPrefix(p, "/api/v1/appointments"):
		return true
	case p == "/api/v1/corporate-codes/validate":
		return true
	}
	return false
}
