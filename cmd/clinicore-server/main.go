package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicore/clinicore/internal/config"
	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/profile"
	"github.com/clinicore/clinicore/internal/domain/records"
	"github.com/clinicore/clinicore/internal/domain/scheduling"
	"github.com/clinicore/clinicore/internal/platform/access"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/middleware"
	"github.com/clinicore/clinicore/internal/platform/notification"
)

// accountDirectory adapts the identity service to profile.AccountDirectory,
// avoiding a direct import between the profile and identity packages.
type accountDirectory struct {
	svc *identity.Service
}

func (d *accountDirectory) AccountRole(ctx context.Context, accountID uuid.UUID) (string, error) {
	account, err := d.svc.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.Role, nil
}

// participantDirectory resolves appointment participants against the profile
// repositories. A profile ID is looked up as a patient first, then as a
// practitioner.
type participantDirectory struct {
	patients      profile.PatientRepository
	practitioners profile.PractitionerRepository
}

func (d *participantDirectory) Lookup(ctx context.Context, profileID uuid.UUID) (*scheduling.Participant, error) {
	patient, err := d.patients.GetByID(ctx, profileID)
	if err == nil {
		return &scheduling.Participant{
			ProfileID: patient.ID,
			Role:      identity.RolePatient,
			Email:     patient.Email,
		}, nil
	}
	if !errors.Is(err, clinicerr.ErrNotFound) {
		return nil, err
	}

	practitioner, err := d.practitioners.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &scheduling.Participant{
		ProfileID: practitioner.ID,
		Role:      identity.RolePractitioner,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicore-server",
		Short: "Clinic scheduling API server",
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
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// API group
	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Repositories
	accountRepo := identity.NewAccountRepo(pool)
	practitionerRepo := profile.NewPractitionerRepo(pool)
	patientRepo := profile.NewPatientRepo(pool)
	appointmentRepo := scheduling.NewAppointmentRepo(pool)
	recordRepo := records.NewRecordRepo(pool)

	// Notification stack. The log sender stands in until a mail provider is
	// configured.
	templates := notification.NewTemplateEngine()
	mailer := notification.NewManager(notification.NewLogSender(logger), templates)

	// Services
	identitySvc := identity.NewService(accountRepo)
	profileSvc := profile.NewService(
		practitionerRepo,
		patientRepo,
		&accountDirectory{svc: identitySvc},
		db.Runner(pool),
		appointmentRepo,
		recordRepo,
	)
	schedulingSvc := scheduling.NewService(
		appointmentRepo,
		&participantDirectory{patients: patientRepo, practitioners: practitionerRepo},
		mailer,
		logger,
	)
	recordsSvc := records.NewService(recordRepo)

	// Handlers
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1, access.RequireAdmin())
	profile.NewHandler(profileSvc).RegisterRoutes(apiV1)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)
	records.NewHandler(recordsSvc).RegisterRoutes(apiV1)

	// Operational endpoints for the notification delivery log
	opsGroup := apiV1.Group("", access.RequireAdmin())
	notification.NewHandler(mailer).RegisterRoutes(opsGroup)

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
