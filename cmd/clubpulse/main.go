// @title			ClubPulse API
// @version		1.0
// @description	Registration, attendance and gamification engine for student organizations.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/database"
	"github.com/clubpulse/clubpulse/internal/handler"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/repository"
	"github.com/clubpulse/clubpulse/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "clubpulse",
		Usage: "Event registration and gamification engine for student organizations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "attendance-points",
				Value:   config.DefaultAttendancePoints,
				Usage:   "Points awarded for a confirmed event attendance",
				EnvVars: []string{"ATTENDANCE_POINTS"},
			},
			&cli.IntFlag{
				Name:    "level-step",
				Value:   config.DefaultLevelStep,
				Usage:   "Points per level (level = points/step + 1)",
				EnvVars: []string{"LEVEL_STEP"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "mark-no-shows",
				Usage:  "Transition lapsed registrations on ended events to no-show",
				Action: runMarkNoShows,
			},
			{
				Name:   "reconcile-seats",
				Usage:  "Recompute occupied seat counters from active registrations",
				Action: runReconcileSeats,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// pointsConfig builds the ledger configuration from CLI flags.
func pointsConfig(c *cli.Context) config.Points {
	cfg := config.Points{
		AttendancePoints: c.Int("attendance-points"),
		LevelStep:        c.Int("level-step"),
	}
	if cfg.AttendancePoints <= 0 {
		cfg.AttendancePoints = config.DefaultAttendancePoints
	}
	if cfg.LevelStep <= 0 {
		cfg.LevelStep = config.DefaultLevelStep
	}
	return cfg
}

// connect opens the database and applies pending migrations.
func connect(c *cli.Context) (*database.DB, error) {
	db, err := database.New(c.Context, c.String("database-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(db.Pool(), pointsConfig(c))

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newRegistrationService wires the registration service for the maintenance
// commands without going through the HTTP handler.
func newRegistrationService(db *database.DB, cfg config.Points) *service.RegistrationService {
	pool := db.Pool()
	memberRepo := repository.NewMemberRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	awardRepo := repository.NewAwardRepository(pool)
	badgeRepo := repository.NewBadgeRepository(pool)
	ledger := service.NewLedger(pool, memberRepo, awardRepo, badgeRepo, cfg)
	return service.NewRegistrationService(pool, regRepo, eventRepo, memberRepo, ledger)
}

func runMarkNoShows(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := newRegistrationService(db, pointsConfig(c))

	count, err := svc.MarkNoShows(c.Context)
	if err != nil {
		return fmt.Errorf("mark no-shows: %w", err)
	}

	slog.Info("no-show sweep complete", "updated", count)
	return nil
}

func runReconcileSeats(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := newRegistrationService(db, pointsConfig(c))

	repaired, err := svc.ReconcileSeats(c.Context)
	if err != nil {
		return fmt.Errorf("reconcile seats: %w", err)
	}

	slog.Info("seat reconciliation complete", "repaired", repaired)
	return nil
}
