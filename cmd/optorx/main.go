package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ehr/optorx/internal/config"
	"github.com/ehr/optorx/internal/domain/prescription"
	"github.com/ehr/optorx/internal/platform/db"
	"github.com/ehr/optorx/internal/platform/logging"
	"github.com/ehr/optorx/internal/platform/middleware"
)

// Returned after every result has been printed so the exit status is non-zero.
var (
	errRejected    = errors.New("one or more prescriptions were rejected")
	errNotRecorded = errors.New("one or more remarks could not be recorded")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "optorx",
		Short:         "Optical prescription intake and journal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	return rootCmd
}

// app bundles what every command needs after configuration is loaded.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	svc    *prescription.Service
	pool   *pgxpool.Pool
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.Env, os.Stderr)

	a := &app{cfg: cfg, logger: logger}
	var journals prescription.Journals
	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		journals = prescription.NewPGJournals(pool)
		logger.Info().Msg("journaling to postgres")
	} else {
		journals = prescription.NewFileJournals(cfg.LogPath, cfg.RemarkLogPath)
		logger.Info().
			Str("prescriptions", cfg.LogPath).
			Str("remarks", cfg.RemarkLogPath).
			Msg("journaling to files")
	}
	a.svc = prescription.NewService(journals, logger)
	return a, nil
}

func readIntake(path string) (prescription.Intake, error) {
	format, err := prescription.FormatFromPath(path)
	if err != nil {
		return prescription.Intake{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return prescription.Intake{}, err
	}
	defer f.Close()
	return prescription.DecodeIntake(f, format)
}

func printOutcome(w io.Writer, path string, out prescription.Outcome) {
	if out.Accepted {
		fmt.Fprintf(w, "%s: accepted\n", path)
	} else {
		fmt.Fprintf(w, "%s: rejected (%s)\n", path, out.Reason)
	}
	for i, r := range out.Remarks {
		switch {
		case r.Accepted:
			fmt.Fprintf(w, "  remark %d: accepted\n", i+1)
		case r.Failed:
			fmt.Fprintf(w, "  remark %d: not recorded (%s)\n", i+1, r.Reason)
		default:
			fmt.Fprintf(w, "  remark %d: rejected (%s)\n", i+1, r.Reason)
		}
	}
}

func submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit FILE...",
		Short: "Validate intake files and append accepted entries to the journals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rejected, notRecorded := false, false
			for _, path := range args {
				in, err := readIntake(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				out, err := a.svc.Process(ctx, in)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printOutcome(cmd.OutOrStdout(), path, out)
				if !out.Accepted {
					rejected = true
				}
				if out.RemarksFailed() {
					notRecorded = true
				}
			}
			switch {
			case notRecorded:
				return errNotRecorded
			case rejected:
				return errRejected
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate intake files without writing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rejected := false
			for _, path := range args {
				in, err := readIntake(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				out, err := prescription.Check(in)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printOutcome(cmd.OutOrStdout(), path, out)
				if !out.Accepted {
					rejected = true
				}
			}
			if rejected {
				return errRejected
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(a.cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.pool != nil {
		e.GET("/health/db", db.HealthHandler(a.pool))
	}

	prescription.NewHandler(a.svc).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func runServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	e := newServer(a)
	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres journal tables",
	}

	withMigrator := func(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator, schema string) error) error {
		schema, _ := cmd.Flags().GetString("schema")
		dir, _ := cmd.Flags().GetString("dir")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for migrations")
		}

		ctx := context.Background()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		return fn(ctx, db.NewMigrator(pool, afero.NewOsFs(), dir), schema)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				count, err := m.Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) to schema %s.\n", count, schema)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				statuses, err := m.Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					state, at := "pending", ""
					if s.Applied && s.AppliedAt != nil {
						state = "applied"
						at = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, state, at)
				}
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "public", "Target schema for the journal tables")
		c.Flags().String("dir", "./migrations", "Path to migrations directory")
		cmd.AddCommand(c)
	}
	return cmd
}
