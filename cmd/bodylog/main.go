// Command bodylog tracks body weight and measurements for one or more
// profiles, either from the terminal or through its web server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bodylog/internal/adapter/localdb"
	"bodylog/internal/adapter/memory"
	"bodylog/internal/adapter/postgres"
	"bodylog/internal/app"
	"bodylog/internal/config"
	"bodylog/internal/domain"
	"bodylog/internal/logging"
)

var (
	// Global flags
	configPath string
	profileID  string
	ephemeral  bool
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bodylog",
	Short: "Personal body-metrics tracker",
	Long: `bodylog records daily weight, waist, body fat and workouts per profile
and derives BMI, trend, BMR, TDEE and calorie targets from them.

Data lives in a local file by default. Set database.url (or
BODYLOG_DATABASE_URL) to use PostgreSQL instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logging.Setup(logging.Params{
			Level:    level,
			JSON:     cfg.JSONLogs(),
			File:     cfg.Logging.File,
			ToStdout: cfg.Logging.File != "",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("BODYLOG_CONFIG", "bodylog.yaml"), "path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&profileID, "profile", "p", domain.DefaultProfileID, "active profile id")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep all data in memory for this run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, profileCmd, entryCmd, statsCmd, exportCmd, importCmd, wipeCmd, hashPasswordCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is an opened repository plus the session store that goes with it.
type backend struct {
	repo     domain.Repository
	sessions domain.SessionRepository
	close    func() error
}

func openBackend(ctx context.Context) (*backend, error) {
	log := logrus.WithField("component", "backend")

	switch {
	case ephemeral:
		log.Info("using in-memory storage")
		db := memory.New()
		return &backend{repo: db, sessions: db.NewSessionRepo(), close: func() error { return nil }}, nil

	case cfg.UsePostgres():
		log.Info("using postgres storage")
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &backend{repo: db, sessions: postgres.NewSessionRepo(db), close: db.Close}, nil

	default:
		log.WithField("path", cfg.Database.Path).Info("using local storage")
		db, err := localdb.Open(ctx, cfg.Database.Path, localdb.WithLogger(logrus.WithField("component", "localdb")))
		if err != nil {
			return nil, err
		}
		// Sessions are not persisted in the local file; a restart logs everyone out.
		return &backend{repo: db, sessions: memory.New().NewSessionRepo(), close: db.Close}, nil
	}
}

// withWorkspace opens the backend, runs fn and closes the backend again.
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, ws app.Workspace) error) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			logrus.WithError(err).Warn("closing storage")
		}
	}()
	return fn(ctx, app.Workspace{Repo: b.repo, ActiveProfile: profileID})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
