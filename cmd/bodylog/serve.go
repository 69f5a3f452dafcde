package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	adapthttp "bodylog/internal/adapter/http"
	"bodylog/internal/app"
)

const sessionPurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			logrus.WithError(err).Warn("closing storage")
		}
	}()

	authSvc := app.NewAuthService(cfg.Auth.PasswordHash, b.sessions)
	srv := adapthttp.New(adapthttp.Services{
		Profiles: app.NewProfileService(b.repo),
		Entries:  app.NewEntryService(b.repo),
		Stats:    app.NewStatsService(b.repo),
		Backup:   app.NewBackupService(b.repo),
		Auth:     authSvc,
	}, cfg.Server.WebDir)

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srv.WithMetrics(adapthttp.NewMetrics("bodylog", reg), cfg.Metrics.Path)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	green := color.New(color.FgGreen)
	green.Print("  ▶ ")
	fmt.Printf("Listening: %s\n", cfg.Server.Addr)
	if authSvc.Enabled() {
		green.Print("  ▶ ")
		fmt.Println("Password lock enabled")
	}
	if cfg.Metrics.Enabled {
		green.Print("  ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}

	log := logrus.WithField("component", "serve")
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if authSvc.Enabled() {
		g.Go(func() error {
			ticker := time.NewTicker(sessionPurgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := authSvc.PurgeExpired(ctx); err != nil {
						log.WithError(err).Warn("purging expired sessions")
					}
				}
			}
		})
	}

	return g.Wait()
}
