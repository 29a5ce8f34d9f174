package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/baely/caffeine/internal/balance"
	"github.com/baely/caffeine/internal/server"
	"github.com/baely/caffeine/internal/tracker"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	log := slog.Default()

	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	trackerService := tracker.NewWithConfig(&tracker.Config{
		Store:         db,
		HalfLifeHours: a.cfg.Decay.HalfLifeHours,
		Location:      a.loc,
		Now:           a.now,
		Logger:        log,
	})

	webhookService := balance.NewWithConfig(&balance.Config{
		UpAccessToken: a.cfg.Up.AccessToken,
		WebhookSecret: a.cfg.Up.WebhookSecret,
		Logger:        log,
	})
	defer webhookService.Stop()
	webhookService.RegisterHandler(trackerService)

	s := server.New(a.cfg.Server.Addr)
	s.Register(a.cfg.Server.WebhookHosts, "/webhook", webhookService.Chi())
	s.Register(a.cfg.Server.TrackerHosts, "/", trackerService.Chi())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			"addr", a.cfg.Server.Addr,
			"driver", a.cfg.Database.Driver,
			"half_life_hours", a.cfg.Decay.HalfLifeHours,
			"timezone", a.loc.String(),
			"version", VersionString())
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
