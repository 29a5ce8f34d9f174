// Package tracker provides caffeine consumption tracking services
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baely/caffeine/internal/balance"
	"github.com/baely/caffeine/internal/caffeine"
	"github.com/baely/caffeine/internal/tracker/database"
	"github.com/baely/caffeine/internal/tracker/server"
)

// TrackerService tracks caffeine consumption events
type TrackerService struct {
	db     database.Store
	router chi.Router
	logger *slog.Logger
}

// Config contains configuration for the TrackerService
type Config struct {
	Store         database.Store
	HalfLifeHours float64
	Location      *time.Location
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewWithConfig creates a new TrackerService over an open store
func NewWithConfig(cfg *Config) *TrackerService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &TrackerService{
		db:     cfg.Store,
		logger: logger,
	}

	t.router = server.NewServer(server.Config{
		Store:    cfg.Store,
		Model:    caffeine.Model{HalfLife: cfg.HalfLifeHours},
		Location: cfg.Location,
		Now:      cfg.Now,
		Logger:   logger,
	})

	return t
}

// Chi returns the router for this service
func (t *TrackerService) Chi() chi.Router {
	return t.router
}

// HandleEvent processes transaction events from the webhook service
// It implements the balance.TransactionEventHandler interface
func (t *TrackerService) HandleEvent(ctx context.Context, event balance.TransactionEvent) error {
	t.logger.Info("Processing transaction event",
		"description", event.Transaction.Attributes.Description,
		"amount", event.Transaction.Attributes.Amount.Value)

	return server.ProcessEvent(ctx, t.db, event)
}
