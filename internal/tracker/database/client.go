package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baely/caffeine/internal/catalog"
	"github.com/baely/caffeine/internal/common/errors"
	"github.com/baely/caffeine/internal/config"
	"github.com/baely/caffeine/internal/tracker/models"
)

// Store is the event store the tracker reads doses from
type Store interface {
	AddEvent(ctx context.Context, event models.CaffeineEvent) (models.CaffeineEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvents(ctx context.Context, start, end time.Time) ([]models.CaffeineEvent, error)
	GetTotals(ctx context.Context, start, end time.Time) (models.Totals, error)

	AddDrink(ctx context.Context, drink catalog.Drink) error
	DeleteDrink(ctx context.Context, name string) error
	ListDrinks(ctx context.Context) ([]catalog.Drink, error)

	Ping(ctx context.Context) error
	Close() error
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Client is a Store backed by database/sql
type Client struct {
	db      *sql.DB
	dialect dialect
	Path    string
}

var _ Store = (*Client)(nil)

// Open connects to the database described by cfg and migrates it
func Open(cfg config.DatabaseConfig) (*Client, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(cfg.PostgresDSN())
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			var err error
			path, err = config.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve db path: %w", err)
			}
		}
		return NewSQLite(path)
	}
	return nil, errors.Invalid("unknown database driver %q", cfg.Driver)
}

// rebind rewrites ? placeholders into the $n form postgres expects
func (c *Client) rebind(q string) string {
	if c.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}

func validateEvent(event models.CaffeineEvent) error {
	if event.Timestamp.IsZero() {
		return errors.Invalid("event time is required")
	}
	if !(event.Amount >= 0) || math.IsInf(event.Amount, 0) {
		return errors.Invalid("amount must be a finite value >= 0, got %v", event.Amount)
	}
	return nil
}

func (c *Client) AddEvent(ctx context.Context, event models.CaffeineEvent) (models.CaffeineEvent, error) {
	if err := validateEvent(event); err != nil {
		return models.CaffeineEvent{}, err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Source == "" {
		event.Source = models.SourceManual
	}

	row := models.ToRow(event)
	q := c.rebind(`INSERT INTO caffeine_event (id, timestamp, description, amount, cost, source) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := c.db.ExecContext(ctx, q, row.ID, row.Timestamp, row.Description, row.Amount, row.Cost, row.Source)
	if err != nil {
		slog.Error("Failed to add event", "error", err)
		return models.CaffeineEvent{}, errors.Wrap(err, "add event")
	}
	return models.ToEvent(row), nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM caffeine_event WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "delete event %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("event %s", id)
	}
	return nil
}

// GetEvents returns events with start <= timestamp < end, oldest first
func (c *Client) GetEvents(ctx context.Context, start, end time.Time) ([]models.CaffeineEvent, error) {
	events := make([]models.CaffeineEvent, 0)
	q := c.rebind(`SELECT id, timestamp, description, amount, cost, source FROM caffeine_event WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp ASC, id ASC`)
	rows, err := c.db.QueryContext(ctx, q, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return events, errors.Wrap(err, "get events")
	}
	defer rows.Close()

	for rows.Next() {
		var row models.CaffeineRow
		if err := rows.Scan(&row.ID, &row.Timestamp, &row.Description, &row.Amount, &row.Cost, &row.Source); err != nil {
			return events, errors.Wrap(err, "scan event")
		}
		events = append(events, models.ToEvent(row))
	}
	return events, rows.Err()
}

func (c *Client) GetTotals(ctx context.Context, start, end time.Time) (models.Totals, error) {
	var totals models.Totals
	q := c.rebind(`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(cost), 0) FROM caffeine_event WHERE timestamp >= ? AND timestamp < ?`)
	err := c.db.QueryRowContext(ctx, q, start.UnixMilli(), end.UnixMilli()).Scan(&totals.Intake, &totals.Cost)
	if err != nil {
		return models.Totals{}, errors.Wrap(err, "get totals")
	}
	return totals, nil
}

func drinkKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Client) AddDrink(ctx context.Context, drink catalog.Drink) error {
	if err := catalog.Validate(drink); err != nil {
		return err
	}

	var count int
	err := c.db.QueryRowContext(ctx, c.rebind(`SELECT COUNT(*) FROM custom_drink WHERE name_key = ?`), drinkKey(drink.Name)).Scan(&count)
	if err != nil {
		return errors.Wrap(err, "check drink")
	}
	if count > 0 {
		return errors.Wrap(errors.ErrAlreadyExists, "drink %q", drink.Name)
	}

	q := c.rebind(`INSERT INTO custom_drink (name_key, name, mg_per_100ml, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := c.db.ExecContext(ctx, q, drinkKey(drink.Name), strings.TrimSpace(drink.Name), drink.MgPer100Ml, time.Now().UnixMilli()); err != nil {
		return errors.Wrap(err, "add drink")
	}
	return nil
}

func (c *Client) DeleteDrink(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM custom_drink WHERE name_key = ?`), drinkKey(name))
	if err != nil {
		return errors.Wrap(err, "delete drink %q", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("drink %q", name)
	}
	return nil
}

// ListDrinks returns the custom drinks in the order they were added
func (c *Client) ListDrinks(ctx context.Context) ([]catalog.Drink, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, mg_per_100ml FROM custom_drink ORDER BY created_at, name_key`)
	if err != nil {
		return nil, errors.Wrap(err, "list drinks")
	}
	defer rows.Close()

	drinks := make([]catalog.Drink, 0)
	for rows.Next() {
		d := catalog.Drink{Custom: true}
		if err := rows.Scan(&d.Name, &d.MgPer100Ml); err != nil {
			return nil, errors.Wrap(err, "scan drink")
		}
		drinks = append(drinks, d)
	}
	return drinks, rows.Err()
}
