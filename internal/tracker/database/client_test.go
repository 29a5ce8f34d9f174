package database

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/baely/caffeine/internal/catalog"
	cerrors "github.com/baely/caffeine/internal/common/errors"
	"github.com/baely/caffeine/internal/config"
	"github.com/baely/caffeine/internal/tracker/models"
)

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSchemaVersion(t *testing.T) {
	c := testClient(t)

	v, err := c.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	c := testClient(t)

	if err := c.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := c.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion after re-migrate = %d, want %d", v, len(migrations))
	}
}

func TestNewSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/nested/caffeine.db"
	c, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if c.Path != path {
		t.Errorf("Path = %q, want %q", c.Path, path)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("Open err = %v, want ErrInvalidInput", err)
	}
}

func TestAddAndGetEvents(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	second, err := c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day.Add(11 * time.Hour), Description: "Tea", Amount: 22})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	first, err := c.AddEvent(ctx, models.CaffeineEvent{ID: "fixed-id", Timestamp: day.Add(8 * time.Hour), Description: "Coffee", Amount: 160, Cost: 550, Source: models.SourceUp})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	if second.ID == "" {
		t.Error("AddEvent did not assign an ID")
	}
	if second.Source != models.SourceManual {
		t.Errorf("Source = %q, want %q", second.Source, models.SourceManual)
	}
	if first.ID != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", first.ID)
	}

	events, err := c.GetEvents(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Description != "Coffee" || events[1].Description != "Tea" {
		t.Errorf("events not ordered by time: %+v", events)
	}
	if !events[0].Timestamp.Equal(day.Add(8*time.Hour)) || events[0].Cost != 550 || events[0].Source != models.SourceUp {
		t.Errorf("events[0] = %+v", events[0])
	}
}

func TestGetEventsRange(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	for _, h := range []int{-1, 0, 12, 24} {
		if _, err := c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day.Add(time.Duration(h) * time.Hour), Amount: 10}); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	events, err := c.GetEvents(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	// start is inclusive, end exclusive
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}

	empty, err := c.GetEvents(ctx, day.Add(48*time.Hour), day.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("GetEvents(empty range) = %v, want empty slice", empty)
	}
}

func TestAddEventInvalid(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	tests := []models.CaffeineEvent{
		{Description: "no time", Amount: 10},
		{Description: "negative", Amount: -1, Timestamp: day},
		{Description: "infinite", Amount: math.Inf(1), Timestamp: day},
		{Description: "not a number", Amount: math.NaN(), Timestamp: day},
	}
	for _, e := range tests {
		if _, err := c.AddEvent(ctx, e); !errors.Is(err, cerrors.ErrInvalidInput) {
			t.Errorf("AddEvent(%q) err = %v, want ErrInvalidInput", e.Description, err)
		}
	}

	events, err := c.GetEvents(ctx, time.Unix(0, 0), day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("stored %d invalid events", len(events))
	}
}

func TestDeleteEvent(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	e, err := c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day, Amount: 95})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	if err := c.DeleteEvent(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := c.DeleteEvent(ctx, e.ID); !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("second DeleteEvent err = %v, want ErrNotFound", err)
	}

	events, _ := c.GetEvents(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	if len(events) != 0 {
		t.Errorf("got %d events after delete, want 0", len(events))
	}
}

func TestGetTotals(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	totals, err := c.GetTotals(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if totals.Intake != 0 || totals.Cost != 0 {
		t.Errorf("empty totals = %+v", totals)
	}

	c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day.Add(time.Hour), Amount: 160, Cost: 550})
	c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day.Add(2 * time.Hour), Amount: 80, Cost: 600})
	c.AddEvent(ctx, models.CaffeineEvent{Timestamp: day.Add(30 * time.Hour), Amount: 80, Cost: 600})

	totals, err = c.GetTotals(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if totals.Intake != 240 || totals.Cost != 1150 {
		t.Errorf("totals = %+v, want intake 240 cost 1150", totals)
	}
}

func TestCustomDrinks(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	drinks, err := c.ListDrinks(ctx)
	if err != nil {
		t.Fatalf("ListDrinks: %v", err)
	}
	if len(drinks) != 0 {
		t.Fatalf("got %d drinks, want 0", len(drinks))
	}

	if err := c.AddDrink(ctx, catalog.Drink{Name: "Cold Brew", MgPer100Ml: 60}); err != nil {
		t.Fatalf("AddDrink: %v", err)
	}
	if err := c.AddDrink(ctx, catalog.Drink{Name: "cold brew", MgPer100Ml: 70}); !errors.Is(err, cerrors.ErrAlreadyExists) {
		t.Errorf("duplicate AddDrink err = %v, want ErrAlreadyExists", err)
	}
	if err := c.AddDrink(ctx, catalog.Drink{Name: "Coffee", MgPer100Ml: 70}); !errors.Is(err, cerrors.ErrAlreadyExists) {
		t.Errorf("default-name AddDrink err = %v, want ErrAlreadyExists", err)
	}
	if err := c.AddDrink(ctx, catalog.Drink{Name: "Water", MgPer100Ml: 0}); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("zero-caffeine AddDrink err = %v, want ErrInvalidInput", err)
	}

	drinks, err = c.ListDrinks(ctx)
	if err != nil {
		t.Fatalf("ListDrinks: %v", err)
	}
	if len(drinks) != 1 || drinks[0].Name != "Cold Brew" || drinks[0].MgPer100Ml != 60 || !drinks[0].Custom {
		t.Errorf("drinks = %+v", drinks)
	}

	if err := c.DeleteDrink(ctx, "COLD BREW"); err != nil {
		t.Fatalf("DeleteDrink: %v", err)
	}
	if err := c.DeleteDrink(ctx, "Cold Brew"); !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("second DeleteDrink err = %v, want ErrNotFound", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Client{dialect: dialectPostgres}
	got := pg.rebind("SELECT * FROM t WHERE a = ? AND b < ?")
	if want := "SELECT * FROM t WHERE a = $1 AND b < $2"; got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	lite := &Client{dialect: dialectSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q, want unchanged", got)
	}
}
