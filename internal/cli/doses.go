package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/baely/caffeine/internal/caffeine"
	"github.com/baely/caffeine/internal/catalog"
	"github.com/baely/caffeine/internal/tracker/database"
	"github.com/baely/caffeine/internal/tracker/models"
	"github.com/baely/caffeine/internal/tracker/server"
)

// lookback is how far before an instant a dose can still contribute
const lookback = time.Duration(caffeine.Cutoff * float64(time.Hour))

func (a *app) model() caffeine.Model {
	return caffeine.Model{HalfLife: a.cfg.Decay.HalfLifeHours}
}

func loadDoses(ctx context.Context, db database.Store, start, end time.Time) ([]caffeine.DoseEvent, error) {
	events, err := db.GetEvents(ctx, start.Add(-lookback), end.Add(time.Millisecond))
	if err != nil {
		return nil, err
	}
	return models.Doses(events), nil
}

// --- level command ---

func newLevelCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Print the current caffeine level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseAt(at)
			if err != nil {
				return err
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			doses, err := loadDoses(cmd.Context(), db, t, t)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.0f mg at %s\n", a.model().TotalLevel(doses, t), t.Format("Mon 2 Jan 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 time instead of now")
	return cmd
}

// --- chart command ---

const chartWidth = 40

func newChartCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print today's hourly caffeine levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseAt(at)
			if err != nil {
				return err
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			start := caffeine.StartOfDay(t)
			doses, err := loadDoses(cmd.Context(), db, start, start.Add(24*time.Hour))
			if err != nil {
				return err
			}

			writeChart(cmd.OutOrStdout(), a.model().SampleDay(doses, t))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Chart the day of this RFC3339 time instead of today")
	return cmd
}

func writeChart(w io.Writer, chart caffeine.DayChart) {
	peak := 0.0
	for _, s := range chart.Samples {
		if finite(s.Level) {
			peak = math.Max(peak, s.Level)
		}
	}

	nowRow := int(math.Floor(chart.CurrentIndex))
	for i, s := range chart.Samples {
		bar := 0
		if peak > 0 && finite(s.Level) && s.Level > 0 {
			bar = int(math.Round(s.Level / peak * chartWidth))
		}
		marker := ""
		if i == nowRow {
			marker = fmt.Sprintf("  <- now %.0f mg", chart.CurrentLevel)
		}
		fmt.Fprintf(w, "%s %5.0f mg |%s%s\n", s.Label, s.Level, strings.Repeat("#", bar), marker)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// --- add command ---

func newAddCmd(a *app) *cobra.Command {
	var (
		volume float64
		mg     float64
		at     string
		cost   int
	)
	cmd := &cobra.Command{
		Use:   "add <drink>",
		Short: "Record a drink",
		Long:  "Record a drink from the catalog (see `caffeine drinks`), or any name with --mg.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := server.EventRequest{
				VolumeMl: volume,
				Cost:     cost,
			}
			name := strings.Join(args, " ")
			if cmd.Flags().Changed("mg") {
				req.Name = name
				req.AmountMg = &mg
			} else {
				req.Drink = name
			}
			if strings.Contains(at, "T") {
				req.Time = at
			} else {
				req.Clock = at
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			custom, err := db.ListDrinks(cmd.Context())
			if err != nil {
				return err
			}
			event, err := server.ResolveEvent(req, catalog.Merge(custom), a.clock())
			if err != nil {
				return err
			}
			event, err = db.AddEvent(cmd.Context(), event)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %.0f mg at %s (%s)\n",
				event.Description, event.Amount, event.Timestamp.In(a.loc).Format("15:04"), event.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&volume, "volume", 0, "Volume in ml (default 200)")
	cmd.Flags().Float64Var(&mg, "mg", 0, "Caffeine in mg, instead of a catalog drink")
	cmd.Flags().StringVar(&at, "at", "", "Time as HH:MM today or RFC3339 (default now)")
	cmd.Flags().IntVar(&cost, "cost", 0, "Cost in cents")
	return cmd
}

// --- events command ---

func newEventsCmd(a *app) *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded drinks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			now := a.clock()
			start := caffeine.StartOfDay(now)
			if since > 0 {
				start = now.Add(-since)
			}
			events, err := db.GetEvents(cmd.Context(), start, now.AddDate(0, 0, 1))
			if err != nil {
				return err
			}

			writeEvents(cmd.OutOrStdout(), events, now)
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "How far back to list (default since midnight)")
	return cmd
}

func writeEvents(w io.Writer, events []models.CaffeineEvent, now time.Time) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No drinks recorded yet")
		return
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Fprintf(w, "%s  %-28s %5.0f mg  %s  (%s)\n",
			e.Timestamp.In(now.Location()).Format("15:04"),
			e.Description,
			e.Amount,
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			e.ID)
	}
}

// --- rm command ---

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recorded drink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
