package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/baely/caffeine/internal/common/logger"
	"github.com/baely/caffeine/internal/config"
	"github.com/baely/caffeine/internal/tracker/database"
)

// app carries what every command needs. now is swapped out in tests.
type app struct {
	configPath string
	now        func() time.Time

	cfg config.Config
	loc *time.Location
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "caffeine",
		Short:         "Track caffeine intake and estimate your current level",
		Long:          "Caffeine records doses and estimates how much is still in your system using a 5 hour half-life that clears after 12 hours.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("CAFFEINE_CONFIG"), "Path to a TOML config file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newLevelCmd(a))
	root.AddCommand(newChartCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newEventsCmd(a))
	root.AddCommand(newRmCmd(a))
	root.AddCommand(newDrinksCmd(a))

	return root
}

// Execute runs the caffeine command line.
func Execute() error {
	err := newRootCmd(&app{now: time.Now}).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// the server logs JSON to stdout; everything else keeps stdout for output
	opts := []logger.Option{logger.WithLevel(level)}
	if cmd.Name() != "serve" {
		opts = append(opts, logger.WithText(), logger.WithOutput(cmd.ErrOrStderr()))
	}
	slog.SetDefault(logger.New(opts...))

	a.cfg = cfg
	a.loc = loc
	return nil
}

func (a *app) clock() time.Time {
	return a.now().In(a.loc)
}

// openStore is a helper that opens the event store for CLI commands.
func (a *app) openStore() (*database.Client, error) {
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// parseAt reads an RFC3339 --at flag, defaulting to now
func (a *app) parseAt(at string) (time.Time, error) {
	if at == "" {
		return a.clock(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339: %w", err)
	}
	return t.In(a.loc), nil
}
