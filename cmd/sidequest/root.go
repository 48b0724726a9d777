package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oscillatelabsllc/sidequest/internal/config"
	"github.com/oscillatelabsllc/sidequest/internal/db"
	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	backendFlag string
	dataFlag    string
	logLevel    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sidequest",
	Short: "Sidequest - social adventure tracker",
	Long: `Sidequest records which friends shared which adventures on which day,
reports top buddies, per-category trends and badges, and recommends
activities for a group based on what has been logged before.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: $CONFIG_PATH or ./sidequest.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Ledger backend: file, duckdb or badger")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "Ledger location (JSON file, DuckDB file or badger directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

// loadConfig resolves configuration; flags win over file and environment
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if backendFlag != "" {
		cfg.Storage.Backend = backendFlag
	}
	if dataFlag != "" {
		cfg.Storage.Path = dataFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	return nil
}

// openTracker opens the configured store and wires the recommender. The
// returned func closes the store.
func openTracker(ctx context.Context, opts ...recommend.Option) (*tracker.Tracker, func(), error) {
	store, err := db.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close ledger")
		}
	}

	rec := recommend.New(cfg.Recommend.ModelPath, store, opts...)
	t := tracker.New(store, rec,
		tracker.WithTopN(cfg.Recommend.TopN),
		tracker.WithInvalidateOnWrite(cfg.Recommend.InvalidateOnWrite),
	)
	return t, closeFn, nil
}

// spinnerOption shows the training spinner on stderr
func spinnerOption() recommend.Option {
	return recommend.WithIndicator(recommend.NewSpinner(os.Stderr, cfg.Recommend.SpinnerInterval))
}
