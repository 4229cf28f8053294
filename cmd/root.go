package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nba-points/internal/config"
	"github.com/pable/nba-points/internal/stats"
	"github.com/pable/nba-points/internal/storage"
)

var dbPath string

// Set by the root command before any subcommand runs.
var (
	cfg *config.Config
	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "nbapts",
	Short: "NBA player points predictor",
	Long: `Harvest NBA game logs, build leakage-free rolling feature tables,
train a points model and predict a player's points for an upcoming matchup.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if log, err = cfg.NewLogger(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".nbapts", "nbapts.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// openDB creates the database directory if needed and opens the store.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// newStatsClient builds the provider client from the loaded configuration.
func newStatsClient() *stats.Client {
	return stats.NewClient(stats.Options{
		BaseURL:   cfg.StatsURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.RateBurst,
	})
}
