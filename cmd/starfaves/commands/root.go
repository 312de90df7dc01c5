package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/config"
	"github.com/marshallshelly/starfaves/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL         string
	migrationsDir string
	logLevel      string
	logFormat     string
	jsonOutput    bool

	// Set by loadConfig before any command runs.
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "starfaves",
	Short: "Star Wars favorites - users, characters, planets, vehicles",
	Long: `starfaves manages a PostgreSQL database of users and the Star Wars
characters, planets and vehicles they favorite.

Settings come from the environment (DATABASE_URL, MIGRATIONS_DIR, LOG_LEVEL,
LOG_FORMAT, DB_MAX_CONNS), optionally loaded from a .env file. Flags override
the environment.`,
	Version:           "0.4.0",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", config.DefaultMigrationsDir, "Directory for migration files (overrides MIGRATIONS_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json (overrides LOG_FORMAT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.DatabaseURL = dbURL
	}
	if flags.Changed("migrations-dir") {
		loaded.MigrationsDir = migrationsDir
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormat
	}

	cfg = loaded
	logger = logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}
