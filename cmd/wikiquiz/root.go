package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wikiquiz/backend/internal/config"
	"github.com/wikiquiz/backend/internal/database"
	"github.com/wikiquiz/backend/internal/history"
	"github.com/wikiquiz/backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "wikiquiz",
	Short:         "Generate and take quizzes about Wikipedia articles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SQLITE_PATH and DB_DRIVER)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(takeCmd)
}

// app is what every subcommand needs: settings, a logger and the store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	store  *history.Store
}

func openApp(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.SQLitePath = p
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db, store: history.NewStore(db)}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
