package commands

import (
	"fmt"
	"log"
	"os"

	"scriptaffiliator/internal/config"
	"scriptaffiliator/pkg/database"
	"scriptaffiliator/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Global flags
	dsn     string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scriptctl",
	Short: "Operator tasks for the ScriptAffiliator backend",
	Long: `scriptctl runs maintenance tasks against the ScriptAffiliator database.

Commands:
  migrate         - Create or update the schema
  seed            - Load categories, prompt templates and hooks from YAML
  reset-password  - Set a new password for a user`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && verbose {
			log.Println("Warning: .env file not found, relying on system env")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "Database DSN (defaults to DATABASE_URL / DB_* env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// connect opens the database using --db or the environment.
func connect() (*gorm.DB, *zap.Logger, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	zlog, err := logger.New(cfg.Env, level)
	if err != nil {
		return nil, nil, nil, err
	}

	target := dsn
	if target == "" {
		target = cfg.Database.DSN()
	}
	db, err := database.Connect(target, zlog)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, zlog, cfg, nil
}
