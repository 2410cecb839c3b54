package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/config"
	"github.com/blackwell-systems/champrules/internal/logging"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	logJSON    bool

	// cfg is loaded before every command runs.
	cfg *config.Config

	// RootCmd is the root command for champrules
	RootCmd = &cobra.Command{
		Use:   "champrules",
		Short: "Association rules for champion team compositions",
		Long: `champrules mines association rules over League of Legends team compositions.

Every team in a match is a transaction of five champions. For each pair of
champions champrules reports how often they are picked together (support),
how often picking one means picking the other (confidence), whether they
appear together more than chance predicts (lift), and how often teams with
both champions won.

Quick Start:
  1. champrules import matches/kr.csv --region kr
  2. champrules mine --support 1 --confidence 50
  3. champrules partners Thresh

Match files have one row per match and no header:
  idx, matchId, gameCreation, gameMode, gameType, gameVersion, mapId, queueId,
  then 10 participants of (puuid, championName, win)

Examples:
  # Import a directory of match files, one region per file
  champrules import matches/

  # Strongest rules by lift, seen in at least 20 games
  champrules mine --sort lift --min-games 20

  # Break down a single pair
  champrules explain Lucian Nami

  # Re-mine whenever the extractor updates its file
  champrules watch matches/kr.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "champrules: association rules for champion team compositions")
			fmt.Fprintln(out)
			path, _ := getDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "Run 'champrules import <matches.csv>' to get started.")
			} else {
				fmt.Fprintln(out, "Tip: Run 'champrules status' to see what is imported.")
				fmt.Fprintln(out, "     Run 'champrules mine' to list rules.")
			}
			fmt.Fprintln(out, "Run 'champrules --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.champrules/champrules.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/champrules/config.toml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	RootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(mineCmd)
	RootCmd.AddCommand(explainCmd)
	RootCmd.AddCommand(partnersCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(importsCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// setup loads the config file and installs the logger.
func setup(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if _, err := logging.Setup(cmd.ErrOrStderr(), level, logJSON); err != nil {
		return err
	}
	return nil
}

// currentConfig returns the loaded config, or the defaults when a command
// runs without the root pre-run (e.g. in tests).
func currentConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Create .champrules directory if it doesn't exist
	dataDir := filepath.Join(home, ".champrules")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create champrules directory: %w", err)
	}

	return filepath.Join(dataDir, "champrules.db"), nil
}
