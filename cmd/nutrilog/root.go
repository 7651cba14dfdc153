package nutrilog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/logger"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nutrilog",
	Short: "nutrilog keeps a local log of meals, macros and goals",
	Long:  "nutrilog is a local-first nutrition store: logged foods, a user profile, health goals, reusable food templates and per-day summaries, all in one SQLite file.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(verbose)
	},
}

func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
}
