package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/store"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check store integrity and cache consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			ok, err := st.IntegrityCheck()
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Integrity check: ok")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Integrity check: FAILED (store file is corrupt, restore from backup)")
			}

			report, err := st.Doctor(doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache rows checked: %d\n", report.CheckedCacheRows)
			fmt.Fprintf(cmd.OutOrStdout(), "Stale cache rows: %d\n", report.StaleCacheRows)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed cache rows: %d\n", report.FixedCacheRows)
			} else if report.StaleCacheRows > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --fix to rebuild stale rows")
			}
			return nil
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Reclaim free space and refresh planner statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			if err := st.Optimize(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Optimized store")
			return nil
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the derived per-day cache",
}

var cleanupDays int

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge cache rows outside the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			deleted, err := st.CleanupCache(cleanupDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache rows (summaries rebuild on demand)\n", deleted)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd, optimizeCmd, cacheCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)

	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rebuild stale cache rows")
	cacheCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Days of cache to keep")
}
