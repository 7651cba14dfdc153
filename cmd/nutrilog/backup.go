package nutrilog

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/store"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage store backups",
}

var (
	backupDir   string
	restoreFile string
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy the store file to a timestamped backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			dir := backupDir
			if dir == "" {
				dir = resolveBackupDir()
			}
			info, err := st.Backup(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			dir := backupDir
			if dir == "" {
				dir = resolveBackupDir()
			}
			items, err := st.ListBackups(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Checksum)
			}
			return nil
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Overwrite the store with a prior backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		return withStore(func(st *store.Store) error {
			if err := st.Restore(restoreFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored store from %s\n", restoreFile)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside the store under backups/)")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db file path")
}
