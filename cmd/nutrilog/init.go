package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local nutrilog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			version, err := st.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutrilog database at %s (schema version %d)\n", st.Path(), version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
