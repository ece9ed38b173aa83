package cli

import (
	"fmt"

	"github.com/cpm-labs/cpm/internal/storage"
	"github.com/spf13/cobra"
)

var removeYes bool

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Remove without asking for confirmation")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unlink a project and delete its storage and backups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		m := newManager()
		if !m.Repository().ProjectExists(name) {
			return fmt.Errorf("%w: %s", storage.ErrProjectNotFound, name)
		}
		if !removeYes && !confirm(cmd, fmt.Sprintf("Delete storage and all backups of %s?", name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled.")
			return nil
		}
		if err := m.Remove(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
		return nil
	},
}
