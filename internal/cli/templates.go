package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesInstallCmd)
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage project templates",
	Long: `Templates live in templates_root (default ~/.cpm/templates), one directory
per template with a template.yaml (name, version, icon, description) next to
the files copied into storage.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := newManager().Templates()
		list, err := loader.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintf(out, "No templates in %s. Run 'cpm templates install'.\n", loader.Root())
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tDESCRIPTION")
		for _, t := range list {
			name := t.Name
			if t.Meta.Icon != "" {
				name = t.Meta.Icon + " " + name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, t.Version(), t.Meta.Description)
		}
		return tw.Flush()
	},
}

var templatesInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the built-in templates",
	Long:  `Copy the built-in templates into templates_root. Files that already exist are kept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := newManager().Templates()
		n, err := loader.InstallBuiltins()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %d file(s) into %s\n", n, loader.Root())
		return nil
	},
}
