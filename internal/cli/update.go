package cli

import (
	"fmt"
	"io"

	"github.com/cpm-labs/cpm/internal/project"
	"github.com/spf13/cobra"
)

var (
	updateAll   bool
	updateForce bool
)

func init() {
	updateCmd.Flags().BoolVarP(&updateAll, "all", "a", false, "Update every managed project")
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Re-apply the template even if the version is unchanged")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Apply the latest template version to a project",
	Long: `Update a project's storage from its template. A backup is always taken
first. Template files overwrite their stored copies, except CLAUDE.md, whose
"## Project-Specific", "# Custom" or "## Custom Configuration" section is
carried over below the new template body.

Projects adopted from existing configuration have no template and are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		out := cmd.OutOrStdout()

		if updateAll {
			res, err := m.UpdateAll(updateForce)
			if err != nil {
				return err
			}
			for _, it := range res.Items {
				printUpdate(out, it.Name, it.Value, it.Err)
			}
			fmt.Fprintf(out, "\n%d updated or current, %d failed\n", res.Succeeded(), res.Failed())
			if res.Failed() > 0 {
				return fmt.Errorf("%d project(s) failed to update", res.Failed())
			}
			return nil
		}

		name, err := projectName(m, args)
		if err != nil {
			return err
		}
		outcome, err := m.Update(name, updateForce)
		if err != nil {
			return err
		}
		printUpdate(out, name, outcome, nil)
		return nil
	},
}

func printUpdate(w io.Writer, name string, o *project.UpdateOutcome, err error) {
	switch {
	case err != nil:
		line(w, tagFail, "%s: %v", name, err)
	case o.Skipped:
		line(w, tagOK, "%s: %s", name, o.Reason)
	default:
		line(w, tagFix, "%s: %s %s -> %s (backup %s)", name, o.Template, o.From, o.To, o.Backup)
	}
}
