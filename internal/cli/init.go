package cli

import (
	"fmt"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/spf13/cobra"
)

var (
	initName     string
	initTemplate string
)

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Project name (default: derived from the directory name)")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "", "Template to seed storage from (default: adopt the existing .claude)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Put a project under management",
	Long: `Create central storage for a project and link it into the work tree.

Without --template the project's current .claude directory and CLAUDE.md are
adopted as-is (or minimal defaults are written). With --template the named
template seeds the storage instead. Existing .claude and CLAUDE.md entries in
the work tree are renamed to <name>.backup-<millis> before linking.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	name := initName
	if name == "" {
		name = paths.Slugify(filepath.Base(abs))
	}

	m := newManager()
	if initTemplate != "" {
		// Built-ins are never overwritten, so user edits survive.
		if _, err := m.Templates().InstallBuiltins(); err != nil {
			return err
		}
	}

	res, err := m.Setup(name, abs, initTemplate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project %s (%s %s)\n", name, res.Record.ProjectType, res.Record.TemplateVersion)
	line(out, tagOK, "storage %s", m.Repository().Layout().ProjectDir(name))
	for _, p := range res.Sync.MovedAside {
		line(out, tagInfo, "moved existing entry to %s", p)
	}
	for _, p := range res.Sync.Created {
		line(out, tagOK, "linked %s", p)
	}
	return nil
}
