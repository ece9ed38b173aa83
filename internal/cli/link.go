package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link [path]",
	Short: "Recreate the .claude and CLAUDE.md symlinks of a project",
	Long: `Recreate the symlinks of the project whose recorded work tree is path
(default: the current directory). Correct links are left alone, stale ones are
replaced and real files in the way are moved aside.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := pathArg(args)
		if err != nil {
			return err
		}
		m := newManager()
		rec, err := m.FindByPath(path)
		if err != nil {
			return err
		}
		res, err := m.Link(rec.Name)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range res.MovedAside {
			line(out, tagInfo, "moved existing entry to %s", p)
		}
		for _, p := range res.Created {
			line(out, tagFix, "linked %s", p)
		}
		for _, p := range res.Replaced {
			line(out, tagFix, "relinked %s", p)
		}
		for _, p := range res.Kept {
			line(out, tagOK, "%s", p)
		}
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink [path]",
	Short: "Remove the project symlinks, keeping storage",
	Long: `Remove .claude and CLAUDE.md from path (default: the current directory) if
they are symlinks. Real files and directories are never removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := pathArg(args)
		if err != nil {
			return err
		}
		removed, err := newManager().Unlink(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(removed) == 0 {
			fmt.Fprintln(out, "No symlinks to remove.")
			return nil
		}
		for _, p := range removed {
			line(out, tagOK, "removed %s", p)
		}
		return nil
	},
}

func pathArg(args []string) (string, error) {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
