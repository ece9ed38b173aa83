package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Name            string `json:"name"`
	Path            string `json:"path,omitempty"`
	ProjectType     string `json:"projectType,omitempty"`
	TemplateVersion string `json:"templateVersion,omitempty"`
	Linked          bool   `json:"linked"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := newManager().List()
		if err != nil {
			return err
		}

		entries := make([]listEntry, 0, len(summaries))
		for _, s := range summaries {
			e := listEntry{Name: s.Name, Linked: s.Linked}
			if s.Record != nil {
				e.Path = s.Record.Path
				e.ProjectType = s.Record.ProjectType
				e.TemplateVersion = s.Record.TemplateVersion
			}
			entries = append(entries, e)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling project list: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No managed projects. Run 'cpm init' in a project directory.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTYPE\tVERSION\tLINKED\tPATH")
		for _, e := range entries {
			linked := "no"
			if e.Linked {
				linked = "yes"
			}
			typ, version := e.ProjectType, e.TemplateVersion
			if typ == "" {
				typ, version = "?", "?"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, typ, version, linked, e.Path)
		}
		return tw.Flush()
	},
}
