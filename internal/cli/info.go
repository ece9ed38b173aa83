package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cpm-labs/cpm/internal/linker"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoJSON bool

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print metadata as JSON with camel-cased keys")
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a project's metadata, links and backups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newManager().Describe(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if infoJSON {
			fields := map[string]string{}
			if info.Record != nil {
				fields = info.Record.CamelFields()
			}
			data, err := json.MarshalIndent(fields, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling project info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s\n", info.Name)
		fmt.Fprintf(out, "  storage:  %s\n", info.StorageDir)
		if info.Record == nil {
			line(out, tagWarn, "metadata missing")
		} else {
			r := info.Record
			fmt.Fprintf(out, "  path:     %s\n", r.Path)
			fmt.Fprintf(out, "  template: %s %s\n", r.ProjectType, r.TemplateVersion)
			fmt.Fprintf(out, "  setup:    %s (%s)\n", r.SetupDate.Local().Format(time.DateTime), humanize.Time(r.SetupDate))
			fmt.Fprintf(out, "  updated:  %s (%s)\n", r.LastUpdate.Local().Format(time.DateTime), humanize.Time(r.LastUpdate))
		}
		if info.Links != nil {
			for _, l := range info.Links.Links() {
				tag := tagOK
				if l.State != linker.StateValid {
					tag = tagMiss
				}
				line(out, tag, "%s (%s)", l.Path, l.State)
			}
		}

		var total int64
		for _, b := range info.Backups {
			total += b.Size
		}
		fmt.Fprintf(out, "  backups:  %d (%s)\n", len(info.Backups), humanize.Bytes(uint64(total)))
		return nil
	},
}
