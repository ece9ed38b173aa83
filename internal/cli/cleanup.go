package cli

import (
	"fmt"
	"io"

	"github.com/cpm-labs/cpm/internal/retention"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cleanupAll    bool
	cleanupDays   int
	cleanupKeep   int
	cleanupDryRun bool
)

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupAll, "all", "a", false, "Clean up every managed project")
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", -1, "Delete backups older than this many days (default: retention.days)")
	cleanupCmd.Flags().IntVar(&cleanupKeep, "keep", -1, "Always keep this many most recent backups (default: retention.keep)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [name]",
	Short: "Delete old backups",
	Long: `Delete backups older than --days, except the --keep most recent ones.
Deletion continues past individual failures; the summary reports what was
actually removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := retention.Policy{Days: settings.Retention.Days, Keep: settings.Retention.Keep}
		if cmd.Flags().Changed("days") {
			policy.Days = cleanupDays
		}
		if cmd.Flags().Changed("keep") {
			policy.Keep = cleanupKeep
		}

		m := newManager()
		out := cmd.OutOrStdout()

		if cleanupAll {
			res, err := m.CleanupAll(policy, cleanupDryRun)
			if err != nil {
				return err
			}
			var freed int64
			for _, it := range res.Items {
				if it.Err != nil {
					line(out, tagFail, "%s: %v", it.Name, it.Err)
					continue
				}
				printCleanup(out, it.Value)
				freed += it.Value.BytesFreed
			}
			if !cleanupDryRun {
				fmt.Fprintf(out, "\nTotal freed: %s\n", humanize.Bytes(uint64(freed)))
			}
			return nil
		}

		name, err := projectName(m, args)
		if err != nil {
			return err
		}
		report, err := m.Cleanup(name, policy, cleanupDryRun)
		if err != nil {
			return err
		}
		printCleanup(out, report)
		return nil
	},
}

func printCleanup(w io.Writer, r *retention.Report) {
	tag := tagOK
	if r.Failed > 0 {
		tag = tagWarn
	}
	line(w, tag, "%s", r)
	if r.DryRun {
		for _, b := range r.Candidates {
			fmt.Fprintf(w, "         %s  %d days  %s\n", b.Name, b.Age, humanize.Bytes(uint64(b.Size)))
		}
	}
}
