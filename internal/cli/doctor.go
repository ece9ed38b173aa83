package cli

import (
	"fmt"
	"io"

	"github.com/cpm-labs/cpm/internal/doctor"
	"github.com/spf13/cobra"
)

var (
	doctorAll bool
	doctorFix bool
	doctorYes bool
)

func init() {
	doctorCmd.Flags().BoolVarP(&doctorAll, "all", "a", false, "Check every managed project")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair fixable issues")
	doctorCmd.Flags().BoolVarP(&doctorYes, "yes", "y", false, "Repair without asking for confirmation")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [name]",
	Short: "Check project links and storage",
	Long: `Run health checks on a managed project (default: the one linked at the
current directory): work tree present, storage present, .claude and CLAUDE.md
links valid, essential files present, storage readable and writable.

With --fix, fixable issues are repaired after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		out := cmd.OutOrStdout()

		var reports []*doctor.Report
		if doctorAll {
			res, err := m.ValidateAll()
			if err != nil {
				return err
			}
			for _, it := range res.Items {
				if it.Err != nil {
					fmt.Fprintf(out, "%s:\n", it.Name)
					line(out, tagFail, "%v", it.Err)
					continue
				}
				reports = append(reports, it.Value)
			}
		} else {
			name, err := projectName(m, args)
			if err != nil {
				return err
			}
			r, err := m.Validate(name)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}

		var fixable int
		for _, r := range reports {
			printReport(out, r)
			fixable += len(r.Fixable())
		}
		if !doctorFix || fixable == 0 {
			if fixable > 0 {
				fmt.Fprintf(out, "\n%d issue(s) can be repaired with --fix\n", fixable)
			}
			return nil
		}

		if !doctorYes && !confirm(cmd, fmt.Sprintf("Repair %d issue(s)?", fixable)) {
			fmt.Fprintln(out, "Repair cancelled.")
			return nil
		}

		var total doctor.RepairResult
		for _, r := range reports {
			res := m.Validator().Repair(r)
			total.Attempted += res.Attempted
			total.Fixed += res.Fixed
			total.Failed += res.Failed
		}
		line(out, tagFix, "repaired %d of %d issue(s)", total.Fixed, total.Attempted)
		if total.Failed > 0 {
			return fmt.Errorf("%d repair(s) failed", total.Failed)
		}
		return nil
	},
}

func printReport(w io.Writer, r *doctor.Report) {
	where := r.ProjectPath
	if where == "" {
		where = "work tree unknown"
	}
	fmt.Fprintf(w, "%s (%s):\n", r.Project, where)
	if len(r.Issues) == 0 {
		line(w, tagOK, "healthy")
		return
	}
	for _, i := range r.Issues {
		tag := tagInfo
		switch i.Severity {
		case doctor.SeverityError:
			tag = tagFail
		case doctor.SeverityWarning:
			tag = tagWarn
		}
		msg := fmt.Sprintf("[%s] %s", i.Category, i.Message)
		if i.Path != "" {
			msg += " " + dimStyle.Render(i.Path)
		}
		line(w, tag, "%s", msg)
	}
}
