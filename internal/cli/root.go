package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cpm-labs/cpm/internal/branding"
	"github.com/cpm-labs/cpm/internal/config"
	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/project"
	"github.com/cpm-labs/cpm/internal/storage"
	"github.com/cpm-labs/cpm/internal/template"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose  bool
	settings config.Settings
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps each project's Claude configuration in a central storage
directory and links it into the work tree through .claude and CLAUDE.md symlinks.
Templates seed new projects, updates merge template upgrades while keeping your
custom CLAUDE.md section, and every update is preceded by a backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		s, err := config.Current()
		if err != nil {
			return err
		}
		level := s.Log.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{Level: level, Format: s.Log.Format}, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		settings, logger = s, l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every filesystem operation")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// Run executes the command tree with args and the given streams. Flags are
// reset first so repeated runs in one process do not leak state.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	defer func() {
		rootCmd.SetIn(os.Stdin)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	if err != nil {
		printError(stderr, err)
	}
	return err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// printError reports err; missing projects and templates read as a
// cancellation rather than a failure.
func printError(w io.Writer, err error) {
	if isNotFound(err) {
		fmt.Fprintf(w, "Cancelled: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrProjectNotFound) ||
		errors.Is(err, template.ErrTemplateNotFound) ||
		errors.Is(err, project.ErrNoRecord)
}

func newManager() *project.Manager {
	return project.New(&afero.OsFs{}, project.Options{
		StorageRoot:   settings.StorageRoot,
		TemplatesRoot: settings.TemplatesRoot,
		Concurrency:   settings.Concurrency,
	}, logger)
}

// projectName returns args[0] when given, otherwise the project linked at
// the current directory.
func projectName(m *project.Manager, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving current directory: %w", err)
	}
	rec, err := m.FindByPath(wd)
	if err != nil {
		return "", err
	}
	return rec.Name, nil
}
