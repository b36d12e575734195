package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"igatool/pkg/config"
	"igatool/pkg/logging"

	"github.com/spf13/cobra"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	progress   bool

	cfg       config.Config
	logCloser io.Closer
}

// usageError marks a command line the user needs to correct.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "igatool",
		Short: "Extract and build IGA0 game archives",
		Long: `igatool reads and writes IGA0 archive containers.

Supported operations:
  - Extract every member of an archive into a directory
  - Build an archive from an ordered list of files
  - List the members of an archive`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError{errors.New("missing command")}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stderr)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to configuration file (default $"+config.EnvVar+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log archive layout details")
	pf.BoolVar(&a.progress, "progress", false, "print transfer progress")

	root.AddCommand(newExtractCmd(a), newCompressCmd(a), newListCmd(a))
	return root
}

// setup loads the configuration and starts logging.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.verbose {
		cfg.Logs.Verbose = true
	}
	if a.progress {
		cfg.Progress = true
	}
	closer, err := logging.Setup(a.stderr, logging.Options{
		File:       cfg.Logs.File,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
		Verbose:    cfg.Logs.Verbose,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.cfg = cfg
	a.logCloser = closer
	return nil
}

// Run executes the command line in args and returns the process exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	c, err := root.ExecuteC()
	defer func() {
		logging.SetOutput(os.Stderr)
		if a.logCloser != nil {
			a.logCloser.Close()
		}
	}()
	if err == nil {
		return 0
	}

	logging.Debugf("%s: %v", c.CommandPath(), err)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprint(stderr, c.UsageString())
	}
	return 1
}

// Execute runs the command line of the current process and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
