package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/jobmon/internal/config"
	"github.com/Tiliavir/jobmon/internal/logging"
	"github.com/Tiliavir/jobmon/internal/logparse"
	"github.com/Tiliavir/jobmon/internal/monitor"
	"github.com/Tiliavir/jobmon/internal/output"
)

// Exit codes.
const (
	exitOK         = 0
	exitValidation = 1
	exitIO         = 2
)

// exitError carries the exit code and stderr prefix for a failed run, so
// deferred cleanup runs before the process exits.
type exitError struct {
	code   int
	prefix string
	err    error
}

func (e *exitError) Error() string { return e.prefix + e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

type options struct {
	configPath string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "jobmon <input-file> [output-file]",
		Short: "Report process durations from a START/END lifecycle log",
		Long: `jobmon reads a CSV log of process lifecycle events
(timestamp,description,START|END,pid), pairs each END with the open START
of the same pid and reports how long every completed process took.

Processes running longer than 5 minutes are reported as WARNING, longer
than 10 minutes as ERROR. The report goes to standard output unless an
output file is given.`,
		Example: `  jobmon logs.csv
  jobmon logs.csv report.txt`,
		Args:          checkArgs,
		RunE:          o.runAnalyze,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&o.configPath, "config", "", "Config file (default ~/.jobmon/config.json)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	return cmd
}

// checkArgs accepts one or two positional arguments and attaches the usage
// text to the error otherwise.
func checkArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return &exitError{
			code:   exitValidation,
			prefix: "Error: ",
			err:    fmt.Errorf("%w\n\n%s", err, strings.TrimRight(cmd.UsageString(), "\n")),
		}
	}
	return nil
}

// Execute is the entry point called from main.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(stderr, ee.Error())
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitValidation
}

func (o *options) runAnalyze(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	}

	cfg := o.loadConfig()
	logger, closeLog, err := logging.New(cfg.Log, o.stderr, o.verbose)
	if err != nil {
		return &exitError{code: exitIO, prefix: "Error opening log: ", err: err}
	}
	defer closeLog.Close()

	in, err := os.Open(inputPath)
	if err != nil {
		return &exitError{code: exitIO, prefix: "Error reading file: ", err: err}
	}
	defer in.Close()

	sink, err := output.Open(outputPath, o.stdout)
	if err != nil {
		return &exitError{code: exitIO, prefix: "Error writing file: ", err: err}
	}
	defer sink.Discard()

	res, err := monitor.Analyze(in, sink, monitor.Options{
		Logger:        logger,
		WarnUnmatched: cfg.Diagnostics.WarnUnmatched,
	})
	if err != nil {
		var verr *logparse.ValidationError
		if errors.As(err, &verr) {
			return &exitError{code: exitValidation, prefix: "CSV format error: ", err: err}
		}
		return &exitError{code: exitIO, prefix: "Error reading file: ", err: err}
	}

	if err := sink.Commit(); err != nil {
		return &exitError{code: exitIO, prefix: "Error writing file: ", err: err}
	}

	dest := outputPath
	if dest == "" {
		dest = "stdout"
	}
	logger.Info("report written",
		"input", inputPath,
		"output", dest,
		"jobs", res.Summary.Total,
		"warnings", res.Summary.Warnings,
		"errors", res.Summary.Errors)
	return nil
}

// loadConfig never fails: problems are printed as warnings and defaults used.
func (o *options) loadConfig() config.Config {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintf(o.stderr, "Warning: %v\n", err)
			return config.Default()
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(o.stderr, "Warning: %v\n", err)
	}
	return cfg
}
