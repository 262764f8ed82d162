package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fix-format/internal/app"
	"fix-format/internal/hooks"
	"fix-format/internal/output"
	"fix-format/internal/scan"
)

type rootFlags struct {
	Check       bool
	Stdin       bool
	Commit      bool
	GitHooks    bool
	Verbose     bool
	Config      string
	Format      string
	NoColor     bool
	Debug       bool
	ShowVersion bool
}

func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(context.Background()); err != nil {
		var ee *ExitError
		if !errors.As(err, &ee) {
			ee = &ExitError{Code: ExitUsage, Kind: "invalid_arguments", Msg: err.Error()}
		}
		if ee.Msg != "" {
			if format := detectFormatFromArgs(os.Args[1:]); format != output.FormatText && ee.Kind != "" {
				writeCLIError(os.Stdout, format, os.Args[1:], ee)
			} else {
				fmt.Fprintln(os.Stderr, ee.Msg)
			}
		}
		return ee.Code
	}
	return ExitOK
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "fix-format [files or directories...]",
		Short:         "Fixes and checks source formatting: whitespace, imports and external formatters",
		Long:          rootLongHelp(),
		Example:       rootExampleHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ShowVersion {
				printVersion(stdout)
				return nil
			}
			if flags.GitHooks {
				return installHooks(stdout)
			}
			return runFormat(cmd, stdout, stderr, flags, args)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("invalid_arguments", "%v", err)
	})

	f := root.Flags()
	f.BoolVarP(&flags.Check, "check", "k", false, "check if files are correctly formatted, without changing them")
	f.BoolVar(&flags.Stdin, "stdin", false, "read file names from stdin (one per line)")
	f.BoolVarP(&flags.Commit, "commit", "c", false, "use the files changed in git")
	f.BoolVar(&flags.GitHooks, "git-hooks", false, "install the git pre-commit hook in the repository of the current directory")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "also report unchanged and skipped files")
	f.StringVar(&flags.Config, "config", "", "path to a .fix-format.yaml file (default: searched upwards from the inputs)")
	f.StringVar(&flags.Format, "format", output.FormatText, "report format: text, ndjson or json")
	f.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	f.BoolVar(&flags.Debug, "debug", false, "write debug logs to stderr")
	f.BoolVar(&flags.ShowVersion, "version", false, "show version information")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func installHooks(stdout io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: ExitFailure, Kind: "cwd_failed", Msg: "cannot read the current directory"}
	}
	res, err := hooks.InstallPreCommit(cwd)
	if err != nil {
		return &ExitError{Code: ExitFailure, Kind: "hook_install_failed", Msg: err.Error()}
	}
	if res.Skipped {
		fmt.Fprintf(stdout, "Skipping hook installation, %s is a file\n", filepath.Join(res.Root, ".git"))
		return nil
	}
	fmt.Fprintf(stdout, "Pre-commit hook installed: %s\n", res.HookFile)
	return nil
}

func inputMode(flags *rootFlags) scan.Mode {
	switch {
	case flags.Stdin:
		return scan.ModeStdin
	case flags.Commit:
		return scan.ModeCommit
	default:
		return scan.ModePaths
	}
}

func runFormat(cmd *cobra.Command, stdout, stderr io.Writer, flags *rootFlags, args []string) error {
	if err := output.ValidateFormat(flags.Format); err != nil {
		return usageError("invalid_output_format", "%v", err)
	}
	mode := inputMode(flags)
	if mode == scan.ModePaths && len(args) == 0 {
		_ = cmd.Help()
		return usageError("arg_missing_paths", "no files or directories given; pass paths, --stdin or --commit")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: ExitFailure, Kind: "cwd_failed", Msg: "cannot read the current directory"}
	}

	opts := app.Options{
		Check:      flags.Check,
		Verbose:    flags.Verbose,
		Input:      mode,
		Paths:      args,
		Stdin:      cmd.InOrStdin(),
		CWD:        cwd,
		ConfigPath: flags.Config,
		Format:     flags.Format,
		Version:    Version,
		Args:       os.Args[1:],
		ToolOutput: stderr,
		Logger:     app.NewLogger(stderr, flags.Debug),
	}
	var text *app.TextReport
	if flags.Format == output.FormatText {
		text = app.NewTextReport(stdout, flags.Verbose, flags.NoColor)
		text.Base = cwd
		opts.ToolOutput = stdout
		opts.OnBatch = text.Batch
		opts.OnFile = text.File
	}

	rep, err := app.Run(cmd.Context(), opts)
	if err != nil {
		var argErr *app.ArgErr
		var cfgErr *app.ConfigErr
		switch {
		case errors.As(err, &argErr):
			return usageError("invalid_input_paths", "%v", err)
		case errors.As(err, &cfgErr):
			return usageError("config_invalid", "%v", err)
		default:
			return &ExitError{Code: ExitFailure, Kind: "run_failed", Msg: err.Error()}
		}
	}

	if text != nil {
		text.Finish(rep)
	} else if werr := output.Write(stdout, flags.Format, app.Events(opts, rep)); werr != nil {
		return &ExitError{Code: ExitFailure, Kind: "output_write_failed", Msg: fmt.Sprintf("write report: %v", werr)}
	}
	if code := rep.ExitCode(); code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
