package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fix-format/internal/classify"
	"fix-format/internal/config"
	"fix-format/internal/formatter"
	"fix-format/internal/scan"
	"fix-format/internal/vcs"
)

// Run formats or checks every collected file in order. Per-file problems
// end up in the report; the error is reserved for runs that could not
// start.
func Run(ctx context.Context, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := Report{Check: opts.Check, Verbose: opts.Verbose}

	// stdin and commit inputs are only known after collection; until then
	// the configuration is looked up from the working directory
	inputs := opts.Paths
	if opts.Input != scan.ModePaths {
		inputs = nil
	}
	project, err := resolveProject(opts, inputs, logger)
	if err != nil {
		return report, err
	}
	fullReformat := project.Batch && len(project.BatchCommand) > 0
	classifier := classify.New(project.Include, project.Exclude, fullReformat)
	client := vcs.New(project.GitBackend, logger)

	scanRes, err := scan.Collect(ctx, scan.Options{
		Mode:       opts.Input,
		Paths:      opts.Paths,
		Stdin:      opts.Stdin,
		CWD:        opts.CWD,
		Classifier: classifier,
		VCS:        client,
		Logger:     logger,
	})
	if err != nil {
		return report, err
	}
	if missing := scanRes.MissingInputs(); len(missing) > 0 {
		return report, &ArgErr{Msg: fmt.Sprintf("path does not exist: %s", strings.Join(missing, ", "))}
	}
	for _, se := range scanRes.Errors {
		logger.Warn("skipped while collecting files", slog.String("code", se.Code), slog.String("path", se.Path), slog.String("detail", se.Detail))
	}
	if opts.Input != scan.ModePaths && len(scanRes.Files) > 0 {
		if project, err = resolveProject(opts, scanRes.Files, logger); err != nil {
			return report, err
		}
		fullReformat = project.Batch && len(project.BatchCommand) > 0
		classifier = classify.New(project.Include, project.Exclude, fullReformat)
	}
	report.Project = project

	tasks := make([]classify.FileTask, 0, len(scanRes.Files))
	for _, f := range scanRes.Files {
		tasks = append(tasks, classifier.Classify(f))
	}

	dopts := formatter.Options{
		Check:      opts.Check,
		Verbose:    opts.Verbose,
		LineLength: project.LineLength,
		Markers:    formatter.NewMarkerCache(formatter.ClangFormatMarker),
		Reflower:   formatter.ExecReflower{Command: project.ReflowCommand},
		Logger:     logger,
	}
	if project.ClangFormat != "" {
		dopts.Binary = formatter.ClangFormat{Binary: project.ClangFormat}
	}
	if fullReformat {
		out := opts.ToolOutput
		if out == nil {
			out = os.Stdout
		}
		dopts.Batch = formatter.NewBatch(project.BatchCommand, out, os.Stderr)
	} else if len(project.CodeServer) > 0 {
		server := formatter.NewServerFormatter(project.CodeServer, opts.Launcher, logger)
		defer func() {
			if err := server.Close(); err != nil {
				logger.Warn("code server did not stop cleanly", slog.Any("error", err))
			}
		}()
		dopts.Code = server
	}
	d := formatter.NewDispatcher(dopts)

	if fullReformat {
		n := 0
		for _, t := range tasks {
			if t.Class == classify.ExternalFullReformat {
				n++
			}
		}
		if n > 0 && opts.OnBatch != nil {
			opts.OnBatch(n, opts.Check)
		}
		res, errs := d.RunBatch(ctx, tasks)
		report.BatchFiles = res.Files
		report.WouldBeFormatted = res.WouldChange
		report.Errors = append(report.Errors, errs...)
	}

	for _, t := range tasks {
		if !t.Class.Eligible() {
			report.Skipped = append(report.Skipped, t)
			fr := FileResult{Path: t.Path, Reason: t.Reason}
			report.Files = append(report.Files, fr)
			if opts.OnFile != nil {
				opts.OnFile(fr)
			}
			continue
		}
		report.Analysed = append(report.Analysed, t.Path)
		out := d.Process(ctx, t)
		report.Errors = append(report.Errors, out.Errors...)
		if out.Changed {
			report.Changed = append(report.Changed, t.Path)
		}
		fr := FileResult{Path: t.Path, Status: Status(opts.Check, out.Changed), Changed: out.Changed, Formatter: out.Formatter}
		report.Files = append(report.Files, fr)
		if opts.OnFile != nil {
			opts.OnFile(fr)
		}
	}
	logger.Debug("run finished",
		slog.Int("analysed", len(report.Analysed)),
		slog.Int("changed", len(report.Changed)),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

func resolveProject(opts Options, inputs []string, logger *slog.Logger) (config.Project, error) {
	project, err := config.Resolve(config.ResolveOptions{Inputs: inputs, ConfigPath: opts.ConfigPath, CWD: opts.CWD})
	if err != nil {
		return project, &ConfigErr{Msg: err.Error()}
	}
	logger.Debug("configuration resolved",
		slog.String("config", project.ConfigPath),
		slog.String("pyproject", project.PyprojectPath),
		slog.Int("line_length", project.LineLength),
		slog.Bool("batch", project.Batch))
	return project, nil
}

type ConfigErr struct{ Msg string }

func (e *ConfigErr) Error() string { return e.Msg }

type ArgErr struct{ Msg string }

func (e *ArgErr) Error() string { return e.Msg }
