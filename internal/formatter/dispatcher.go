package formatter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fix-format/internal/classify"
	"fix-format/internal/textutil"
)

const (
	// MinLineLength is the smallest reflow line length accepted without an
	// advisory.
	MinLineLength = 80

	LegacyFormatter = "legacy formatter"
)

// Variant is the processing path a task takes.
type Variant int

const (
	Skip Variant = iota
	PlainWhitespace
	Reflow
	LegacyBinaryAware
	ExternalBinaryAware
	FullReformatBatch
)

func (v Variant) String() string {
	switch v {
	case PlainWhitespace:
		return "plain"
	case Reflow:
		return "reflow"
	case LegacyBinaryAware:
		return "legacy-binary-aware"
	case ExternalBinaryAware:
		return "binary-aware"
	case FullReformatBatch:
		return "full-reformat"
	default:
		return "skip"
	}
}

type Options struct {
	Check   bool
	Verbose bool
	// LineLength, when positive, is forced on the reflow engine. Otherwise
	// the engine's own configuration applies, as found by ReflowSettings.
	LineLength     int
	ReflowSettings *ReflowSettings

	// Binary handles the binary-aware family when a marker is found; nil
	// always takes the legacy path.
	Binary   BinaryAware
	Markers  *MarkerCache
	Reflower Reflower
	// Code is the optional secondary formatter for the reflow family.
	Code  CodeFormatter
	Batch *Batch

	Logger *slog.Logger
}

type Dispatcher struct {
	opts   Options
	logger *slog.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Markers == nil {
		opts.Markers = NewMarkerCache(ClangFormatMarker)
	}
	if opts.ReflowSettings == nil {
		opts.ReflowSettings = NewReflowSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{opts: opts, logger: logger.With(slog.String("component", "formatter"))}
}

// VariantOf resolves the path for task. Marker discovery happens here, so
// the result is stable for the rest of the run.
func (d *Dispatcher) VariantOf(task classify.FileTask) Variant {
	switch task.Class {
	case classify.PlainFormat:
		return PlainWhitespace
	case classify.ExternalReflow:
		return Reflow
	case classify.ExternalFullReformat:
		return FullReformatBatch
	case classify.ExternalBinaryAware:
		if d.opts.Binary != nil && d.opts.Markers.Has(task.Path) {
			return ExternalBinaryAware
		}
		return LegacyBinaryAware
	default:
		return Skip
	}
}

// Process runs one file through its variant. Errors are recorded in the
// outcome; nothing here aborts the run.
func (d *Dispatcher) Process(ctx context.Context, task classify.FileTask) ProcessOutcome {
	var out ProcessOutcome
	v := d.VariantOf(task)
	if v == Skip {
		return out
	}
	d.logger.Debug("process file", slog.String("path", task.Path), slog.String("variant", v.String()))

	data, err := os.ReadFile(task.Path)
	if err != nil {
		out.fail(task.Path, IOError, err, "%v", err)
		return out
	}
	text, err := textutil.DecodeUTF8(data)
	if err != nil {
		out.fail(task.Path, DecodeError, err, "%s", capitalize(err.Error()))
		return out
	}

	switch v {
	case ExternalBinaryAware, LegacyBinaryAware:
		if err := textutil.CheckBOMPolicy(data, text); err != nil {
			out.fail(task.Path, EncodingPolicyError, err, "%s", capitalize(err.Error()))
			return out
		}
		if v == ExternalBinaryAware {
			d.binaryAware(ctx, task.Path, &out)
			return out
		}
		out.Formatter = LegacyFormatter
	}
	d.textPipeline(ctx, task.Path, text, v, &out)
	return out
}

func (d *Dispatcher) binaryAware(ctx context.Context, path string, out *ProcessOutcome) {
	tool := d.opts.Binary
	out.Formatter = tool.Name()
	if d.opts.Check {
		changed, err := tool.WouldChange(ctx, path)
		if err != nil {
			out.fail(path, ToolInvocationError, err, "(%v): please check if %q is installed and accessible", err, tool.Name())
			return
		}
		out.Changed = changed
		return
	}
	before, err := os.Stat(path)
	if err != nil {
		out.fail(path, IOError, err, "%v", err)
		return
	}
	if err := tool.Apply(ctx, path); err != nil {
		out.fail(path, ToolInvocationError, err, "(%v): please check if %q is installed and accessible", err, tool.Name())
		return
	}
	after, err := os.Stat(path)
	if err != nil {
		out.fail(path, IOError, err, "%v", err)
		return
	}
	out.Changed = !after.ModTime().Equal(before.ModTime())
}

func (d *Dispatcher) textPipeline(ctx context.Context, path, original string, v Variant, out *ProcessOutcome) {
	// the EOL comes from the text as read, before any tool had a chance to
	// rewrite line endings
	eol := textutil.DetectEOL(textutil.FirstLine(original))
	endsWithEOL := strings.HasSuffix(original, eol)
	text := original

	if v == Reflow || v == FullReformatBatch {
		if v == Reflow {
			var ok bool
			if text, ok = d.reflow(ctx, path, text, out); !ok {
				return
			}
		}
		if stripped, had := textutil.StripBOM(text); had {
			out.fail(path, BOMStripped, nil, "python file should not have a BOM.")
			text = stripped
		}
	}

	text = textutil.NormalizeText(text, eol, endsWithEOL)
	out.Changed = text != original
	if d.opts.Check || !out.Changed {
		return
	}
	if err := writeKeepingMode(path, text); err != nil {
		out.fail(path, IOError, err, "%v", err)
		out.Changed = false
	}
}

// reflow runs the import reflow and the optional code server. It returns
// false when the file must be abandoned.
func (d *Dispatcher) reflow(ctx context.Context, path, text string, out *ProcessOutcome) (string, bool) {
	if n, source := d.lineLength(path); n < MinLineLength {
		if source == "" {
			source = ".isort.cfg"
		}
		out.fail(path, ConfigAdvisory, nil,
			"reflow line_length is %d, it should be at least %d (configure line_length in %s).",
			n, MinLineLength, source)
	}
	if d.opts.Reflower != nil {
		reflowed, err := d.opts.Reflower.Reflow(ctx, text, ReflowOptions{
			Path:        path,
			SettingsDir: filepath.Dir(path),
			LineLength:  d.opts.LineLength,
		})
		switch {
		case errors.Is(err, ErrFileSkipped):
			d.logger.Debug("reflow skipped by directive", slog.String("path", path))
		case err != nil:
			out.fail(path, ToolInvocationError, err, "(%v)", err)
			return text, false
		default:
			text = reflowed
		}
	}
	if d.opts.Code != nil {
		formatted, err := d.opts.Code.Format(ctx, text)
		switch {
		case errors.Is(err, ErrStaleServer):
			out.fail(path, ToolInvocationError, err, "Error formatting code: %v", err)
			return text, false
		case err != nil:
			out.fail(path, ToolRuntimeError, err, "Error formatting code: %v", err)
		default:
			text = formatted
		}
	}
	return text, true
}

// lineLength is the line length the reflow engine will use for path and
// where it was configured.
func (d *Dispatcher) lineLength(path string) (int, string) {
	if d.opts.LineLength > 0 {
		return d.opts.LineLength, "the fix-format configuration"
	}
	return d.opts.ReflowSettings.LineLength(path)
}

// RunBatch hands every full-reformat task to the batch formatter at once.
func (d *Dispatcher) RunBatch(ctx context.Context, tasks []classify.FileTask) (BatchResult, []*FileError) {
	if d.opts.Batch == nil {
		return BatchResult{}, nil
	}
	var files []string
	for _, t := range tasks {
		if t.Class == classify.ExternalFullReformat {
			files = append(files, t.Path)
		}
	}
	if len(files) == 0 {
		return BatchResult{}, nil
	}
	d.logger.Debug("batch formatter", slog.Int("files", len(files)), slog.Bool("check", d.opts.Check))
	res := d.opts.Batch.Run(ctx, files, d.opts.Check, d.opts.Verbose)
	var errs []*FileError
	for _, msg := range res.Errors {
		d.logger.Warn("batch formatter failed", slog.String("detail", msg))
	}
	if res.Failed {
		errs = append(errs, &FileError{Kind: BatchError, Msg: fmt.Sprintf("Error formatting %s (see console)", d.opts.Batch.name())})
	}
	return res, errs
}

func writeKeepingMode(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(text), mode)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
