package app

// Events renders a report as the machine-readable event stream.
func Events(opts Options, r Report) []map[string]any {
	mode := "apply"
	if r.Check {
		mode = "check"
	}
	events := []map[string]any{{
		"type":             "meta",
		"tool":             "fix-format",
		"version":          opts.Version,
		"mode":             mode,
		"input":            opts.Input.String(),
		"cwd":              opts.CWD,
		"args":             opts.Args,
		"config_path":      r.Project.ConfigPath,
		"pyproject_path":   r.Project.PyprojectPath,
		"output_format":    opts.Format,
		"exit_code_policy": map[string]int{"ok": 0, "failure": 1, "usage_error": 2},
	}}
	if r.BatchFiles > 0 {
		events = append(events, map[string]any{
			"type":         "batch",
			"files":        r.BatchFiles,
			"would_change": r.WouldBeFormatted,
		})
	}
	for _, f := range r.Files {
		if !f.Analysed() {
			events = append(events, map[string]any{
				"type":   "skipped",
				"path":   f.Path,
				"reason": f.Reason,
			})
			continue
		}
		ev := map[string]any{
			"type":    "file",
			"path":    f.Path,
			"status":  f.Status,
			"changed": f.Changed,
		}
		if f.Formatter != "" {
			ev["formatter"] = f.Formatter
		}
		events = append(events, ev)
	}
	for _, e := range r.Errors {
		events = append(events, buildErrorEvent(e))
	}
	events = append(events, map[string]any{
		"type":               "summary",
		"mode":               mode,
		"analysed_files":     len(r.Analysed),
		"changed_files":      len(r.Changed),
		"unchanged_files":    r.Unchanged(),
		"skipped_files":      len(r.Skipped),
		"error_count":        len(r.Errors),
		"would_be_formatted": r.WouldBeFormatted,
		"exit_code":          r.ExitCode(),
	})
	return events
}
