package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	FormatText   = "text"
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

func ValidateFormat(v string) error {
	switch v {
	case FormatText, FormatNDJSON, FormatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (expected text, ndjson or json)", v)
}

// Write encodes events as ndjson or json. The text format is rendered
// elsewhere.
func Write(w io.Writer, format string, events []map[string]any) error {
	switch format {
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		obj := map[string]any{"events": events}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return fmt.Errorf("unsupported event format: %s", format)
	}
}
