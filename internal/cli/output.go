// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"io"
	"os"
)

// PrintJSON writes v as JSON. Output to a terminal is indented for
// readability; pipes get compact lines.
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if isTerminal(w) {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
