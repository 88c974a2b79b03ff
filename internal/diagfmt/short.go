package diagfmt

import (
	"io"

	"texdiag/internal/diag"
)

// Short prints one stable line per diagnostic (see diag.FormatShort).
func Short(w io.Writer, bag *diag.Bag, baseDir string) error {
	out := diag.FormatShort(bag.Items(), baseDir)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
