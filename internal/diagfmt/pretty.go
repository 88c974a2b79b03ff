package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"texdiag/internal/diag"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	path, source    *color.Color
	caret, gutter   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		path:   color.New(color.Bold),
		source: color.New(color.Faint),
		caret:  color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.source, p.caret, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <severity>[<source>]: <message>
// затем, если включён контекст, строку исходника с подчёркиванием ^~~~.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for _, it := range bag.Items() {
		d := it.Diagnostic
		path := formatPath(it.Path, opts.PathMode, opts.BaseDir)
		loc := fmt.Sprintf("%s:%d:%d", path, d.Range.Start.Line+1, d.Range.Start.Character+1)

		head := pal.path.Sprint(loc) + ": " + pal.severity(d.Severity).Sprint(d.Severity.Label())
		if d.Source != "" {
			head += pal.source.Sprintf("[%s]", d.Source)
		}
		lines := strings.Split(d.Message, "\n")
		if _, err := fmt.Fprintf(w, "%s: %s\n", head, lines[0]); err != nil {
			return err
		}
		for _, l := range lines[1:] {
			if _, err := fmt.Fprintf(w, "    %s\n", l); err != nil {
				return err
			}
		}
		if opts.Context && opts.Lines != nil {
			if err := writeContext(w, pal, it, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeContext(w io.Writer, pal palette, it diag.Item, opts PrettyOpts) error {
	lineNo := int(it.Range.Start.Line) + 1
	line, ok := opts.Lines.Line(it.Path, lineNo)
	if !ok {
		return nil
	}
	line = strings.TrimRight(line, "\r")

	var startB, endB int
	if it.Range.FullLine() {
		trimmed := strings.TrimRight(line, " \t")
		startB = len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
		endB = len(trimmed)
	} else {
		startB = byteOffset(line, it.Range.Start.Character)
		endB = byteOffset(line, it.Range.End.Character)
	}
	if endB < startB {
		endB = startB
	}

	text := expandTabs(line)
	pad := runewidth.StringWidth(expandTabs(line[:startB]))
	n := runewidth.StringWidth(expandTabs(line[startB:endB]))
	if opts.Width > 0 {
		width := int(opts.Width)
		text = runewidth.Truncate(text, width, "...")
		if pad >= width {
			pad, n = width-1, 1
		} else if pad+n > width {
			n = width - pad
		}
	}
	if n < 1 {
		n = 1
	}

	num := strconv.Itoa(lineNo)
	blank := strings.Repeat(" ", len(num))
	underline := strings.Repeat(" ", pad) + pal.caret.Sprint("^"+strings.Repeat("~", n-1))
	_, err := fmt.Fprintf(w, "%s %s\n%s %s\n",
		pal.gutter.Sprint(num+" |"), text,
		pal.gutter.Sprint(blank+" |"), underline)
	return err
}

// byteOffset converts a UTF-16 column into a byte offset within line.
// Columns past the end clamp to len(line).
func byteOffset(line string, col uint32) int {
	units := uint32(0)
	for i, r := range line {
		if units >= col {
			return i
		}
		if utf16.RuneLen(r) == 2 {
			units += 2
		} else {
			units++
		}
	}
	return len(line)
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// Summary prints "N errors, M warnings, K infos" for bag.
func Summary(w io.Writer, bag *diag.Bag, colored bool) error {
	pal := newPalette(colored)
	errs, warns, infos := bag.Count()
	_, err := fmt.Fprintf(w, "%s, %s, %s\n",
		pal.err.Sprint(plural(errs, "error")),
		pal.warn.Sprint(plural(warns, "warning")),
		pal.info.Sprint(plural(infos, "info")))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

