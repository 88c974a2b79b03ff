package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"texdiag/internal/diag"
)

type memLines map[string][]string

func (m memLines) Line(path string, n int) (string, bool) {
	lines, ok := m[path]
	if !ok || n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func sampleBag() *diag.Bag {
	latex := diag.NewCollection("LaTeX")
	latex.Replace(map[string][]diag.Diagnostic{
		"/home/user/project/main.tex": {
			{Range: diag.LineRange(3, 5, 9), Message: "Undefined control sequence.", Severity: diag.SevError, Source: "LaTeX"},
			{Range: diag.LineRange(1, 0, diag.EndOfLine), Message: "Overfull \\hbox\nin paragraph", Severity: diag.SevInfo, Source: "LaTeX"},
		},
	})
	return diag.Collect(0, latex)
}

var sampleLines = memLines{
	"/home/user/project/main.tex": {"  \\section{x}  ", "", "Text \\foo more"},
}

// TestPrettyContext проверяет строку контекста и подчёркивание
func TestPrettyContext(t *testing.T) {
	var buf bytes.Buffer
	err := Pretty(&buf, sampleBag(), PrettyOpts{
		BaseDir: "/home/user/project",
		Context: true,
		Lines:   sampleLines,
	})
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := strings.Join([]string{
		"main.tex:1:1: info[LaTeX]: Overfull \\hbox",
		"    in paragraph",
		"1 |   \\section{x}  ",
		"  |   ^~~~~~~~~~~",
		"main.tex:3:6: error[LaTeX]: Undefined control sequence.",
		"3 | Text \\foo more",
		"  |      ^~~~",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

// TestPrettyFullLineTrim: full-line диагностика подчёркивает строку без
// пробелов и табов по краям.
func TestPrettyFullLineTrim(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		text      string
		underline string
	}{
		{"spaces", "  \\section{x}  ", "1 |   \\section{x}  ", "  |   ^~~~~~~~~~~"},
		{"trailing tabs", "\\item x\t\t", "1 | \\item x     ", "  | ^~~~~~~"},
		{"tabs both sides", "\t\\end{x}\t", "1 |     \\end{x} ", "  |     ^~~~~~"},
		{"blank line", " \t ", "1 |" + strings.Repeat(" ", 6), "  | ^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := diag.NewCollection("LaTeX")
			col.Replace(map[string][]diag.Diagnostic{
				"/p/main.tex": {{Range: diag.LineRange(1, 0, diag.EndOfLine), Message: "m", Severity: diag.SevWarning, Source: "LaTeX"}},
			})
			var buf bytes.Buffer
			err := Pretty(&buf, diag.Collect(0, col), PrettyOpts{
				BaseDir: "/p",
				Context: true,
				Lines:   memLines{"/p/main.tex": {tt.line}},
			})
			if err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			lines := strings.Split(buf.String(), "\n")
			if len(lines) < 3 {
				t.Fatalf("short output %q", buf.String())
			}
			if lines[1] != tt.text {
				t.Errorf("context = %q, want %q", lines[1], tt.text)
			}
			if lines[2] != tt.underline {
				t.Errorf("underline = %q, want %q", lines[2], tt.underline)
			}
		})
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/main.tex:3:6"},
		{"Relative path", PathModeRelative, "\nmain.tex:3:6"},
		{"Basename only", PathModeBasename, "\nmain.tex:3:6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"}
			if err := Pretty(&buf, sampleBag(), opts); err != nil {
				t.Fatal(err)
			}
			if output := buf.String(); !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
		})
	}
}

func TestPathModeAutoOutsideBase(t *testing.T) {
	if got := formatPath("/elsewhere/x.tex", PathModeAuto, "/home/user/project"); got != "/elsewhere/x.tex" {
		t.Fatalf("got %q", got)
	}
	if got := formatPath("/home/user/project/ch/x.tex", PathModeAuto, "/home/user/project"); got != "ch/x.tex" {
		t.Fatalf("got %q", got)
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	col := diag.NewCollection("LaTeX")
	// "数式 " занимает 5 колонок терминала и 3 UTF-16 единицы
	col.Replace(map[string][]diag.Diagnostic{
		"a.tex": {{Range: diag.LineRange(1, 3, 7), Message: "m", Severity: diag.SevWarning}},
	})
	var buf bytes.Buffer
	err := Pretty(&buf, diag.Collect(0, col), PrettyOpts{
		Context: true,
		Lines:   memLines{"a.tex": {"数式 \\foo"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "  |      ^~~~\n") {
		t.Fatalf("underline misaligned:\n%s", buf.String())
	}
}

func TestByteOffset(t *testing.T) {
	line := "😀é\\x"
	tests := []struct {
		col  uint32
		want int
	}{
		{0, 0},
		{2, 4},
		{3, 6},
		{4, 7},
		{diag.EndOfLine, len(line)},
	}
	for _, tt := range tests {
		if got := byteOffset(line, tt.col); got != tt.want {
			t.Errorf("byteOffset(%d) = %d, want %d", tt.col, got, tt.want)
		}
	}
}

func TestSummaryAndShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, sampleBag(), false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "1 error, 0 warnings, 1 info\n" {
		t.Fatalf("summary = %q", got)
	}

	buf.Reset()
	if err := Short(&buf, sampleBag(), "/home/user/project"); err != nil {
		t.Fatal(err)
	}
	want := "info LaTeX main.tex:1:1 Overfull \\hbox in paragraph\nerror LaTeX main.tex:3:6 Undefined control sequence.\n"
	if got := buf.String(); got != want {
		t.Fatalf("short = %q, want %q", got, want)
	}
}
