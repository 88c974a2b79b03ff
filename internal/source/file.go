package source

import (
	"fortio.org/safecast"
)

// LineCount returns the number of '\n'-separated lines, counting a trailing
// empty line after a final newline.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// Line returns the 1-based line n without its terminator.
// ok is false when n is outside [1, LineCount()].
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > f.LineCount() {
		return "", false
	}
	lineNum, err := safecast.Conv[uint32](n)
	if err != nil {
		return "", false
	}
	return f.GetLine(lineNum), true
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	lenLineIdx, lenContent, ok := indexLengths(len(f.LineIdx), len(f.Content))
	if !ok {
		return ""
	}

	var start, end uint32

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}

// indexLengths converts the index and content lengths to uint32. ok is
// false when a file is too large for 32-bit offsets; such lines are
// reported as missing.
func indexLengths(idx, content int) (lenIdx, lenContent uint32, ok bool) {
	lenIdx, err := safecast.Conv[uint32](idx)
	if err != nil {
		return 0, 0, false
	}
	lenContent, err = safecast.Conv[uint32](content)
	if err != nil {
		return 0, 0, false
	}
	return lenIdx, lenContent, true
}
