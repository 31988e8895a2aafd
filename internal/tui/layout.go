package tui

import "github.com/mattn/go-runewidth"

// line is one rendered row of text, as a rune range [start, end). Spaces
// consumed by a soft wrap and the newline ending a paragraph belong to no line.
type line struct {
	start int
	end   int
}

// layoutLines wraps runes into rows of at most width cells, breaking at
// spaces where possible and hard-breaking words longer than a row. A width
// of zero or less disables wrapping.
func layoutLines(runes []rune, width int) []line {
	var lines []line
	paraStart := 0
	for i := 0; i <= len(runes); i++ {
		if i == len(runes) || runes[i] == '\n' {
			lines = append(lines, wrapParagraph(runes, paraStart, i, width)...)
			paraStart = i + 1
		}
	}
	return lines
}

func wrapParagraph(runes []rune, start, end, width int) []line {
	if width <= 0 || start == end {
		return []line{{start: start, end: end}}
	}

	var lines []line
	pos := start
	for pos < end {
		cells := 0
		lastSpace := -1
		j := pos
		for j < end {
			w := runewidth.RuneWidth(runes[j])
			if cells+w > width {
				break
			}
			if runes[j] == ' ' {
				lastSpace = j
			}
			cells += w
			j++
		}

		switch {
		case j == end:
			lines = append(lines, line{start: pos, end: end})
			pos = end
		case runes[j] == ' ':
			lines = append(lines, line{start: pos, end: j})
			pos = j + 1
		case lastSpace > pos:
			lines = append(lines, line{start: pos, end: lastSpace})
			pos = lastSpace + 1
		case j == pos:
			// A single rune wider than the row.
			lines = append(lines, line{start: pos, end: pos + 1})
			pos++
		default:
			lines = append(lines, line{start: pos, end: j})
			pos = j
		}
	}
	return lines
}

// offsetAt maps a cell (col, row) of the laid out text back to a rune
// offset. Cells past the end of a row, or rows past the text, map to nothing.
func offsetAt(runes []rune, lines []line, col, row int) (int, bool) {
	if row < 0 || row >= len(lines) || col < 0 {
		return -1, false
	}
	l := lines[row]
	cells := 0
	for k := l.start; k < l.end; k++ {
		w := runewidth.RuneWidth(runes[k])
		if w == 0 {
			continue
		}
		if col < cells+w {
			return k, true
		}
		cells += w
	}
	return -1, false
}

// lineOf returns the row that shows offset, or the last row starting at or
// before it when offset falls on a consumed space.
func lineOf(lines []line, offset int) int {
	row := 0
	for i, l := range lines {
		if l.start > offset {
			break
		}
		row = i
		if offset < l.end {
			break
		}
	}
	return row
}
