package interpret

import (
	"html"
	"strings"
)

// Markdown table conversion works as a small explicit parser: lines are
// tokenized into cells, classified as content rows or separator rows, and
// contiguous spans of (header, separator, data...) are emitted as HTML
// tables. Anything that does not form a well-shaped span stays plain text.

// isRowLine reports whether a line is pipe-delimited table content.
func isRowLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// splitCells tokenizes a row line into trimmed cell values.
func splitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	raw := strings.Split(trimmed, "|")
	cells := make([]string, len(raw))
	for i, c := range raw {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// isSeparatorLine reports whether a row line is the header/body separator:
// every cell is dashes with optional alignment colons.
func isSeparatorLine(line string) bool {
	if !isRowLine(line) {
		return false
	}
	for _, cell := range splitCells(line) {
		if !isSeparatorCell(cell) {
			return false
		}
	}
	return true
}

func isSeparatorCell(cell string) bool {
	dashes := 0
	for i, r := range cell {
		switch r {
		case '-':
			dashes++
		case ':':
			if i != 0 && i != len(cell)-1 {
				return false
			}
		default:
			return false
		}
	}
	return dashes > 0
}

// convertTables replaces each well-formed Markdown table block in text with
// an HTML table, in document order. Text outside tables is HTML-escaped;
// malformed blocks (ragged cell counts) are escaped and left as-is.
func convertTables(text string) string {
	lines := strings.Split(text, "\n")
	var out []string

	for i := 0; i < len(lines); {
		if start, end, ok := tableSpanAt(lines, i); ok {
			header := splitCells(lines[start])
			var rows [][]string
			ragged := false
			for _, line := range lines[start+2 : end] {
				cells := splitCells(line)
				if len(cells) != len(header) {
					ragged = true
					break
				}
				rows = append(rows, cells)
			}

			if ragged {
				// Do not guess missing cells; keep the block verbatim.
				for _, line := range lines[start:end] {
					out = append(out, html.EscapeString(line))
				}
			} else {
				out = append(out, renderTable(header, rows))
			}
			i = end
			continue
		}
		out = append(out, html.EscapeString(lines[i]))
		i++
	}

	return strings.Join(out, "\n")
}

// tableSpanAt reports the half-open line span [start, end) of a table block
// beginning at index i: a content row, a separator row, then one or more
// data rows.
func tableSpanAt(lines []string, i int) (int, int, bool) {
	if i+2 >= len(lines) {
		return 0, 0, false
	}
	if !isRowLine(lines[i]) || isSeparatorLine(lines[i]) {
		return 0, 0, false
	}
	if !isSeparatorLine(lines[i+1]) {
		return 0, 0, false
	}
	if !isRowLine(lines[i+2]) {
		return 0, 0, false
	}

	end := i + 2
	for end < len(lines) && isRowLine(lines[end]) && !isSeparatorLine(lines[end]) {
		end++
	}
	return i, end, true
}

// renderTable emits the HTML table for a parsed block. Cell text is inserted
// literally; column and row order follow the source.
func renderTable(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<table border="1" style="border-collapse:collapse; width:100%;">` + "\n")

	b.WriteString("<tr>")
	for _, cell := range header {
		b.WriteString("<th>")
		b.WriteString(cell)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n")

	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(cell)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</table>")
	return b.String()
}
