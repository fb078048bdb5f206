package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane makes s exactly width columns wide (ANSI-aware) and, when height > 0,
// exactly height lines tall. Overlong lines end in "…".
func normalizePane(s string, width, height int) string {
	width = max(width, 0)
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitLine(ln, width)
	}
	return strings.Join(lines, "\n")
}

func fitLine(ln string, width int) string {
	if width == 0 {
		return ""
	}
	// Bound the work on huge lines before measuring them.
	if len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width+1)
	}
	w := xansi.StringWidth(ln)
	if w > width {
		ln = truncateCell(ln, width)
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// truncateCell cuts s to width columns, ending in "…" when anything was dropped.
func truncateCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Truncate(s, width, "…")
}
