package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// rect is a screen region in cells
type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// splitLinesN splits s into exactly h lines, padding with empty ones
func splitLinesN(s string, h int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return lines
}

// overlayAt draws fg over bg with its top-left corner at (x, y)
func overlayAt(bgLines []string, fg string, width, x, y int) {
	fgLines := strings.Split(fg, "\n")
	fgW := 0
	for _, ln := range fgLines {
		if n := ansi.StringWidth(ln); n > fgW {
			fgW = n
		}
	}
	if fgW <= 0 {
		return
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		if n := ansi.StringWidth(bgLine); n < width {
			bgLine += strings.Repeat(" ", width-n)
		}
		left := ansi.Cut(bgLine, 0, x)
		right := ansi.Cut(bgLine, x+fgW, width)

		fgLine := fgLines[i]
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		}

		bgLines[y+i] = left + fgLine + right
	}
}

// blockSize returns the width and height of a rendered block
func blockSize(s string) (int, int) {
	lines := strings.Split(s, "\n")
	w := 0
	for _, ln := range lines {
		if n := ansi.StringWidth(ln); n > w {
			w = n
		}
	}
	return w, len(lines)
}

// centered returns the top-left corner that centers a w x h block on screen
func centered(screenW, screenH, w, h int) (int, int) {
	x := (screenW - w) / 2
	y := (screenH - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
