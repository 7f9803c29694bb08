package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// GenderBadge is the badge variant of the Gender column
type GenderBadge int

const (
	BadgeOther GenderBadge = iota
	BadgeMale
)

// ClassifyGender picks the badge variant; only "male" in any case is BadgeMale
func ClassifyGender(v string) GenderBadge {
	if strings.EqualFold(v, "male") {
		return BadgeMale
	}
	return BadgeOther
}

// Accepted request date layouts, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatRequestDate renders a record timestamp as "Jan 02, 2006" in loc.
// Empty input renders as "-" and anything unparseable is shown as is.
func FormatRequestDate(ts string, loc *time.Location) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return EmptyDate
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		// Layouts without a zone are read as wall time in loc
		t, err := time.ParseInLocation(layout, ts, loc)
		if err == nil {
			return t.In(loc).Format(DateLayout)
		}
	}

	return ts
}

// fit truncates or pads s to exactly width cells
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if n := ansi.StringWidth(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// wrapText wraps text to the specified width, breaking on spaces when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		for ansi.StringWidth(line) > width {
			cut := ansi.Cut(line, 0, width)
			if i := strings.LastIndex(cut, " "); i > 0 {
				cut = cut[:i]
			}
			if cut == "" {
				_, size := utf8.DecodeRuneInString(line)
				cut = line[:size]
			}
			out = append(out, cut)
			line = strings.TrimLeft(line[len(cut):], " ")
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func addCursor(text string) string {
	return text + "█"
}
