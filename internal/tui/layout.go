package tui

// column is one table column's horizontal span
type column struct {
	title string
	x     int
	width int
}

func (c column) contains(x int) bool {
	return x >= c.x && x < c.x+c.width
}

// layout is the fixed geometry of the table screen for a terminal size
type layout struct {
	width, height int

	entity  column
	gender  column
	date    column
	country column
	actions column

	rowsTop     int // screen row of the first data row
	rowsVisible int // number of data rows that fit
}

// layoutFor computes the table geometry for a terminal of width x height
func layoutFor(width, height int) layout {
	fixed := RowGutter + GenderColumnWidth + DateColumnWidth + CountryColumnWidth + ActionsColumnWidth + 4*ColumnGap
	entityWidth := width - fixed
	if entityWidth < MinEntityWidth {
		entityWidth = MinEntityWidth
	}

	l := layout{width: width, height: height, rowsTop: TableTop}

	x := RowGutter
	next := func(title string, w int) column {
		c := column{title: title, x: x, width: w}
		x += w + ColumnGap
		return c
	}
	l.entity = next("Entity", entityWidth)
	l.gender = next("Gender", GenderColumnWidth)
	l.date = next("Request date", DateColumnWidth)
	l.country = next("Country", CountryColumnWidth)
	l.actions = next("Actions", ActionsColumnWidth)

	l.rowsVisible = height - TableTop - StatusBarLines
	if l.rowsVisible < 1 {
		l.rowsVisible = 1
	}

	return l
}

// tableWidth is the width of the table from the gutter to the last column
func (l layout) tableWidth() int {
	return l.actions.x + l.actions.width
}

// headerY is the screen row of the column titles
func (l layout) headerY() int {
	return HeaderLines
}

// countryToggle is the clickable filter toggle in the Country header
func (l layout) countryToggle() rect {
	return rect{X: l.country.x, Y: l.headerY(), W: l.country.width, H: 1}
}

// rowAt maps a screen row to a row index relative to the scroll offset
func (l layout) rowAt(y int) (int, bool) {
	i := y - l.rowsTop
	if i < 0 || i >= l.rowsVisible {
		return 0, false
	}
	return i, true
}
