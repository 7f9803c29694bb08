package tui

import "time"

// Screen layout
const (
	HeaderLines     = 3 // Title, subtitle, blank line
	TableHeadLines  = 2 // Column titles and separator
	StatusBarLines  = 1
	TableTop        = HeaderLines + TableHeadLines // First data row
	ColumnGap       = 2
	RowGutter       = 2 // Cursor marker before the first column
	MinEntityWidth  = 12
	ModalWidth      = 56
	InspectHeight   = 20
	PopoverMaxItems = 10
)

// Column widths other than Entity, which takes the remaining space
const (
	GenderColumnWidth  = 10
	DateColumnWidth    = 14
	CountryColumnWidth = 16
	ActionsColumnWidth = 7
)

// StatusMessageTimeout is how long a status or error message stays in the status bar
const StatusMessageTimeout = 4 * time.Second

// User-facing text
const (
	TitleText       = "Customers"
	SubtitleText    = "Manage customer details and request history"
	LoadingText     = "Loading table..."
	EmptyStateText  = "No results found. Try clearing or changing the country filter."
	SavingText      = "Saving..."
	SaveButtonText  = "Save"
	ClearFilterText = "Clear"
	EditIcon        = "✎"
	DateLayout      = "Jan 02, 2006"
	EmptyDate       = "-"
)
