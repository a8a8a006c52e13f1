package roster

import "context"

// Cell is a single value write addressed by 1-based row and zero-based column.
type Cell struct {
	Row   int
	Col   int
	Value any
}

// Color is an RGB colour with components in [0,1].
type Color struct {
	Red, Green, Blue float64
}

var (
	ColorBlack = Color{}
	ColorRed   = Color{Red: 0.6}
)

// Format describes cell formatting changes. Nil fields are left untouched.
type Format struct {
	Background *Color
	Foreground *Color
	Note       *string
}

// Sheet is the spreadsheet the roster lives in.
type Sheet interface {
	// Rows returns every row from the first data row on, as displayed.
	Rows(ctx context.Context) ([][]any, error)
	// RowFormulas returns one row with formulas instead of their results.
	RowFormulas(ctx context.Context, row int) ([]any, error)
	// Update writes all cells in a single batch.
	Update(ctx context.Context, cells []Cell) error
	// UpdateRow replaces a row starting at column A.
	UpdateRow(ctx context.Context, row int, values []any) error
	// Format applies formatting to one cell.
	Format(ctx context.Context, row, col int, f Format) error
}
