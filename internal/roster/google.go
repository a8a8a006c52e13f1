package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrWorksheetNotFound = errors.New("worksheet not found in spreadsheet")

const valueInputUserEntered = "USER_ENTERED"

// GoogleSheet is the Google Sheets implementation of Sheet.
type GoogleSheet struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	layout        Layout
	logger        *zap.Logger

	sheetIDMu sync.Mutex
	sheetID   *int64
}

// NewGoogleSheet connects to the spreadsheet using service account credentials.
func NewGoogleSheet(
	ctx context.Context, credentialsFile, spreadsheetID, sheetName string, layout Layout, logger *zap.Logger,
) (*GoogleSheet, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleSheet{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		layout:        layout,
		logger:        logger.Named("sheets"),
	}, nil
}

// Rows implements Sheet.
func (g *GoogleSheet) Rows(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%sA%d:%s", g.prefix(), g.layout.FirstRow, ColumnName(g.layout.Width-1))

	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}

	return resp.Values, nil
}

// RowFormulas implements Sheet.
func (g *GoogleSheet) RowFormulas(ctx context.Context, row int) ([]any, error) {
	rng := g.rowRange(row)

	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		ValueRenderOption("FORMULA").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}

	return resp.Values[0], nil
}

// Update implements Sheet.
func (g *GoogleSheet) Update(ctx context.Context, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(cells))
	for _, c := range cells {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s%s%d", g.prefix(), ColumnName(c.Col), c.Row),
			Values: [][]any{{c.Value}},
		})
	}

	_, err := g.service.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputUserEntered,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update %d cells: %w", len(cells), err)
	}

	g.logger.Debug("Updated cells", zap.Int("count", len(cells)))

	return nil
}

// UpdateRow implements Sheet.
func (g *GoogleSheet) UpdateRow(ctx context.Context, row int, values []any) error {
	rng := g.rowRange(row)

	_, err := g.service.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]any{values},
	}).ValueInputOption(valueInputUserEntered).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}

	return nil
}

// Format implements Sheet.
func (g *GoogleSheet) Format(ctx context.Context, row, col int, f Format) error {
	sheetID, err := g.worksheetID(ctx)
	if err != nil {
		return err
	}

	cell := &sheets.CellData{}
	fields := ""

	addField := func(name string) {
		if fields != "" {
			fields += ","
		}
		fields += name
	}

	if f.Background != nil || f.Foreground != nil {
		cell.UserEnteredFormat = &sheets.CellFormat{}
	}

	if f.Background != nil {
		cell.UserEnteredFormat.BackgroundColor = toSheetsColor(*f.Background)
		addField("userEnteredFormat.backgroundColor")
	}

	if f.Foreground != nil {
		cell.UserEnteredFormat.TextFormat = &sheets.TextFormat{ForegroundColor: toSheetsColor(*f.Foreground)}
		addField("userEnteredFormat.textFormat.foregroundColor")
	}

	if f.Note != nil {
		cell.Note = *f.Note
		cell.ForceSendFields = []string{"Note"}
		addField("note")
	}

	if fields == "" {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(row - 1),
					EndRowIndex:      int64(row),
					StartColumnIndex: int64(col),
					EndColumnIndex:   int64(col + 1),
					ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell:   cell,
				Fields: fields,
			},
		}},
	}

	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to format %s%d: %w", ColumnName(col), row, err)
	}

	return nil
}

// worksheetID resolves and remembers the numeric id of the roster tab.
func (g *GoogleSheet) worksheetID(ctx context.Context) (int64, error) {
	g.sheetIDMu.Lock()
	defer g.sheetIDMu.Unlock()

	if g.sheetID != nil {
		return *g.sheetID, nil
	}

	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet properties: %w", err)
	}

	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title == g.sheetName {
			id := s.Properties.SheetId
			g.sheetID = &id

			return id, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrWorksheetNotFound, g.sheetName)
}

func (g *GoogleSheet) prefix() string {
	return fmt.Sprintf("'%s'!", g.sheetName)
}

func (g *GoogleSheet) rowRange(row int) string {
	return fmt.Sprintf("%sA%d:%s%d", g.prefix(), row, ColumnName(g.layout.Width-1), row)
}

func toSheetsColor(c Color) *sheets.Color {
	return &sheets.Color{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		Alpha:           1,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}
}
