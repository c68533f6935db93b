package rowstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

// Cells are written RAW so the spreadsheet keeps timestamps as text.
const valueInputRaw = "RAW"

// SheetsOptions selects the spreadsheet tab that holds the rows.
type SheetsOptions struct {
	SpreadsheetID string
	SheetName     string
	Layout        Layout
	Timeout       time.Duration
}

// Sheets is a Store backed by one tab of a Google spreadsheet.
// Row 1 holds the header; data starts on row 2.
type Sheets struct {
	values  *sheets.SpreadsheetsValuesService
	id      string
	sheet   string
	layout  Layout
	timeout time.Duration
}

// NewSheets builds a Sheets store. clientOpts carry credentials, or an
// endpoint and HTTP client in tests.
func NewSheets(ctx context.Context, opts SheetsOptions, clientOpts ...option.ClientOption) (*Sheets, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if opts.SheetName == "" {
		opts.SheetName = "todos"
	}
	if opts.Layout.Width() == 0 {
		return nil, errors.New("layout has no columns")
	}

	srv, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", classify(err))
	}

	return &Sheets{
		values:  srv.Spreadsheets.Values,
		id:      opts.SpreadsheetID,
		sheet:   opts.SheetName,
		layout:  opts.Layout,
		timeout: opts.Timeout,
	}, nil
}

// EnsureSchema writes the header on an empty sheet and migrates a legacy
// header and its rows to the current layout. Run it once at startup.
func (s *Sheets) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.values.Get(s.id, s.headerRange()).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", classify(err))
	}

	var header []string
	if len(resp.Values) > 0 {
		header = toRow(resp.Values[0])
	}

	switch {
	case s.layout.Matches(header):
		return nil
	case Row(header).IsBlank():
		logger.Info("Writing header to sheet %q", s.sheet)
		_, err := s.values.Update(s.id, s.headerRange(), &sheets.ValueRange{
			Values: [][]interface{}{toCells(s.layout.Columns)},
		}).ValueInputOption(valueInputRaw).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header: %w", classify(err))
		}
		return nil
	case s.layout.Recognises(header):
		return s.migrate(ctx)
	default:
		return fmt.Errorf("sheet %q has an unexpected header %v: %w", s.sheet, header, apperrors.ErrParse)
	}
}

func (s *Sheets) migrate(ctx context.Context) error {
	all, err := s.values.Get(s.id, quoteSheet(s.sheet)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet for migration: %w", classify(err))
	}
	if len(all.Values) == 0 {
		return nil
	}

	old := toRow(all.Values[0])
	grid := [][]interface{}{toCells(s.layout.Columns)}
	for _, raw := range all.Values[1:] {
		row := toRow(raw)
		if row.IsBlank() {
			continue
		}
		grid = append(grid, toCells(s.layout.Migrate(old, row)))
	}
	logger.Info("Migrating sheet %q from header %v (%d rows)", s.sheet, old, len(grid)-1)

	if _, err := s.values.Clear(s.id, quoteSheet(s.sheet), &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", classify(err))
	}
	rng := fmt.Sprintf("%s!A1:%s%d", quoteSheet(s.sheet), s.lastColumn(), len(grid))
	_, err = s.values.Update(s.id, rng, &sheets.ValueRange{Values: grid}).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write migrated rows: %w", classify(err))
	}
	return nil
}

func (s *Sheets) ReadAllRows(ctx context.Context) ([]Row, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.values.Get(s.id, s.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", classify(err))
	}

	rows := make([]Row, 0, len(resp.Values))
	for _, raw := range resp.Values {
		rows = append(rows, toRow(raw))
	}
	return rows, nil
}

func (s *Sheets) AppendRow(ctx context.Context, row Row) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.values.Append(s.id, s.headerRange(), &sheets.ValueRange{
		Values: [][]interface{}{toCells(row)},
	}).ValueInputOption(valueInputRaw).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", classify(err))
	}
	return nil
}

func (s *Sheets) UpdateRow(ctx context.Context, id string, row Row) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	numbers, err := s.rowNumbers(ctx)
	if err != nil {
		return err
	}
	n, ok := numbers[id]
	if !ok {
		return apperrors.ErrNotFound
	}

	_, err = s.values.Update(s.id, s.rowRange(n), &sheets.ValueRange{
		Values: [][]interface{}{toCells(row)},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d: %w", n, classify(err))
	}
	return nil
}

func (s *Sheets) UpdateRows(ctx context.Context, rows map[string]Row) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	numbers, err := s.rowNumbers(ctx)
	if err != nil {
		return err
	}

	data := make([]*sheets.ValueRange, 0, len(rows))
	for id, row := range rows {
		n, ok := numbers[id]
		if !ok {
			continue
		}
		data = append(data, &sheets.ValueRange{
			Range:  s.rowRange(n),
			Values: [][]interface{}{toCells(row)},
		})
	}
	if len(data) == 0 {
		return nil
	}

	_, err = s.values.BatchUpdate(s.id, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputRaw,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update: %w", classify(err))
	}
	return nil
}

// rowNumbers maps identifiers to sheet row numbers by reading column A.
func (s *Sheets) rowNumbers(ctx context.Context) (map[string]int, error) {
	resp, err := s.values.Get(s.id, s.idRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", classify(err))
	}
	out := make(map[string]int, len(resp.Values))
	for i, raw := range resp.Values {
		id := toRow(raw).ID()
		if id == "" {
			continue
		}
		if _, dup := out[id]; !dup {
			out[id] = i + 2
		}
	}
	return out, nil
}

func (s *Sheets) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Sheets) lastColumn() string {
	return columnLetter(s.layout.Width() - 1)
}

func (s *Sheets) headerRange() string {
	return fmt.Sprintf("%s!A1:%s1", quoteSheet(s.sheet), s.lastColumn())
}

func (s *Sheets) dataRange() string {
	return fmt.Sprintf("%s!A2:%s", quoteSheet(s.sheet), s.lastColumn())
}

func (s *Sheets) idRange() string {
	return fmt.Sprintf("%s!A2:A", quoteSheet(s.sheet))
}

func (s *Sheets) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(s.sheet), n, s.lastColumn(), n)
}

// quoteSheet quotes a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a 0-based column index to its A1 letters.
func columnLetter(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

func toRow(cells []interface{}) Row {
	row := make(Row, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		row[i] = fmt.Sprint(c)
	}
	return row
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

// classify tags a Sheets API failure with the matching sentinel.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", apperrors.ErrStoreAuth, err)
		}
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}

var (
	_ Store        = (*Sheets)(nil)
	_ BatchUpdater = (*Sheets)(nil)
)
