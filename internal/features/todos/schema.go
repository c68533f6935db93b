package todos

import (
	"fmt"
	"strings"
	"time"

	"github.com/xyz-asif/sheetodo/internal/rowstore"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

// Column order of schema v2. v1 is the first requiredColumns entries.
const (
	colID = iota
	colTitle
	colBody
	colDueDate
	colCreatedAt
	colUpdatedAt
	colPriority
	colStatus
	colDoneAt
	colLastRemindedAt
	columnCount
)

const requiredColumns = colUpdatedAt + 1

var columnNames = [columnCount]string{
	colID:             "id",
	colTitle:          "title",
	colBody:           "body",
	colDueDate:        "due_date",
	colCreatedAt:      "created_at",
	colUpdatedAt:      "updated_at",
	colPriority:       "priority",
	colStatus:         "status",
	colDoneAt:         "done_at",
	colLastRemindedAt: "last_reminded_at",
}

// SheetLayout is the header written to the sheet, with the legacy names
// it knows how to migrate.
func SheetLayout() rowstore.Layout {
	return rowstore.Layout{
		Columns: columnNames[:],
		Aliases: map[string]string{
			"description": columnNames[colBody],
			"due_at":      columnNames[colDueDate],
		},
		Defaults: map[string]string{
			columnNames[colPriority]: string(PriorityMedium),
			columnNames[colStatus]:   string(StatusOpen),
		},
	}
}

func todoToRow(t *Todo) rowstore.Row {
	row := make(rowstore.Row, columnCount)
	row[colID] = t.ID
	row[colTitle] = t.Title
	row[colBody] = t.Body
	row[colDueDate] = t.DueDate
	row[colCreatedAt] = formatTimestamp(t.CreatedAt)
	row[colUpdatedAt] = formatTimestamp(t.UpdatedAt)
	row[colPriority] = string(t.Priority)
	row[colStatus] = string(t.Status)
	if t.DoneAt != nil {
		row[colDoneAt] = formatTimestamp(*t.DoneAt)
	}
	if t.LastRemindedAt != nil {
		row[colLastRemindedAt] = formatTimestamp(*t.LastRemindedAt)
	}
	return row
}

// rowToTodo maps a stored row back to a Todo. pos is the 1-based data row
// position used in error messages. Columns past updated_at may be missing
// because the spreadsheet trims trailing empty cells.
func rowToTodo(row rowstore.Row, pos int) (Todo, error) {
	if len(row) < requiredColumns {
		return Todo{}, &apperrors.ParseError{
			Row:    pos,
			Reason: fmt.Sprintf("expected at least %d columns, got %d", requiredColumns, len(row)),
		}
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	fail := func(col int, reason string) error {
		return &apperrors.ParseError{Row: pos, Column: columnNames[col], Reason: reason}
	}

	t := Todo{
		ID:       cell(colID),
		Title:    cell(colTitle),
		Body:     row[colBody],
		Priority: NormalizePriority(cell(colPriority)),
		Status:   normalizeStatus(cell(colStatus)),
	}
	if t.ID == "" {
		return Todo{}, fail(colID, "empty identifier")
	}
	if t.Title == "" {
		return Todo{}, fail(colTitle, "empty title")
	}

	due, err := parseDueDate(cell(colDueDate))
	if err != nil {
		return Todo{}, fail(colDueDate, err.Error())
	}
	t.DueDate = due

	if t.CreatedAt, err = parseTimestamp(cell(colCreatedAt)); err != nil {
		return Todo{}, fail(colCreatedAt, err.Error())
	}
	if t.UpdatedAt, err = parseTimestamp(cell(colUpdatedAt)); err != nil {
		return Todo{}, fail(colUpdatedAt, err.Error())
	}
	if t.DoneAt, err = parseOptionalTimestamp(cell(colDoneAt)); err != nil {
		return Todo{}, fail(colDoneAt, err.Error())
	}
	if t.LastRemindedAt, err = parseOptionalTimestamp(cell(colLastRemindedAt)); err != nil {
		return Todo{}, fail(colLastRemindedAt, err.Error())
	}
	return t, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

func parseOptionalTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDueDate accepts YYYY-MM-DD, or a full timestamp written by older
// versions, which is reduced to its calendar date.
func parseDueDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return s, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", fmt.Errorf("invalid due date %q", s)
}
