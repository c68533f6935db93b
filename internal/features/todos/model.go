package todos

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// rank orders priorities for sorting, highest first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// NormalizePriority maps free text to a known priority, defaulting to Medium.
func NormalizePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type Status string

const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

func normalizeStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusDone)) {
		return StatusDone
	}
	return StatusOpen
}

// Todo is a task stored as one row of the sheet.
type Todo struct {
	ID             string
	Title          string
	Body           string
	DueDate        string // YYYY-MM-DD or empty
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Priority       Priority
	Status         Status
	DoneAt         *time.Time
	LastRemindedAt *time.Time
}

func (t Todo) IsDone() bool {
	return t.Status == StatusDone
}

// DueAt is the end of the due day (23:59) in loc. ok is false without a due date.
func (t Todo) DueAt(loc *time.Location) (due time.Time, ok bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 0, 0, loc), true
}

// TodoInput is the editable part of a Todo, bound from the HTML form.
type TodoInput struct {
	Title    string `form:"title"`
	Body     string `form:"body"`
	DueDate  string `form:"due_date"`
	Priority string `form:"priority"`
}

func inputFromTodo(t *Todo) TodoInput {
	return TodoInput{
		Title:    t.Title,
		Body:     t.Body,
		DueDate:  t.DueDate,
		Priority: string(t.Priority),
	}
}
