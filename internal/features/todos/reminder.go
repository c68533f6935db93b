package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

// Notifier delivers a plain-text message to the user.
type Notifier interface {
	Push(ctx context.Context, text string) error
}

// ReminderResult summarises one reminder run.
type ReminderResult struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids,omitempty"`
}

// Reminder notifies about open Todos whose due time falls inside the window.
type Reminder struct {
	repo     *Repository
	notifier Notifier
	window   time.Duration
}

func NewReminder(repo *Repository, notifier Notifier, window time.Duration) *Reminder {
	return &Reminder{repo: repo, notifier: notifier, window: window}
}

// Run sends one message listing every due Todo and records the reminder.
// Todos are stamped only after the message was delivered.
func (r *Reminder) Run(ctx context.Context) (*ReminderResult, error) {
	todos, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := r.repo.clock()
	due := DueForReminder(todos, now, r.window, r.repo.loc)
	if len(due) == 0 {
		return &ReminderResult{}, nil
	}

	if err := r.notifier.Push(ctx, reminderMessage(due, r.window)); err != nil {
		logger.Error("Reminder push failed for %d todos: %v", len(due), err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNotifyFailed, err)
	}

	ids := make([]string, len(due))
	for i, t := range due {
		ids[i] = t.ID
	}
	if err := r.repo.MarkReminded(ctx, ids, now); err != nil {
		return nil, err
	}

	logger.Info("Sent reminder for %d todos", len(due))
	return &ReminderResult{Count: len(due), IDs: ids}, nil
}

// DueForReminder selects open Todos due within [now, now+window] that were
// not already reminded during the last window.
func DueForReminder(todos []Todo, now time.Time, window time.Duration, loc *time.Location) []Todo {
	end := now.Add(window)

	var out []Todo
	for _, t := range todos {
		if t.IsDone() {
			continue
		}
		dueAt, ok := t.DueAt(loc)
		if !ok || dueAt.Before(now) || dueAt.After(end) {
			continue
		}
		if t.LastRemindedAt != nil && now.Sub(*t.LastRemindedAt) < window {
			continue
		}
		out = append(out, t)
	}
	return out
}

func reminderMessage(due []Todo, window time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ %d todo(s) due within %d hours:", len(due), int(window.Hours()))
	for _, t := range due {
		fmt.Fprintf(&b, "\n・%s (due %s)", t.Title, t.DueDate)
	}
	return b.String()
}
