package todos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xyz-asif/sheetodo/internal/rowstore"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

// Repository is the only access path to stored Todos. It keeps no cache:
// every call reads or writes the row store. Concurrent updates of the same
// Todo are last-write-wins at the store.
type Repository struct {
	store rowstore.Store
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

func NewRepository(store rowstore.Store, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{
		store: store,
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (r *Repository) clock() time.Time {
	return r.now().In(r.loc)
}

// List returns all Todos in store order. Blank rows are skipped; any other
// malformed row fails the whole listing.
func (r *Repository) List(ctx context.Context) ([]Todo, error) {
	rows, err := r.store.ReadAllRows(ctx)
	if err != nil {
		return nil, err
	}

	todos := make([]Todo, 0, len(rows))
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		t, err := rowToTodo(row, i+1)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Get scans all rows for id and returns errors.ErrNotFound when none matches.
func (r *Repository) Get(ctx context.Context, id string) (*Todo, error) {
	if id == "" {
		return nil, apperrors.ErrNotFound
	}
	rows, err := r.store.ReadAllRows(ctx)
	if err != nil {
		return nil, err
	}
	return findRow(rows, id)
}

func (r *Repository) Create(ctx context.Context, in TodoInput) (*Todo, error) {
	if err := ValidateInput(&in); err != nil {
		return nil, err
	}

	now := r.clock()
	todo := &Todo{
		ID:        r.newID(),
		Title:     in.Title,
		Body:      in.Body,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
		Priority:  Priority(in.Priority),
		Status:    StatusOpen,
	}

	row := todoToRow(todo)
	if err := r.store.AppendRow(ctx, row); err != nil {
		return nil, err
	}
	return roundTrip(row)
}

// Update overwrites the editable fields of the Todo with id. The id,
// created_at, status and reminder columns are preserved.
func (r *Repository) Update(ctx context.Context, id string, in TodoInput) (*Todo, error) {
	if err := ValidateInput(&in); err != nil {
		return nil, err
	}

	todo, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Title = in.Title
	todo.Body = in.Body
	todo.DueDate = in.DueDate
	todo.Priority = Priority(in.Priority)
	todo.UpdatedAt = r.touch(todo.UpdatedAt)

	return r.write(ctx, todo)
}

// ToggleStatus flips a Todo between open and done. Completing sets done_at;
// reopening clears it.
func (r *Repository) ToggleStatus(ctx context.Context, id string) (*Todo, error) {
	todo, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.touch(todo.UpdatedAt)
	if todo.IsDone() {
		todo.Status = StatusOpen
		todo.DoneAt = nil
	} else {
		todo.Status = StatusDone
		todo.DoneAt = &now
	}
	todo.UpdatedAt = now

	return r.write(ctx, todo)
}

// MarkReminded stamps last_reminded_at on the given Todos in one batch.
// Ids that no longer exist are ignored.
func (r *Repository) MarkReminded(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	rows, err := r.store.ReadAllRows(ctx)
	if err != nil {
		return err
	}

	at = at.In(r.loc)
	updates := make(map[string]rowstore.Row, len(ids))
	for i, row := range rows {
		if !want[row.ID()] {
			continue
		}
		t, err := rowToTodo(row, i+1)
		if err != nil {
			return err
		}
		t.LastRemindedAt = &at
		updates[t.ID] = todoToRow(&t)
	}
	return rowstore.UpdateRows(ctx, r.store, updates)
}

// touch returns the new updated_at, never earlier than prev.
func (r *Repository) touch(prev time.Time) time.Time {
	now := r.clock()
	if now.Before(prev) {
		return prev
	}
	return now
}

func (r *Repository) write(ctx context.Context, todo *Todo) (*Todo, error) {
	row := todoToRow(todo)
	if err := r.store.UpdateRow(ctx, todo.ID, row); err != nil {
		return nil, err
	}
	return roundTrip(row)
}

func findRow(rows []rowstore.Row, id string) (*Todo, error) {
	for i, row := range rows {
		if row.ID() != id {
			continue
		}
		t, err := rowToTodo(row, i+1)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

// roundTrip returns the Todo exactly as a later read of row will see it.
func roundTrip(row rowstore.Row) (*Todo, error) {
	t, err := rowToTodo(row, 0)
	if err != nil {
		return nil, fmt.Errorf("written row does not read back: %w", err)
	}
	return &t, nil
}
