package todos

import (
	"fmt"
	"time"

	"github.com/xyz-asif/sheetodo/internal/rowstore"
)

var testLoc = time.FixedZone("JST", 9*60*60)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestRepo returns a repository over an in-memory store with a fixed
// clock at 2025-01-10 09:00 JST and sequential ids.
func newTestRepo(rows ...rowstore.Row) (*Repository, *rowstore.Memory, *fakeClock) {
	mem := rowstore.NewMemory(rows...)
	clock := &fakeClock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, testLoc)}

	repo := NewRepository(mem, testLoc)
	repo.now = clock.Now
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return repo, mem, clock
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

// stored builds the row a Todo is written as.
func stored(t Todo) rowstore.Row {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = at("2025-01-01T10:00:00+09:00")
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return todoToRow(&t)
}
