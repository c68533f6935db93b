package rowstore

import (
	"context"
	"sync"

	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

// Memory is an in-process Store. It counts reads and writes so callers can
// assert on store traffic.
type Memory struct {
	mu     sync.RWMutex
	rows   []Row
	reads  int
	writes int
	err    error
}

func NewMemory(rows ...Row) *Memory {
	m := &Memory{}
	for _, r := range rows {
		m.rows = append(m.rows, r.clone())
	}
	return m
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) ReadAllRows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.reads++

	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.clone()
	}
	return out, nil
}

func (m *Memory) AppendRow(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.rows = append(m.rows, row.clone())
	return nil
}

func (m *Memory) UpdateRow(ctx context.Context, id string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.rows {
		if m.rows[i].ID() == id {
			m.writes++
			m.rows[i] = row.clone()
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *Memory) UpdateRows(ctx context.Context, rows map[string]Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	for i := range m.rows {
		if r, ok := rows[m.rows[i].ID()]; ok {
			m.rows[i] = r.clone()
		}
	}
	return nil
}

// Reads returns the number of successful ReadAllRows calls.
func (m *Memory) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Writes returns the number of successful write calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

var (
	_ Store        = (*Memory)(nil)
	_ BatchUpdater = (*Memory)(nil)
)
