package sheets

import (
	"context"
	"sync"

	"github.com/EdvardGK/reduzer-summary/internal/report"
)

// MockWriter is a report.Writer that records calls, for tests.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, d *report.Data) error
	LastData       *report.Data
	WriteCalls     []WriteCall
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error error
	Data  *report.Data
	Tabs  TabData
}

var _ report.Writer = (*MockWriter)(nil)

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the call and lays d out as tabs, like the real writer.
func (m *MockWriter) Write(ctx context.Context, d *report.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastData = d

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, d)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{Data: d, Tabs: PrepareTabs(d), Error: err})
	return err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount = 0
	m.WriteCalls = nil
	m.LastData = nil
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// SetWriteError makes every following Write return err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, *report.Data) error {
		return err
	}
}
