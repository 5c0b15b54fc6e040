package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Scheduled is an occurrence registered with a Memory platform.
type Scheduled struct {
	Handle  string
	Content Content
	FireAt  time.Time
}

// Memory is an in-process Platform. It can be told to fail, which makes it
// useful for exercising the scheduler's failure handling.
type Memory struct {
	mu             sync.Mutex
	seq            int
	scheduled      map[string]Scheduled
	cancelAllErr   error
	scheduleErr    func(Content, time.Time) error
	probeErr       error
	cancelAllCalls int
}

// NewMemory returns an empty Memory platform.
func NewMemory() *Memory {
	return &Memory{scheduled: make(map[string]Scheduled)}
}

// FailCancelAll makes CancelAll return err (nil restores success).
func (m *Memory) FailCancelAll(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelAllErr = err
}

// FailSchedule makes Schedule return fn's error whenever it is non-nil.
func (m *Memory) FailSchedule(fn func(Content, time.Time) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleErr = fn
}

// FailProbe makes Probe return err.
func (m *Memory) FailProbe(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeErr = err
}

// Probe implements Prober.
func (m *Memory) Probe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeErr
}

// CancelAll implements Platform.
func (m *Memory) CancelAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelAllCalls++
	if m.cancelAllErr != nil {
		return m.cancelAllErr
	}
	m.scheduled = make(map[string]Scheduled)
	return nil
}

// Cancel implements Platform.
func (m *Memory) Cancel(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scheduled, handle)
	return nil
}

// Schedule implements Platform.
func (m *Memory) Schedule(_ context.Context, content Content, fireAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduleErr != nil {
		if err := m.scheduleErr(content, fireAt); err != nil {
			return "", err
		}
	}
	m.seq++
	handle := fmt.Sprintf("mem-%d", m.seq)
	m.scheduled[handle] = Scheduled{Handle: handle, Content: content, FireAt: fireAt}
	return handle, nil
}

// Scheduled returns the registered occurrences ordered by fire time.
func (m *Memory) Scheduled() []Scheduled {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Scheduled, 0, len(m.scheduled))
	for _, s := range m.scheduled {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// CancelAllCalls returns how many times CancelAll was invoked.
func (m *Memory) CancelAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelAllCalls
}
