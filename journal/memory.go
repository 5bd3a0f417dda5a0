package journal

import (
	"sync"
	"time"
)

// Memory is an in-process journal used by tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (j *Memory) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *Memory) Recent(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := len(j.entries)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]Entry, n)
	copy(out, j.entries[len(j.entries)-n:])
	return out, nil
}

func (j *Memory) LastStateBearing() (Entry, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := len(j.entries) - 1; i >= 0; i-- {
		if j.entries[i].StateBearing() {
			return j.entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}

func (j *Memory) Close() error { return nil }
