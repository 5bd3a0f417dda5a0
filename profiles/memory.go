package profiles

import (
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process store used by tests.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemory returns a memory store seeded with the default profiles.
func NewMemory() *Memory {
	return &Memory{profiles: Defaults()}
}

func (s *Memory) Get(name string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

func (s *Memory) All() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Memory) Create(name string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[name] = p
	return nil
}

func (s *Memory) Close() error { return nil }
