package attributes

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// KeySeparator separates the family from the field in a qualified key.
const KeySeparator = "."

// Values is the attribute set of a single family.
type Values = map[string]any

// Snapshot is a point-in-time copy of every family.
type Snapshot = map[string]Values

type family struct {
	values    Values
	updatedAt time.Time
}

// Store is a family-scoped attribute store.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	families map[string]*family

	// now is replaceable in tests.
	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		families: make(map[string]*family),
		now:      time.Now,
	}
}

// Update replaces the family's values with a deep copy of values.
// A nil map stores an empty family.
func (s *Store) Update(name string, values Values) {
	cp := copyValues(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[name] = &family{values: cp, updatedAt: s.now()}
}

// Delete removes a family.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.families, name)
}

// Get returns the value stored under key. The key is either a family name,
// which returns a copy of the whole family, or "family.field".
func (s *Store) Get(key string) (any, bool) {
	name, field, qualified := strings.Cut(key, KeySeparator)

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.families[name]
	if !ok {
		return nil, false
	}
	if !qualified {
		return copyValues(f.values), true
	}
	v, ok := f.values[field]
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// Family returns a copy of the family's values.
func (s *Store) Family(name string) (Values, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.families[name]
	if !ok {
		return nil, false
	}
	return copyValues(f.values), true
}

// UpdatedAt returns when the family was last written.
func (s *Store) UpdatedAt(name string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.families[name]
	if !ok {
		return time.Time{}, false
	}
	return f.updatedAt, true
}

// Families returns the names of all stored families, sorted.
func (s *Store) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.families))
	for name := range s.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of families.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.families)
}

// Snapshot returns a deep copy of every family.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, len(s.families))
	for name, f := range s.families {
		snap[name] = copyValues(f.values)
	}
	return snap
}
