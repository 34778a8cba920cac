package operations

import (
	"strings"

	"github.com/sasha-s/go-deadlock"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

var _ ISharedContext = &SharedContext{}

// SharedContext is an internally synchronised, case-insensitive key/value store scoped
// to one execution run. A fresh one is created per run and discarded afterwards.
type SharedContext struct {
	mu     deadlock.RWMutex
	values map[string]any
}

// NewSharedContext returns a shared context seeded with initial values.
func NewSharedContext(initial map[string]any) *SharedContext {
	store := &SharedContext{values: make(map[string]any, len(initial))}
	for key, value := range initial {
		store.values[normaliseKey(key)] = value
	}
	return store
}

func normaliseKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (s *SharedContext) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[normaliseKey(key)] = value
}

func (s *SharedContext) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.values[normaliseKey(key)]
	if !found {
		return nil, commonerrors.Newf(commonerrors.ErrNotFound, "no value stored under key %q", key)
	}
	return value, nil
}

func (s *SharedContext) TryGet(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.values[normaliseKey(key)]
	return value, found
}

func (s *SharedContext) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

func (s *SharedContext) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Value returns the value stored under key in store, failing with ErrNotFound when the
// key is absent and with ErrInvalid when the stored value is not a T. Stored values are
// never silently coerced.
func Value[T any](store ISharedContext, key string) (value T, err error) {
	if store == nil {
		err = commonerrors.UndefinedVariable("shared context")
		return
	}
	raw, err := store.Get(key)
	if err != nil {
		return
	}
	cast, ok := raw.(T)
	if !ok {
		err = commonerrors.Newf(commonerrors.ErrInvalid, "value stored under key %q is of type %T, not %T", key, raw, value)
		return
	}
	value = cast
	return
}
