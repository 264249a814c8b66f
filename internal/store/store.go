// Package store owns the mutable application state. All mutations go through
// a single Store so category/rule changes and their persistence are
// serialized behind one lock, and every applied mutation is written to disk
// before it becomes visible.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gomical/internal/log"
	"gomical/internal/model"
)

var (
	// ErrLastCategory is returned when deleting a category would leave none.
	ErrLastCategory = errors.New("store: at least one category must remain")
	// ErrNotFound is returned for operations on an unknown category id.
	ErrNotFound = errors.New("store: category not found")
	// ErrBadValue is returned for out-of-range rule parameters.
	ErrBadValue = errors.New("store: value out of range")
)

// Store holds the live state and its backing file.
type Store struct {
	mu    sync.Mutex
	path  string
	state model.State
}

// Open loads state from path. Missing or unreadable files and malformed JSON
// all resolve to the seeded default state; Open never fails.
func Open(path string) *Store {
	return &Store{path: path, state: loadState(path)}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AddCategory derives a unique id from label, assigns the next palette color,
// appends the category with a disabled rule, and persists. A blank label is a
// silent no-op (ok=false, no error).
func (s *Store) AddCategory(label string) (model.Category, bool, error) {
	trimmed := trimLabel(label)
	if trimmed == "" {
		return model.Category{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	pal := model.PaletteFor(len(next.Types))
	cat := model.Category{
		ID:        model.UniqueID(next, trimmed),
		Label:     trimmed,
		Color:     pal.Color,
		BgColor:   pal.BgColor,
		TextColor: pal.TextColor,
		Icon:      model.DefaultIcon,
	}
	next.Types = append(next.Types, cat)
	next.Rules[cat.ID] = model.OffRule()

	if err := s.commit(next); err != nil {
		return model.Category{}, false, err
	}
	return cat, true, nil
}

// DeleteCategory removes the category and its rule together. Deleting the
// last remaining category is refused.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasID(id) {
		return ErrNotFound
	}
	if len(s.state.Types) <= 1 {
		return ErrLastCategory
	}

	next := s.state.Clone()
	kept := next.Types[:0]
	for _, c := range next.Types {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	next.Types = kept
	delete(next.Rules, id)

	return s.commit(next)
}

// SetMode switches the rule mode for id and persists.
func (s *Store) SetMode(id string, mode model.Mode) error {
	switch mode {
	case model.ModeOff, model.ModeWeekly, model.ModeNth:
	default:
		return fmt.Errorf("%w: mode %q", ErrBadValue, mode)
	}

	return s.mutateRule(id, func(r *model.Rule) {
		r.Mode = mode
	})
}

// ToggleWeekday adds day (0-6, Sunday=0) to the rule's weekday set if absent,
// removes it if present, and persists.
func (s *Store) ToggleWeekday(id string, day int) error {
	if day < 0 || day > 6 {
		return fmt.Errorf("%w: weekday %d", ErrBadValue, day)
	}

	return s.mutateRule(id, func(r *model.Rule) {
		r.Weekdays = toggleInt(r.Weekdays, day)
	})
}

// ToggleNth adds ordinal n (1-5) to the rule's nth set if absent, removes it
// if present, and persists.
func (s *Store) ToggleNth(id string, n int) error {
	if n < 1 || n > 5 {
		return fmt.Errorf("%w: nth %d", ErrBadValue, n)
	}

	return s.mutateRule(id, func(r *model.Rule) {
		r.Nth = toggleInt(r.Nth, n)
	})
}

// Save persists the current state as-is (the settings panel "save" action).
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(s.state)
}

// ResetAll replaces categories and rules with the seeded defaults and removes the
// persisted file, so the next load starts from the built-in seed.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: remove state file: %w", err)
	}
	s.state = model.DefaultState()
	return nil
}

func (s *Store) mutateRule(id string, fn func(*model.Rule)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasID(id) {
		return ErrNotFound
	}

	next := s.state.Clone()
	rule := next.Rule(id)
	fn(&rule)
	next.Rules[id] = rule

	return s.commit(next)
}

// commit persists next and, only on success, makes it the live state. A
// failed write leaves the previous state fully intact.
func (s *Store) commit(next model.State) error {
	if err := s.persist(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) persist(state model.State) error {
	data, err := marshalState(state)
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create state dir: %w", err)
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".gomical-state-*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("store: rename temp file: %w", err)
	}
	return nil
}

func loadState(path string) model.State {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("state file unreadable, using defaults", "path", path, "reason", err.Error())
		}
		return model.DefaultState()
	}

	state, ok := decodeState(data)
	if !ok {
		log.Warn("state file malformed, using defaults", "path", path)
		return model.DefaultState()
	}
	return state
}

func toggleInt(xs []int, x int) []int {
	for i, v := range xs {
		if v == x {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return append(xs, x)
}
