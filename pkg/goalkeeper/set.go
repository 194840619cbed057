package goalkeeper

import (
	"context"
	"iter"
	"time"
)

// Set is an insertion-ordered collection of goals with unique labels.
// A Set is not safe for concurrent mutation.
type Set struct {
	goals    []*Goal
	labels   map[string]struct{}
	defaults []Option
}

// NewSet creates an empty set. opts apply to every goal created by Add.
func NewSet(opts ...Option) *Set {
	return &Set{
		labels:   make(map[string]struct{}),
		defaults: opts,
	}
}

// Add creates a goal from label and inserts it. It returns s for chaining.
func (s *Set) Add(label string, opts ...Option) *Set {
	all := make([]Option, 0, len(s.defaults)+len(opts))
	all = append(all, s.defaults...)
	all = append(all, opts...)
	s.Insert(NewGoal(label, all...))
	return s
}

// Insert appends g unless it is nil or an equal goal is present.
func (s *Set) Insert(g *Goal) bool {
	if g == nil {
		return false
	}
	if s.labels == nil {
		s.labels = make(map[string]struct{})
	}
	if _, dup := s.labels[g.label]; dup {
		return false
	}
	s.labels[g.label] = struct{}{}
	s.goals = append(s.goals, g)
	return true
}

// Push inserts each goal and returns how many were added.
func (s *Set) Push(goals ...*Goal) int {
	n := 0
	for _, g := range goals {
		if s.Insert(g) {
			n++
		}
	}
	return n
}

// Contains reports whether a goal equal to g is present.
func (s *Set) Contains(g *Goal) bool {
	if g == nil {
		return false
	}
	_, ok := s.labels[g.label]
	return ok
}

// Len returns the number of goals.
func (s *Set) Len() int { return len(s.goals) }

// At returns the i-th goal in insertion order. It panics if i is out of range.
func (s *Set) At(i int) *Goal { return s.goals[i] }

// Goals returns a copy of the members in insertion order.
func (s *Set) Goals() []*Goal {
	out := make([]*Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// Labels returns the member labels in insertion order.
func (s *Set) Labels() []string {
	out := make([]string, len(s.goals))
	for i, g := range s.goals {
		out[i] = g.label
	}
	return out
}

// All iterates the members in insertion order.
func (s *Set) All() iter.Seq2[int, *Goal] {
	return func(yield func(int, *Goal) bool) {
		for i, g := range s.goals {
			if !yield(i, g) {
				return
			}
		}
	}
}

// IsMet reports whether every member is met. An empty set is met.
func (s *Set) IsMet(ctx context.Context) (bool, error) {
	for _, g := range s.goals {
		met, err := g.IsMet(ctx)
		if err != nil {
			return false, err
		}
		if !met {
			return false, nil
		}
	}
	return true, nil
}

// Met returns a new set of the members currently met.
func (s *Set) Met(ctx context.Context) (*Set, error) {
	met, _, err := s.partition(ctx)
	return met, err
}

// Unmet returns a new set of the members not currently met.
func (s *Set) Unmet(ctx context.Context) (*Set, error) {
	_, unmet, err := s.partition(ctx)
	return unmet, err
}

// MetAt returns the latest completion time among the members. ok is false
// unless every member is met; an empty set has no completion time.
func (s *Set) MetAt(ctx context.Context) (at time.Time, ok bool, err error) {
	for _, g := range s.goals {
		t, met, err := g.MetAt(ctx)
		if err != nil {
			return time.Time{}, false, err
		}
		if !met {
			return time.Time{}, false, nil
		}
		if t.After(at) {
			at = t
		}
	}
	return at, len(s.goals) > 0, nil
}

// Clear clears every member, stopping at the first error.
func (s *Set) Clear(ctx context.Context) error {
	for _, g := range s.goals {
		if err := g.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) partition(ctx context.Context) (met, unmet *Set, err error) {
	met, unmet = s.subset(), s.subset()
	for _, g := range s.goals {
		ok, err := g.IsMet(ctx)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			met.Insert(g)
		} else {
			unmet.Insert(g)
		}
	}
	return met, unmet, nil
}

func (s *Set) subset() *Set {
	return NewSet(s.defaults...)
}
