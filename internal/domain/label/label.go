// Package label provides the fixed, ordered label sequence shown by the rotating label.
package label

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrEmptySet is returned when a label set would have no labels.
var ErrEmptySet = errors.New("label set must not be empty")

// Set is an immutable, non-empty ordered sequence of display strings.
type Set struct {
	labels []string
}

// New creates a label set. An empty input is rejected.
func New(labels ...string) (Set, error) {
	if len(labels) == 0 {
		return Set{}, ErrEmptySet
	}
	cp := make([]string, len(labels))
	copy(cp, labels)
	return Set{labels: cp}, nil
}

// MustNew is like New but panics on an empty input.
func MustNew(labels ...string) Set {
	s, err := New(labels...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of labels.
func (s Set) Len() int {
	return len(s.labels)
}

// IsZero reports whether the set was never constructed through New.
func (s Set) IsZero() bool {
	return len(s.labels) == 0
}

// Wrap maps any index onto [0, Len()).
func (s Set) Wrap(i int) int {
	n := len(s.labels)
	return ((i % n) + n) % n
}

// At returns the label at index i modulo the set length.
func (s Set) At(i int) string {
	return s.labels[s.Wrap(i)]
}

// Labels returns a copy of the labels.
func (s Set) Labels() []string {
	cp := make([]string, len(s.labels))
	copy(cp, s.labels)
	return cp
}

// Contains reports whether label is part of the set.
func (s Set) Contains(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// IndexAt returns the index displayed after elapsed time when the label
// advances every period, starting at index 0.
func (s Set) IndexAt(elapsed, period time.Duration) int {
	if period <= 0 || elapsed < 0 {
		return 0
	}
	return s.Wrap(int(elapsed / period))
}
