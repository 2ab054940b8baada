// Package enum attaches names and human-readable descriptions to sets of
// tagged constant values.
//
// Example usage:
//
//	type Color int
//
//	const (
//		Red Color = iota
//		Green
//	)
//
//	var colors = enum.New(
//		enum.Entry[Color]{Value: Red, Name: "red", Description: "Bright red"},
//		enum.Entry[Color]{Value: Green, Name: "green"},
//	)
//
//	colors.Description(Red)   // "Bright red"
//	colors.Description(Green) // "green" (falls back to the name)
package enum

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a value or name is not part of a Set.
var ErrUnknownValue = errors.New("enum: unknown value")

// Entry describes a single member of a Set.
type Entry[T comparable] struct {
	Value       T
	Name        string
	Description string
}

// Set is an immutable, ordered collection of entries. It is safe for
// concurrent use.
type Set[T comparable] struct {
	entries []Entry[T]
	byValue map[T]int
	byName  map[string]int
}

// New builds a Set from entries in declaration order. New panics if a value
// or name appears more than once, since that is a programming error in the
// declaration.
func New[T comparable](entries ...Entry[T]) *Set[T] {
	s := &Set[T]{
		entries: make([]Entry[T], len(entries)),
		byValue: make(map[T]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	copy(s.entries, entries)
	for i, e := range s.entries {
		if _, dup := s.byValue[e.Value]; dup {
			panic(fmt.Sprintf("enum: duplicate value %v", e.Value))
		}
		if _, dup := s.byName[e.Name]; dup {
			panic(fmt.Sprintf("enum: duplicate name %q", e.Name))
		}
		s.byValue[e.Value] = i
		s.byName[e.Name] = i
	}
	return s
}

// Description returns the description of v, or its name when no
// description was declared.
func (s *Set[T]) Description(v T) (string, error) {
	i, ok := s.byValue[v]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownValue, v)
	}
	if d := s.entries[i].Description; d != "" {
		return d, nil
	}
	return s.entries[i].Name, nil
}

// Name returns the declared name of v.
func (s *Set[T]) Name(v T) (string, error) {
	i, ok := s.byValue[v]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownValue, v)
	}
	return s.entries[i].Name, nil
}

// Parse returns the value declared with the given name.
func (s *Set[T]) Parse(name string) (T, error) {
	i, ok := s.byName[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnknownValue, name)
	}
	return s.entries[i].Value, nil
}

// Contains reports whether v is a member of s.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.byValue[v]
	return ok
}

// Values returns all values in declaration order.
func (s *Set[T]) Values() []T {
	vs := make([]T, len(s.entries))
	for i, e := range s.entries {
		vs[i] = e.Value
	}
	return vs
}

// Names returns all names in declaration order.
func (s *Set[T]) Names() []string {
	ns := make([]string, len(s.entries))
	for i, e := range s.entries {
		ns[i] = e.Name
	}
	return ns
}
