// File: store.go
// Title: Variable Store
// Description: Per-interpreter variable values and declared types,
//              kept in declaration-then-assignment order.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial store

package interpreter

import "github.com/msto63/dramatica/foundation/scene/ast"

// Variable is a named value in the store
type Variable struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Store holds the variables of one interpreter. It is never shared
// between executions and is not safe for concurrent use.
type Store struct {
	values map[string]Value
	types  map[string]ast.Type
	order  []string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		values: make(map[string]Value),
		types:  make(map[string]ast.Type),
	}
}

// Declare records the type of a variable and seeds its default value
func (s *Store) Declare(name string, t ast.Type) {
	s.types[name] = t
	s.Set(name, Default(t))
}

// Set stores a value, replacing any previous value and kind
func (s *Store) Set(name string, v Value) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = v
}

// Get returns the current value of a variable
func (s *Store) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Type returns the declared type of a variable
func (s *Store) Type(name string) (ast.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Variables returns all variables in declaration-then-assignment order
func (s *Store) Variables() []Variable {
	vars := make([]Variable, 0, len(s.order))
	for _, name := range s.order {
		vars = append(vars, Variable{Name: name, Value: s.values[name]})
	}
	return vars
}

// Len returns the number of stored variables
func (s *Store) Len() int {
	return len(s.order)
}
