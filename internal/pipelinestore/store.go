// Package pipelinestore provides a thread-safe, in-memory collection of
// parsed pipeline definitions keyed by name. The CLI fills it from source
// files at startup; concurrent runs read from it afterwards. Definitions
// are immutable, so handing the same *ast.Pipeline to several runs is safe.
package pipelinestore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/analytica/atomflow/internal/ast"
)

// Store holds named pipeline definitions behind an RWMutex: writes happen
// while loading sources, reads dominate afterwards.
type Store struct {
	mu        sync.RWMutex
	pipelines map[string]*ast.Pipeline
}

// New creates an empty store.
func New() *Store {
	return &Store{pipelines: make(map[string]*ast.Pipeline)}
}

// Put adds a definition under its name. The empty name holds the anonymous
// pipeline of a single-chain source. Storing a name twice is an error: two
// files defining the same pipeline is a configuration mistake, not a
// last-writer-wins race.
func (s *Store) Put(def *ast.Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pipelines[def.Name]; exists {
		if def.Name == "" {
			return fmt.Errorf("more than one anonymous pipeline loaded")
		}
		return fmt.Errorf("pipeline %q already loaded", def.Name)
	}
	s.pipelines[def.Name] = def
	return nil
}

// Get returns the definition stored under name.
func (s *Store) Get(name string) (*ast.Pipeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.pipelines[name]
	return def, ok
}

// Names returns the stored pipeline names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.pipelines))
	for name := range s.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored definitions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pipelines)
}

// Single returns the only stored definition. It is the lookup used when the
// caller names no pipeline: unambiguous for one definition, an error for
// zero or several.
func (s *Store) Single() (*ast.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch len(s.pipelines) {
	case 0:
		return nil, fmt.Errorf("no pipelines loaded")
	case 1:
		for _, def := range s.pipelines {
			return def, nil
		}
	}
	return nil, fmt.Errorf("several pipelines loaded (%d); select one by name", len(s.pipelines))
}
