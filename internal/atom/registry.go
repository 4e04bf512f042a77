package atom

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/run"
)

// Handler implements one atom. It receives the run context and its bound,
// already-resolved arguments, and returns the step's new data value. A
// handler may return cty.NilVal to leave the threaded value unchanged;
// view-producing handlers append to the context's view list and return the
// value they received.
type Handler func(ctx context.Context, rc *run.Context, args *Args) (cty.Value, error)

// DuplicateAtomError reports a second registration of the same (type,
// action) pair. It is a configuration error detected at startup.
type DuplicateAtomError struct {
	Type   string
	Action string
}

func (e *DuplicateAtomError) Error() string {
	return fmt.Sprintf("atom %s.%s already registered", e.Type, e.Action)
}

// ErrRegistryClosed is returned when registration is attempted after the
// registry has been sealed for execution.
var ErrRegistryClosed = errors.New("atom registry is sealed; registration must happen at startup")

// Entry couples a registered atom's spec with its handler.
type Entry struct {
	Spec    Spec
	Handler Handler
}

// Module is implemented by packages that contribute atoms to a registry.
type Module interface {
	Register(r *Registry)
}

// Registry maps (type, action) pairs to their entries. It is built once at
// process start, sealed before the first execution, and read-only after.
type Registry struct {
	mu     sync.Mutex
	sealed atomic.Bool
	atoms  map[string]map[string]*Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{atoms: make(map[string]map[string]*Entry)}
}

// Register adds an atom. It fails with a DuplicateAtomError when the (type,
// action) pair is taken and with ErrRegistryClosed after sealing.
func (r *Registry) Register(spec Spec, handler Handler) error {
	if r.sealed.Load() {
		return ErrRegistryClosed
	}
	if spec.Type == "" || spec.Action == "" {
		return fmt.Errorf("atom registration requires non-empty type and action, got %q.%q", spec.Type, spec.Action)
	}
	if handler == nil {
		return fmt.Errorf("atom %s.%s registered without a handler", spec.Type, spec.Action)
	}
	if err := validateSpec(&spec); err != nil {
		return fmt.Errorf("atom %s.%s: %w", spec.Type, spec.Action, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	actions, ok := r.atoms[spec.Type]
	if !ok {
		actions = make(map[string]*Entry)
		r.atoms[spec.Type] = actions
	}
	if _, exists := actions[spec.Action]; exists {
		return &DuplicateAtomError{Type: spec.Type, Action: spec.Action}
	}
	actions[spec.Action] = &Entry{Spec: spec, Handler: handler}
	return nil
}

// MustRegister is Register for startup wiring; a failed registration is a
// programmer error and panics.
func (r *Registry) MustRegister(spec Spec, handler Handler) {
	if err := r.Register(spec, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for (type, action).
func (r *Registry) Lookup(atomType, action string) (*Entry, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	actions, ok := r.atoms[atomType]
	if !ok {
		return nil, false
	}
	e, ok := actions[action]
	return e, ok
}

// ListAtoms returns every registered action grouped by type, sorted for
// stable output. Pipeline-authoring UIs consume this to populate pickers.
func (r *Registry) ListAtoms() map[string][]string {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	out := make(map[string][]string, len(r.atoms))
	for typ, actions := range r.atoms {
		names := make([]string, 0, len(actions))
		for name := range actions {
			names = append(names, name)
		}
		sort.Strings(names)
		out[typ] = names
	}
	return out
}

// Seal closes the registry for registration. Called once before the first
// execution; reads are lock-free afterwards.
func (r *Registry) Seal() {
	r.sealed.Store(true)
}

// Sealed reports whether the registry has been closed for registration.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

func validateSpec(spec *Spec) error {
	seen := make(map[string]struct{}, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == "" {
			return errors.New("parameter with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("parameter %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Kind == KindOneOf && len(p.Allowed) == 0 {
			return fmt.Errorf("one-of parameter %q has no allowed values", p.Name)
		}
		if p.Kind == KindOneOf && p.Default != cty.NilVal {
			ok := false
			for _, allowed := range p.Allowed {
				if p.Default.RawEquals(allowed) {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("one-of parameter %q defaults outside its allowed values", p.Name)
			}
		}
		if p.Kind != KindOneOf && p.Type == cty.NilType {
			return fmt.Errorf("parameter %q declared without a type", p.Name)
		}
	}
	return nil
}
