package rig

import (
	"fmt"
	"sort"
	"sync"
)

// LoadFunc registers every model of a family into reg.
type LoadFunc func(reg *Registry) error

type family struct {
	name string
	load LoadFunc
}

var (
	familiesMu sync.RWMutex
	families   = map[Family]family{}
)

// RegisterFamily makes a backend family loadable by every registry.
// Families call it from init.
func RegisterFamily(f Family, name string, load LoadFunc) {
	familiesMu.Lock()
	defer familiesMu.Unlock()
	families[f] = family{name: name, load: load}
}

// FamilyName returns the registered name of f, or "" when f is unknown.
func FamilyName(f Family) string {
	familiesMu.RLock()
	defer familiesMu.RUnlock()
	return families[f].name
}

// Registry maps model identifiers to capability tables. Models are loaded
// lazily, one family at a time.
type Registry struct {
	mu       sync.RWMutex
	models   map[Model]*Caps
	dupCheck bool

	loadMu   sync.Mutex
	loaded   map[Family]bool
	families map[Family]family
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithoutDupCheck lets a later registration replace an earlier one.
func WithoutDupCheck() RegistryOption {
	return func(r *Registry) { r.dupCheck = false }
}

// WithFamily adds a family known only to this registry.
func WithFamily(f Family, name string, load LoadFunc) RegistryOption {
	return func(r *Registry) { r.families[f] = family{name: name, load: load} }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		models:   make(map[Model]*Caps),
		dupCheck: true,
		loaded:   make(map[Family]bool),
		families: make(map[Family]family),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register adds caps under caps.Model.
func (r *Registry) Register(caps *Caps) error {
	if caps == nil || caps.Model == ModelNone {
		return fmt.Errorf("%w: caps without a model", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[caps.Model]; exists && r.dupCheck {
		return fmt.Errorf("%w: %d", ErrDuplicateModel, caps.Model)
	}
	r.models[caps.Model] = caps
	return nil
}

// Unregister removes a model.
func (r *Registry) Unregister(model Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[model]; !exists {
		return fmt.Errorf("%w: model %d is not registered", ErrInvalidArgument, model)
	}
	delete(r.models, model)
	return nil
}

// Lookup returns the capability table of a registered model.
func (r *Registry) Lookup(model Model) (*Caps, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.models[model]
	return caps, ok
}

func (r *Registry) family(f Family) (family, bool) {
	if fam, ok := r.families[f]; ok {
		return fam, true
	}
	familiesMu.RLock()
	defer familiesMu.RUnlock()
	fam, ok := families[f]
	return fam, ok
}

// EnsureLoaded loads the family of model if the model is not registered yet.
func (r *Registry) EnsureLoaded(model Model) error {
	if _, ok := r.Lookup(model); ok {
		return nil
	}

	f := model.Family()
	fam, ok := r.family(f)
	if !ok {
		return fmt.Errorf("%w: no backend family %d for model %d", ErrBackendUnavailable, f, model)
	}

	loadErr := r.loadFamily(f, fam)

	if _, ok := r.Lookup(model); ok {
		return nil
	}
	if loadErr != nil {
		return fmt.Errorf("%w: family %s: %w", ErrBackendUnavailable, fam.name, loadErr)
	}
	return fmt.Errorf("%w: family %s has no model %d", ErrBackendUnavailable, fam.name, model)
}

// loadFamily runs a family's loader at most once per registry.
func (r *Registry) loadFamily(f Family, fam family) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	if r.loaded[f] {
		return nil
	}
	r.loaded[f] = true
	return fam.load(r)
}

// LoadAll loads every known family.
func (r *Registry) LoadAll() error {
	all := make(map[Family]family)
	familiesMu.RLock()
	for f, fam := range families {
		all[f] = fam
	}
	familiesMu.RUnlock()
	for f, fam := range r.families {
		all[f] = fam
	}

	var firstErr error
	for f, fam := range all {
		if err := r.loadFamily(f, fam); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("family %s: %w", fam.name, err)
		}
	}
	return firstErr
}

// Families returns the families this registry can load, in family order.
func (r *Registry) Families() []Family {
	seen := make(map[Family]bool)
	familiesMu.RLock()
	for f := range families {
		seen[f] = true
	}
	familiesMu.RUnlock()
	for f := range r.families {
		seen[f] = true
	}

	out := make([]Family, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FamilyName is like the package-level FamilyName but also knows the
// families added with WithFamily.
func (r *Registry) FamilyName(f Family) string {
	if fam, ok := r.families[f]; ok {
		return fam.name
	}
	return FamilyName(f)
}

// ForEach calls fn for every registered model in model order until fn
// returns false. fn may call back into the registry.
func (r *Registry) ForEach(fn func(caps *Caps) bool) {
	r.mu.RLock()
	models := make([]Model, 0, len(r.models))
	for m := range r.models {
		models = append(models, m)
	}
	snapshot := make(map[Model]*Caps, len(r.models))
	for m, c := range r.models {
		snapshot[m] = c
	}
	r.mu.RUnlock()

	for _, m := range sortedModels(models) {
		if !fn(snapshot[m]) {
			return
		}
	}
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Register adds caps to the default registry.
func Register(caps *Caps) error { return Default.Register(caps) }

// Lookup finds a model in the default registry.
func Lookup(model Model) (*Caps, bool) { return Default.Lookup(model) }

// EnsureLoaded loads the family of model into the default registry.
func EnsureLoaded(model Model) error { return Default.EnsureLoaded(model) }

// ForEach iterates the default registry.
func ForEach(fn func(caps *Caps) bool) { Default.ForEach(fn) }
