package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/redmarble/samplecli/pkg/domain"
)

// Factory builds a capability on first resolution.
// It receives the provider so it can depend on other capabilities.
type Factory func(p *Provider) (any, error)

// Disposer is implemented by capabilities that release resources
// and need the invocation context to do so.
type Disposer interface {
	Close(ctx context.Context) error
}

type entry struct {
	instance any
	factory  Factory
	built    bool
}

// Registry maps capability types to instances or factories.
// Entries are additive until the Provider is first requested; after that the
// registry is frozen and further registrations fail with domain.ErrRegistryFrozen.
type Registry struct {
	mu       sync.Mutex
	entries  map[reflect.Type]*entry
	order    []reflect.Type
	created  []any
	provider *Provider

	closeOnce sync.Once
	closeErr  error
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]*entry),
	}
}

// Provide registers a singleton instance for capability T.
// If T is already registered, it is overwritten.
func Provide[T any](r *Registry, instance T) error {
	return r.add(reflect.TypeOf((*T)(nil)).Elem(), &entry{instance: instance, built: true})
}

// ProvideFactory registers a lazily built singleton for capability T.
func ProvideFactory[T any](r *Registry, fn func(p *Provider) (T, error)) error {
	return r.add(reflect.TypeOf((*T)(nil)).Elem(), &entry{
		factory: func(p *Provider) (any, error) { return fn(p) },
	})
}

func (r *Registry) add(key reflect.Type, e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.provider != nil {
		return fmt.Errorf("register %s: %w", key, domain.ErrRegistryFrozen)
	}
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = e
	return nil
}

// Has reports whether capability T has an entry.
func Has[T any](r *Registry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Provider returns the resolver for this registry, building it on the first call.
// The same Provider is returned for the rest of the registry's life.
func (r *Registry) Provider() *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.provider == nil {
		r.provider = &Provider{registry: r}
	}
	return r.provider
}

// Frozen reports whether the Provider has been built.
func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provider != nil
}

// Close releases every disposable instance, newest first.
// Instances implementing Disposer receive ctx; io.Closer is also honoured.
// Close is idempotent: later calls return the first result.
func (r *Registry) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		instances := make([]any, 0, len(r.order)+len(r.created))
		for _, key := range r.order {
			if e := r.entries[key]; e.factory == nil && e.instance != nil {
				instances = append(instances, e.instance)
			}
		}
		instances = append(instances, r.created...)
		r.mu.Unlock()

		var errs []error
		for i := len(instances) - 1; i >= 0; i-- {
			switch v := instances[i].(type) {
			case Disposer:
				errs = append(errs, v.Close(ctx))
			case io.Closer:
				errs = append(errs, v.Close())
			}
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}

// Provider resolves capabilities from a frozen Registry.
type Provider struct {
	registry *Registry
	mu       sync.Mutex
	building map[reflect.Type]bool
}

func (p *Provider) resolve(key reflect.Type) (any, error) {
	r := p.registry

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotRegistered)
	}
	if e.built {
		v := e.instance
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	p.mu.Lock()
	if p.building == nil {
		p.building = make(map[reflect.Type]bool)
	}
	if p.building[key] {
		p.mu.Unlock()
		return nil, fmt.Errorf("circular dependency while building %s", key)
	}
	p.building[key] = true
	p.mu.Unlock()

	v, err := e.factory(p)

	p.mu.Lock()
	delete(p.building, key)
	p.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("build %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e.built {
		return e.instance, nil
	}
	e.instance, e.built = v, true
	r.created = append(r.created, v)
	return v, nil
}

// Get resolves capability T, failing when it is not registered or cannot be built.
func Get[T any](p *Provider) (T, error) {
	var zero T
	v, err := p.resolve(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s resolved to %T", reflect.TypeOf((*T)(nil)).Elem(), v)
	}
	return t, nil
}

// Lookup resolves capability T, reporting false instead of an error.
func Lookup[T any](p *Provider) (T, bool) {
	v, err := Get[T](p)
	return v, err == nil
}
