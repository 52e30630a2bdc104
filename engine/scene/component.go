package scene

import (
	"sort"
	"sync"
)

// Entity identifies an object in a scene. Components are attached to entities
// through ComponentManagers.
type Entity uint64

// InvalidEntity is never returned by CreateEntity.
const InvalidEntity Entity = 0

// ComponentManager stores at most one component of type T per entity.
// Safe for concurrent use.
type ComponentManager[T any] struct {
	mu         *sync.RWMutex
	components map[Entity]T
}

// NewComponentManager creates an empty ComponentManager.
//
// Returns:
//   - *ComponentManager[T]: the new manager
func NewComponentManager[T any]() *ComponentManager[T] {
	return &ComponentManager[T]{
		mu:         &sync.RWMutex{},
		components: make(map[Entity]T),
	}
}

// Create attaches c to entity e, replacing any existing component.
//
// Parameters:
//   - e: the owning entity
//   - c: the component to attach
//
// Returns:
//   - T: the attached component
func (m *ComponentManager[T]) Create(e Entity, c T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[e] = c
	return c
}

// Get returns the component attached to e.
//
// Parameters:
//   - e: the entity to look up
//
// Returns:
//   - T: the component, or the zero value
//   - bool: true if e has a component
func (m *ComponentManager[T]) Get(e Entity) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[e]
	return c, ok
}

// Contains reports whether e has a component.
func (m *ComponentManager[T]) Contains(e Entity) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.components[e]
	return ok
}

// Remove detaches the component from e. Removing a missing component is a no-op.
func (m *ComponentManager[T]) Remove(e Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.components, e)
}

// Len returns the number of attached components.
func (m *ComponentManager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.components)
}

// Entities returns the entities that have a component, in ascending order.
func (m *ComponentManager[T]) Entities() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entity, 0, len(m.components))
	for e := range m.components {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
