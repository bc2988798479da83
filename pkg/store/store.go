// Package store holds the in-memory cache of server-owned entities. It
// is the single source of truth for everything loaded into the client;
// the mutation engine is the only writer, everything else reads.
package store

import "sync"

// Entity is any server-owned record with a stable identifier.
type Entity interface {
	EntityID() string
}

// Collection names a group of entities of one type.
type Collection string

const (
	Projects  Collection = "projects"
	Tasks     Collection = "tasks"
	Documents Collection = "documents"
	Members   Collection = "members"
)

type collection struct {
	byID  map[string]Entity
	order []string
}

func newCollection() *collection {
	return &collection{byID: make(map[string]Entity)}
}

func (c *collection) indexOf(id string) int {
	for i, v := range c.order {
		if v == id {
			return i
		}
	}
	return -1
}

// Store is an id-addressable cache of entities with per-collection
// insertion order. It never touches the network.
type Store struct {
	mu          sync.RWMutex
	collections map[Collection]*collection
}

// New creates an empty store.
func New() *Store {
	return &Store{collections: make(map[Collection]*collection)}
}

func (s *Store) collection(name Collection) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = newCollection()
		s.collections[name] = c
	}
	return c
}

// Upsert inserts or replaces an entity by id. Replacing keeps the
// entity's position in insertion order; inserting appends. Idempotent.
func (s *Store) Upsert(name Collection, e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(name)
	id := e.EntityID()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = e
}

// Remove deletes an entity if present. Missing ids are a no-op:
// deletions may race with background reloads and must never error.
func (s *Store) Remove(name Collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(name)
	if _, ok := c.byID[id]; !ok {
		return
	}
	delete(c.byID, id)
	if i := c.indexOf(id); i >= 0 {
		c.order = append(c.order[:i], c.order[i+1:]...)
	}
}

// Replace swaps the entity stored under oldID for e, keeping its slot in
// insertion order. Used when a server-assigned id supersedes a
// client-generated placeholder. Falls back to Upsert when oldID is
// absent.
func (s *Store) Replace(name Collection, oldID string, e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(name)
	i := c.indexOf(oldID)
	if i < 0 {
		id := e.EntityID()
		if _, ok := c.byID[id]; !ok {
			c.order = append(c.order, id)
		}
		c.byID[id] = e
		return
	}
	delete(c.byID, oldID)
	c.order[i] = e.EntityID()
	c.byID[e.EntityID()] = e
}

// Get returns the entity with the given id, if present.
func (s *Store) Get(name Collection, id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	e, ok := c.byID[id]
	return e, ok
}

// List returns all entities in insertion order.
func (s *Store) List(name Collection) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	out := make([]Entity, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of entities in a collection.
func (s *Store) Len(name Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(c.order)
}

// ReplaceAll swaps a collection's contents for the given entities,
// preserving the given order. Used by full refresh loads.
func (s *Store) ReplaceAll(name Collection, entities []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newCollection()
	for _, e := range entities {
		id := e.EntityID()
		if _, ok := c.byID[id]; !ok {
			c.order = append(c.order, id)
		}
		c.byID[id] = e
	}
	s.collections[name] = c
}

// Snapshot captures one entity's pre-mutation state so a failed
// mutation can restore exactly what was there, including its position.
type Snapshot struct {
	Collection Collection
	ID         string
	Entity     Entity
	Present    bool
	Index      int
}

// Capture records the current state of one entity slot.
func (s *Store) Capture(name Collection, id string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Collection: name, ID: id}
	c, ok := s.collections[name]
	if !ok {
		return snap
	}
	if e, ok := c.byID[id]; ok {
		snap.Entity = e
		snap.Present = true
		snap.Index = c.indexOf(id)
	}
	return snap
}

// Restore puts an entity slot back to a captured state. Only the
// captured entity is touched; the rest of the store is left as-is.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(snap.Collection)

	// Drop whatever currently occupies the slot.
	if _, ok := c.byID[snap.ID]; ok {
		delete(c.byID, snap.ID)
		if i := c.indexOf(snap.ID); i >= 0 {
			c.order = append(c.order[:i], c.order[i+1:]...)
		}
	}
	if !snap.Present {
		return
	}

	i := snap.Index
	if i < 0 || i > len(c.order) {
		i = len(c.order)
	}
	c.order = append(c.order, "")
	copy(c.order[i+1:], c.order[i:])
	c.order[i] = snap.ID
	c.byID[snap.ID] = snap.Entity
}
