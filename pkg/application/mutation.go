// Package application composes the entity store, the mutation engine,
// and the API client into the services the UI surfaces call.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/leadmate/leadmate/pkg/store"
)

// CommitResult is what a mutation's network request hands back on
// success. Commit, when set, runs against the store to finish the
// mutation (e.g. swapping a placeholder id for the server's). NewID,
// when set, tells the engine the entity now lives under a different id
// so queued mutations on the old id follow it.
type CommitResult struct {
	Commit func(s *store.Store)
	NewID  string
}

// Mutation describes one user-initiated change: an optimistic local
// apply and exactly one network request. The id the engine resolved for
// the entity is passed to both, so a mutation queued behind a create
// sees the server-assigned id rather than the placeholder.
type Mutation struct {
	Collection store.Collection
	ID         string
	Apply      func(s *store.Store, id string) error
	Request    func(ctx context.Context, id string) (CommitResult, error)

	// RequireExisting marks mutations that only make sense against an
	// entity the client still holds. When the entity is absent at
	// execution time — e.g. a delete queued behind a create that was
	// reverted — the local apply still runs but no request is issued,
	// so nothing on the wire ever references an id that no longer
	// exists.
	RequireExisting bool
}

// Notify is called after every store change the engine makes, letting
// live surfaces (board TUI, dashboard feed) re-derive their views.
type Notify func(collection store.Collection, id string)

/// Engine applies mutations optimistically: snapshot the entity, apply
// locally, fire the request once, then commit or restore. Mutations on
// the same entity are serialized; different entities proceed
// concurrently. There is no automatic retry — a mutation is attempted
// exactly once per user action, and failure hands the decision back to
// the caller.
type Engine struct {
	store *store.Store

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	aliases map[string]string

	notify Notify
}

// NewEngine creates an engine over the given store.
func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store:   s,
		locks:   make(map[string]*sync.Mutex),
		aliases: make(map[string]string),
	}
}

// SetNotify installs the change callback. Pass nil to disable.
func (e *Engine) SetNotify(n Notify) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notify = n
}

// Store returns the underlying entity store for read access.
func (e *Engine) Store() *store.Store { return e.store }

// Load replaces a collection's contents from a server fetch. Refresh
// loads go through the engine so every store write shares one door and
// one notification path.
func (e *Engine) Load(collection store.Collection, entities []store.Entity) {
	e.store.ReplaceAll(collection, entities)
	e.emit(collection, "")
}

// Ingest upserts server-confirmed records, e.g. a bulk-generation
// result. Not optimistic: the records already exist by the time they
// arrive here.
func (e *Engine) Ingest(collection store.Collection, entities ...store.Entity) {
	for _, ent := range entities {
		e.store.Upsert(collection, ent)
	}
	e.emit(collection, "")
}

// resolve follows placeholder-to-server id aliases.
func (e *Engine) resolve(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		next, ok := e.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (e *Engine) lockFor(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

func (e *Engine) recordAlias(oldID, newID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aliases[oldID] = newID
}

func (e *Engine) emit(collection store.Collection, id string) {
	e.mu.Lock()
	n := e.notify
	e.mu.Unlock()
	if n != nil {
		n(collection, id)
	}
}

// Do runs one mutation to completion. On request failure the entity is
// restored to exactly its pre-mutation state — value, presence, and
// position — and the error is returned for the caller to surface. The
// rest of the store is never touched by a revert.
func (e *Engine) Do(ctx context.Context, m Mutation) error {
	id := e.resolve(m.ID)
	for {
		l := e.lockFor(string(m.Collection) + "/" + id)
		l.Lock()
		// A create that finished while we waited may have moved the
		// entity to its server id; chase the alias under the new lock.
		if resolved := e.resolve(id); resolved != id {
			l.Unlock()
			id = resolved
			continue
		}
		defer l.Unlock()
		break
	}

	snap := e.store.Capture(m.Collection, id)

	if err := m.Apply(e.store, id); err != nil {
		return fmt.Errorf("apply %s/%s: %w", m.Collection, id, err)
	}
	e.emit(m.Collection, id)

	if m.RequireExisting && !snap.Present {
		return nil
	}

	result, err := m.Request(ctx, id)
	if err != nil {
		e.store.Restore(snap)
		e.emit(m.Collection, id)
		return fmt.Errorf("%s/%s reverted: %w", m.Collection, id, err)
	}

	if result.Commit != nil {
		result.Commit(e.store)
	}
	if result.NewID != "" && result.NewID != id {
		e.recordAlias(id, result.NewID)
	}
	e.emit(m.Collection, id)
	return nil
}
