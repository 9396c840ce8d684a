package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. Transactions take the
// store-wide lock and stage writes until fn returns nil.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]map[string]any)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(collection, q, nil)
}

func (s *MemoryStore) listLocked(collection string, q Query, staged map[docKey]*stagedWrite) ([]*Document, error) {
	docs := make([]*Document, 0, len(s.docs[collection]))
	for id, data := range s.docs[collection] {
		if w, ok := staged[docKey{collection, id}]; ok {
			if w.deleted {
				continue
			}
			data = w.data
		}
		docs = append(docs, &Document{ID: id, Data: copyMap(data)})
	}
	for key, w := range staged {
		if key.collection != collection || w.deleted {
			continue
		}
		if _, existed := s.docs[collection][key.id]; existed {
			continue
		}
		docs = append(docs, &Document{ID: key.id, Data: copyMap(w.data)})
	}
	return selectDocuments(docs, q)
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Set(ctx, collection, id, data)
	})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, updates ...Update) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Update(ctx, collection, id, updates...)
	})
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Delete(ctx, collection, id)
	})
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[docKey]*stagedWrite)}
	err := fn(ctx, tx)
	tx.done = true
	if err != nil {
		return err
	}
	for key, w := range tx.staged {
		if w.deleted {
			delete(s.docs[key.collection], key.id)
			continue
		}
		if s.docs[key.collection] == nil {
			s.docs[key.collection] = make(map[string]map[string]any)
		}
		s.docs[key.collection][key.id] = w.data
	}
	return nil
}

type docKey struct {
	collection string
	id         string
}

type stagedWrite struct {
	data    map[string]any
	deleted bool
}

type memoryTx struct {
	store  *MemoryStore
	staged map[docKey]*stagedWrite
	done   bool
}

func (t *memoryTx) lookup(collection, id string) (map[string]any, bool) {
	if w, ok := t.staged[docKey{collection, id}]; ok {
		if w.deleted {
			return nil, false
		}
		return w.data, true
	}
	data, ok := t.store.docs[collection][id]
	return data, ok
}

func (t *memoryTx) check(collection, id string) error {
	if t.done {
		return ErrTxAlreadyEnded
	}
	if err := validatePath(collection); err != nil {
		return err
	}
	return validateID(id)
}

func (t *memoryTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := t.check(collection, id); err != nil {
		return nil, err
	}
	data, ok := t.lookup(collection, id)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (t *memoryTx) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if t.done {
		return nil, ErrTxAlreadyEnded
	}
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	return t.store.listLocked(collection, q, t.staged)
}

func (t *memoryTx) Set(ctx context.Context, collection, id string, data any) error {
	if err := t.check(collection, id); err != nil {
		return err
	}
	m, err := toMap(data)
	if err != nil {
		return err
	}
	t.staged[docKey{collection, id}] = &stagedWrite{data: m}
	return nil
}

func (t *memoryTx) Update(ctx context.Context, collection, id string, updates ...Update) error {
	if err := t.check(collection, id); err != nil {
		return err
	}
	current, ok := t.lookup(collection, id)
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	next := copyMap(current)
	if err := applyUpdates(next, updates); err != nil {
		return err
	}
	t.staged[docKey{collection, id}] = &stagedWrite{data: next}
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, collection, id string) error {
	if err := t.check(collection, id); err != nil {
		return err
	}
	t.staged[docKey{collection, id}] = &stagedWrite{deleted: true}
	return nil
}
