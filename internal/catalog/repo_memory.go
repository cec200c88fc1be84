package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	colls map[Collection][]Document
}

func NewMemoryRepo() Repository {
	return &memoryRepo{colls: make(map[Collection][]Document)}
}

func (m *memoryRepo) Find(_ context.Context, coll Collection, f Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0)
	for _, d := range m.colls[coll] {
		if f.Email != "" && d.Owner() != f.Email {
			continue
		}
		out = append(out, cloneDoc(d))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryRepo) FindOne(_ context.Context, coll Collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.colls[coll] {
		if d["_id"] == id {
			return cloneDoc(d), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) Insert(_ context.Context, coll Collection, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	d := cloneDoc(doc)
	d["_id"] = id
	m.colls[coll] = append(m.colls[coll], d)
	return id, nil
}

func (m *memoryRepo) DeleteOwned(_ context.Context, coll Collection, id, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.colls[coll]
	for i, d := range docs {
		if d["_id"] == id && d.Owner() == email {
			m.colls[coll] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func cloneDoc(d Document) Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}
