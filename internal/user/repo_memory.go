package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]string // id -> email
	nowFunc func() time.Time
}

func NewMemoryRepo() Repository {
	return &memoryRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[string]string),
		nowFunc: time.Now,
	}
}

func (m *memoryRepo) Register(_ context.Context, u *User) (RegisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[u.Email]; ok {
		return RegisterResult{Created: false}, nil
	}

	now := m.nowFunc().UTC()
	rec := cloneUser(u)
	rec.ID = uuid.NewString()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.byEmail[rec.Email] = rec
	m.byID[rec.ID] = rec.Email

	id := rec.ID
	return RegisterResult{Created: true, ID: &id}, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *memoryRepo) List(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) SetRole(_ context.Context, id string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u := m.byEmail[email]
	u.Role = role
	u.UpdatedAt = m.nowFunc().UTC()
	return nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, email string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		u.Profile[k] = v
	}
	u.UpdatedAt = m.nowFunc().UTC()
	return nil
}

func cloneUser(u *User) *User {
	c := *u
	c.Profile = make(map[string]any, len(u.Profile))
	for k, v := range u.Profile {
		c.Profile[k] = v
	}
	return &c
}
