// Package profile stores user display data keyed by user ID.
package profile

import (
	"context"
	"errors"
	"sync"
)

// Namespace prefixes every profile key.
const Namespace = "users"

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("profile: not found")

// Profile is what the app shows about a user.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// Store reads and upserts profiles.
type Store interface {
	Get(ctx context.Context, id string) (Profile, error)
	Put(ctx context.Context, p Profile) error
}

// Key is the storage key for id.
func Key(id string) string {
	return Namespace + ":" + id
}

// Memory is an in-process Store used by tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Get(ctx context.Context, id string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.data[Key(id)]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return fromFields(id, fields), nil
}

func (m *Memory) Put(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.PutFields(p.ID, toFields(p))
	return nil
}

// PutFields writes raw fields, merging with what is stored.
func (m *Memory) PutFields(id string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(id)
	if m.data[key] == nil {
		m.data[key] = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		m.data[key][k] = v
	}
}

func toFields(p Profile) map[string]string {
	return map[string]string{"name": p.Name, "email": p.Email}
}

// fromFields tolerates missing fields: an absent name is an empty Name.
func fromFields(id string, fields map[string]string) Profile {
	return Profile{ID: id, Name: fields["name"], Email: fields["email"]}
}
