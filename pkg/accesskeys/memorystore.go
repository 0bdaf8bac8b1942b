package accesskeys

import (
	"context"
)

var _ Provider = &MemoryStore{}

type MemoryStore struct {
	keys map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys: make(map[string]string),
	}
}

func (m *MemoryStore) Write(tenant, key string) error {
	m.keys[tenant] = key
	return nil
}

func (m *MemoryStore) AccessKeyForTenant(_ context.Context, tenant string) (string, error) {
	key, ok := m.keys[tenant]
	if !ok {
		return "", ErrNoAccessKey
	}
	return key, nil
}
