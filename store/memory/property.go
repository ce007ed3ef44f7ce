package memory

import (
	"context"
	"sync"

	"github.com/fox-one/pkg/property"
)

type propertyStore struct {
	mu     sync.RWMutex
	values map[string]property.Value
}

// NewPropertyStore in-memory property.Store for single process deployments
func NewPropertyStore() property.Store {
	return &propertyStore{values: map[string]property.Value{}}
}

func (s *propertyStore) Get(ctx context.Context, key string) (property.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[key], nil
}

func (s *propertyStore) Save(ctx context.Context, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = property.Parse(value)
	return nil
}

func (s *propertyStore) Expire(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *propertyStore) List(ctx context.Context) (map[string]property.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]property.Value, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}

	return values, nil
}
