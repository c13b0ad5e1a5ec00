package usecase_test

import (
	"context"
	"sync"

	"watch-tracker/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockVideoResolver struct {
	mock.Mock
}

func (m *MockVideoResolver) Recognize(url string) bool {
	args := m.Called(url)
	return args.Bool(0)
}

func (m *MockVideoResolver) Resolve(ctx context.Context, url string) (*model.ResolvedVideo, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResolvedVideo), args.Error(1)
}

type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockKeyValueStore) Save(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKeyValueStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// mapStore is a map backed key-value store for round trip tests.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *mapStore) Close() error { return nil }

func (s *mapStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data[key])
}
