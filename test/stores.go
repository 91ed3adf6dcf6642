package test

import (
	"errors"
	"sync"

	"github.com/chettriyuvraj/storage-heap/common"
)

var ErrInjected = errors.New("injected store fault")

// CountingStore counts every call that reaches the wrapped store.
type CountingStore struct {
	common.Store
	mu                      sync.Mutex
	gets, puts, dels, batch int
}

func NewCountingStore(store common.Store) *CountingStore {
	return &CountingStore{Store: store}
}

func (s *CountingStore) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.Store.Get(key)
}

func (s *CountingStore) Put(key, val []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.Store.Put(key, val)
}

func (s *CountingStore) Delete(key []byte) error {
	s.mu.Lock()
	s.dels++
	s.mu.Unlock()
	return s.Store.Delete(key)
}

/* A batch counts once, its ops are applied to the wrapped store directly */
func (s *CountingStore) WriteBatch(b *common.Batch) error {
	s.mu.Lock()
	s.batch++
	s.mu.Unlock()
	return common.WriteBatch(s.Store, b)
}

func (s *CountingStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func (s *CountingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts + s.dels
}

func (s *CountingStore) Batches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

func (s *CountingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets, s.puts, s.dels, s.batch = 0, 0, 0, 0
}

// FaultyStore fails the selected operations with ErrInjected while the
// corresponding flag is set.
type FaultyStore struct {
	common.Store
	FailGet, FailPut, FailDelete, FailBatch bool
}

func NewFaultyStore(store common.Store) *FaultyStore {
	return &FaultyStore{Store: store}
}

func (s *FaultyStore) Get(key []byte) ([]byte, error) {
	if s.FailGet {
		return nil, ErrInjected
	}
	return s.Store.Get(key)
}

func (s *FaultyStore) Put(key, val []byte) error {
	if s.FailPut {
		return ErrInjected
	}
	return s.Store.Put(key, val)
}

func (s *FaultyStore) Delete(key []byte) error {
	if s.FailDelete {
		return ErrInjected
	}
	return s.Store.Delete(key)
}

func (s *FaultyStore) WriteBatch(b *common.Batch) error {
	if s.FailBatch {
		return ErrInjected
	}
	return common.WriteBatch(s.Store, b)
}
