package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/go-redis/redis/v8"
)

const DEFAULTTIMEOUT = 5 * time.Second

// Store keeps cells as plain redis string keys. It has no ordered scans,
// which is all a storage vector needs.
type Store struct {
	client  *redis.Client
	timeout time.Duration
}

func New(client *redis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DEFAULTTIMEOUT
	}
	return &Store{client: client, timeout: timeout}
}

// Dial connects to the redis server at addr and checks it answers.
func Dial(addr, password string, db int, timeout time.Duration) (*Store, error) {
	s := New(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), timeout)
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) Get(key []byte) (value []byte, err error) {
	ctx, cancel := s.ctx()
	defer cancel()
	value, err = s.client.Get(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrKeyDoesNotExist
	}
	return value, err
}

func (s *Store) Has(key []byte) (ret bool, err error) {
	ctx, cancel := s.ctx()
	defer cancel()
	n, err := s.client.Exists(ctx, string(key)).Result()
	return n > 0, err
}

func (s *Store) Put(key, value []byte) error {
	if len(key) == 0 {
		return common.ErrEmptyKey
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, string(key), value, 0).Err()
}

func (s *Store) Delete(key []byte) error {
	ctx, cancel := s.ctx()
	defer cancel()
	n, err := s.client.Del(ctx, string(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrKeyDoesNotExist
	}
	return nil
}

// WriteBatch sends every op inside one MULTI/EXEC transaction.
func (s *Store) WriteBatch(b *common.Batch) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range b.Ops() {
			if op.Delete {
				pipe.Del(ctx, string(op.Key))
				continue
			}
			pipe.Set(ctx, string(op.Key), op.Value, 0)
		}
		return nil
	})
	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}
