package cmd

import (
	"github.com/chettriyuvraj/storage-heap/binaryheap"
	"github.com/chettriyuvraj/storage-heap/codec"
	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/config"
	"github.com/chettriyuvraj/storage-heap/db"
	"github.com/chettriyuvraj/storage-heap/leveldbstore"
	"github.com/chettriyuvraj/storage-heap/memdb"
	"github.com/chettriyuvraj/storage-heap/redisstore"
	"github.com/chettriyuvraj/storage-heap/storagevec"
	"github.com/pkg/errors"
)

func openStore(cfg config.Config) (common.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memdb.NewMemDB(), func() error { return nil }, nil
	case config.StoreWAL:
		d, err := db.NewDB(db.NewDBConfig(cfg.WALLimit, false, cfg.Dir))
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	case config.StoreLevelDB:
		s, err := leveldbstore.Open(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := redisstore.Dial(cfg.RedisURL, "", 0, cfg.RedisTimeout)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, errors.Errorf("unknown store %q", cfg.Store)
}

func openHeap(cfg config.Config) (*binaryheap.Heap[int64], func() error, error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	vec, err := storagevec.Open(store, []byte(cfg.Prefix), codec.Ordered[int64](), storagevec.WithCacheSize(cfg.CacheSize))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return binaryheap.New[int64](vec), closeStore, nil
}
