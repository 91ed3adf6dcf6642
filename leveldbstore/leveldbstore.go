package leveldbstore

import (
	"bytes"
	"errors"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrOpenLevelDB = errors.New("error opening leveldb")

/* Store backed by a goleveldb database, on disk or in memory */
type Store struct {
	db *leveldb.DB
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Join(ErrOpenLevelDB, err)
	}
	return &Store{db: db}, nil
}

/* Data lives only as long as the store, used for tests and scratch heaps */
func OpenMem() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Join(ErrOpenLevelDB, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key []byte) (value []byte, err error) {
	value, err = s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, common.ErrKeyDoesNotExist
	}
	return value, err
}

func (s *Store) Has(key []byte) (ret bool, err error) {
	return s.db.Has(key, nil)
}

func (s *Store) Put(key, value []byte) error {
	if len(key) == 0 {
		return common.ErrEmptyKey
	}
	return s.db.Put(key, value, nil)
}

/* goleveldb deletes silently, so existence is checked first to keep the Store contract */
func (s *Store) Delete(key []byte) error {
	has, err := s.db.Has(key, nil)
	if err != nil {
		return err
	}
	if !has {
		return common.ErrKeyDoesNotExist
	}
	return s.db.Delete(key, nil)
}

/* Commits all ops atomically and synced to disk */
func (s *Store) WriteBatch(b *common.Batch) error {
	batch := new(leveldb.Batch)
	for _, op := range b.Ops() {
		if op.Delete {
			batch.Delete(op.Key)
			continue
		}
		batch.Put(op.Key, op.Value)
	}
	return s.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (s *Store) RangeScan(start, limit []byte) (common.Iterator, error) {
	if limit != nil && bytes.Compare(start, limit) > 0 {
		return nil, common.ErrInvalidRange
	}
	return newIterator(s.db.NewIterator(inclusiveRange(start, limit), nil)), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

/* goleveldb limits are exclusive; every key <= limit sorts before limit+0x00 */
func inclusiveRange(start, limit []byte) *util.Range {
	r := &util.Range{Start: start}
	if limit != nil {
		r.Limit = append(bytes.Clone(limit), 0x00)
	}
	return r
}

/* Adapts goleveldb's unpositioned iterators to the positioned common.Iterator */
type Iterator struct {
	iter     iterator.Iterator
	hasEnded bool
	err      error
}

func newIterator(iter iterator.Iterator) *Iterator {
	it := &Iterator{iter: iter}
	if !iter.First() {
		it.end()
	}
	return it
}

/* Captures the iterator error before releasing it */
func (it *Iterator) end() {
	it.hasEnded = true
	it.err = it.iter.Error()
	it.iter.Release()
}

func (it *Iterator) Next() bool {
	if it.hasEnded {
		return false
	}
	if !it.iter.Next() {
		it.end()
		return false
	}
	return true
}

func (it *Iterator) Key() []byte {
	if it.hasEnded {
		return nil
	}
	return bytes.Clone(it.iter.Key())
}

func (it *Iterator) Value() []byte {
	if it.hasEnded {
		return nil
	}
	return bytes.Clone(it.iter.Value())
}

func (it *Iterator) Error() error {
	if it.hasEnded {
		return it.err
	}
	return it.iter.Error()
}
