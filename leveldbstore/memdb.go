package leveldbstore

import (
	"bytes"
	"errors"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
)

const DEFAULTMEMDBCAPACITY = 16

/* goleveldb's skiplist memdb as a common.DB, a drop-in for memdb.MemDB */
type MemDB struct {
	db *memdb.DB
}

func NewMemDB() *MemDB {
	return &MemDB{db: memdb.New(comparer.DefaultComparer, DEFAULTMEMDBCAPACITY)}
}

func (m *MemDB) Get(key []byte) (value []byte, err error) {
	value, err = m.db.Get(key)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, common.ErrKeyDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	return bytes.Clone(value), nil
}

func (m *MemDB) Has(key []byte) (ret bool, err error) {
	return m.db.Contains(key), nil
}

func (m *MemDB) Put(key, value []byte) error {
	if len(key) == 0 {
		return common.ErrEmptyKey
	}
	return m.db.Put(key, value)
}

func (m *MemDB) Delete(key []byte) error {
	if err := m.db.Delete(key); err != nil {
		if errors.Is(err, memdb.ErrNotFound) {
			return common.ErrKeyDoesNotExist
		}
		return err
	}
	return nil
}

func (m *MemDB) RangeScan(start, limit []byte) (common.Iterator, error) {
	if limit != nil && bytes.Compare(start, limit) > 0 {
		return nil, common.ErrInvalidRange
	}
	return newIterator(m.db.NewIterator(inclusiveRange(start, limit))), nil
}

/* Number of live keys */
func (m *MemDB) Len() int {
	return m.db.Len()
}
