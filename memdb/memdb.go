package memdb

import (
	"bytes"
	"errors"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/skiplist"
)

const (
	P        = 0.25
	MAXLEVEL = 12
)

type MemDB struct {
	skiplist.SkipList
	size int /* Sum of sizes of the k-v pairs */
}

type MemDBIterator struct {
	*MemDB
	startKey, limitKey []byte
	curNode            *skiplist.Node
	hasEnded           bool
	err                error
}

func (db *MemDB) String() string {
	return db.SkipList.String()
}

func (db *MemDB) Size() int {
	return db.size
}

func NewMemDB() *MemDB {
	return &MemDB{SkipList: *skiplist.NewSkipList(P, MAXLEVEL)}
}

func (db *MemDB) Get(key []byte) (val []byte, err error) {
	node := db.Search(key)
	if node == nil {
		return nil, common.ErrKeyDoesNotExist
	}
	return node.Val(), nil
}

func (db *MemDB) Has(key []byte) (ret bool, err error) {
	return db.Search(key) != nil, nil
}

/* Note: Not allowing empty keys; key and val are copied so callers may reuse their buffers */
func (db *MemDB) Put(key, val []byte) error {
	if len(key) == 0 {
		return common.ErrEmptyKey
	}

	prevVal, err := db.Get(key)
	keyAlreadyExists := true
	if err != nil {
		if !errors.Is(err, common.ErrKeyDoesNotExist) {
			return err
		}
		keyAlreadyExists = false
	}

	k, v := bytes.Clone(key), bytes.Clone(val)
	if err := db.Insert(k, v); err != nil {
		return err
	}

	/* Modify db size depending on whether key already existed or not */
	if keyAlreadyExists {
		db.size += len(val) - len(prevVal)
	} else {
		db.size += len(key) + len(val)
	}

	return nil
}

func (db *MemDB) Delete(key []byte) error {
	val, err := db.Get(key)
	if err != nil {
		return err
	}

	/* Not using embedded skiplist method directly as it has the same name as the db method */
	if err := db.SkipList.Delete(key); err != nil {
		if errors.Is(err, skiplist.ErrKeyDoesNotExist) {
			return common.ErrKeyDoesNotExist
		}
		return err
	}

	db.size -= len(key) + len(val)
	return nil
}

func (db *MemDB) RangeScan(start, limit []byte) (common.Iterator, error) {
	iter := NewMemDBIterator(db, start, limit)
	return iter, iter.Error()
}

func (db *MemDB) FullScan() (common.Iterator, error) {
	iter := NewMemDBIterator(db, db.FirstKey(), nil)
	return iter, iter.Error()
}

/* Note: limitKey -> nil indicates scan till end of range */
func NewMemDBIterator(db *MemDB, startKey, limitKey []byte) *MemDBIterator {
	iter := MemDBIterator{MemDB: db, startKey: startKey, limitKey: limitKey}

	if limitKey != nil && bytes.Compare(startKey, limitKey) > 0 {
		iter.err = common.ErrInvalidRange
		iter.hasEnded = true
		return &iter
	}

	firstNode := db.SearchClosest(startKey)
	if firstNode == nil || iter.pastLimit(firstNode) {
		iter.hasEnded = true
	} else {
		iter.curNode = firstNode
	}

	return &iter
}

func (iter *MemDBIterator) pastLimit(node *skiplist.Node) bool {
	return iter.limitKey != nil && bytes.Compare(node.Key(), iter.limitKey) > 0
}

func (iter *MemDBIterator) Next() bool {
	if iter.hasEnded {
		return false
	}

	iter.curNode = iter.curNode.GetAdjacent()
	if iter.curNode == nil || iter.pastLimit(iter.curNode) {
		iter.curNode = nil
		iter.hasEnded = true
		return false
	}

	return true
}

func (iter *MemDBIterator) Key() []byte {
	if iter.hasEnded || iter.curNode == nil {
		return nil
	}
	return iter.curNode.Key()
}

func (iter *MemDBIterator) Value() []byte {
	if iter.hasEnded || iter.curNode == nil {
		return nil
	}
	return iter.curNode.Val()
}

func (iter *MemDBIterator) Error() error {
	return iter.err
}
