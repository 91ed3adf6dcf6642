package common

// Store is the minimal key-value surface a storage vector needs: one key per cell.
type Store interface {
	// Get gets the value for the given key. It returns ErrKeyDoesNotExist
	// if the store does not contain the key.
	Get(key []byte) (value []byte, err error)

	// Has returns true if the store contains the given key.
	Has(key []byte) (ret bool, err error)

	// Put sets the value for the given key, overwriting any previous value.
	Put(key, value []byte) error

	// Delete deletes the value for the given key. It returns
	// ErrKeyDoesNotExist if the key is not present.
	Delete(key []byte) error
}

// DB is a Store that can also be scanned in key order.
type DB interface {
	Store

	// RangeScan returns an Iterator for scanning through all key-value pairs
	// in [start, limit], ordered by key ascending. A nil limit scans to the end.
	RangeScan(start, limit []byte) (Iterator, error)
}

/*
Iterator is positioned on its first record when returned:
- Key/Value return the current record, nil once exhausted
- Next moves to the following record and reports whether one is current
*/
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
}

/*
ElemIterator walks decoded elements in index order, positioned on the first one:
- Value returns the current element, nil once exhausted or after a failed load
- Next moves to the following element and reports whether one is current
- Reset rewinds to the first element
*/
type ElemIterator[T any] interface {
	Next() bool
	Value() *T
	Error() error
	Reset()
}
