package storagevec

import "github.com/chettriyuvraj/storage-heap/common"

// Iterator walks a Vec in index order. Each element is loaded on first use.
type Iterator[T any] struct {
	vec *Vec[T]
	idx uint32
	mut bool
	err error
}

func (it *Iterator[T]) Value() *T {
	if it.err != nil || it.idx >= it.vec.length {
		return nil
	}

	var val *T
	var err error
	if it.mut {
		val, err = it.vec.GetMut(it.idx)
	} else {
		val, err = it.vec.Get(it.idx)
	}
	if err != nil {
		it.err = err
		return nil
	}
	if val == nil {
		it.err = common.ErrCellMissing
	}

	return val
}

func (it *Iterator[T]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.idx < it.vec.length {
		it.idx++
	}
	return it.idx < it.vec.length
}

func (it *Iterator[T]) Error() error {
	return it.err
}

func (it *Iterator[T]) Reset() {
	it.idx = 0
	it.err = nil
}
