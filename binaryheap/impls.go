package binaryheap

import (
	"cmp"

	"github.com/chettriyuvraj/storage-heap/codec"
	"github.com/chettriyuvraj/storage-heap/memdb"
	"github.com/chettriyuvraj/storage-heap/storagevec"
)

const DEFAULTPREFIX = "heap"

// Default returns an empty heap over a fresh in-memory store.
func Default[T cmp.Ordered]() *Heap[T] {
	return New[T](storagevec.New(memdb.NewMemDB(), []byte(DEFAULTPREFIX), codec.Ordered[T]()))
}

// From pushes items into a heap over elems in order.
func From[T cmp.Ordered](elems Vector[T], items ...T) (*Heap[T], error) {
	return FromFunc(elems, cmp.Compare[T], items...)
}

func FromFunc[T any](elems Vector[T], compare func(a, b T) int, items ...T) (*Heap[T], error) {
	h := NewFunc(elems, compare)
	if err := h.Extend(items...); err != nil {
		return nil, err
	}
	return h, nil
}

// Extend pushes items in order and stops at the first error; items before it
// stay pushed.
func (h *Heap[T]) Extend(items ...T) error {
	for _, item := range items {
		if err := h.Push(item); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether both heaps hold equal elements at every index. The
// comparison follows storage order, so heaps with the same elements pushed in
// different orders may differ.
func (h *Heap[T]) Equal(other *Heap[T]) (bool, error) {
	if h.Len() != other.Len() {
		return false, nil
	}

	for i := uint32(0); i < h.Len(); i++ {
		x, err := h.at(i)
		if err != nil {
			return false, err
		}
		y, err := other.at(i)
		if err != nil {
			return false, err
		}
		if h.compare(x, y) != 0 {
			return false, nil
		}
	}
	return true, nil
}
