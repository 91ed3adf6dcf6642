package binaryheap

import "github.com/chettriyuvraj/storage-heap/common"

// Iter walks the elements in storage order, which is heap order only at the
// root. Every element yielded costs one cell load, so bound large walks with
// Take. Any Push or Pop invalidates the iterator.
func (h *Heap[T]) Iter() common.ElemIterator[T] {
	return &iterator[T]{ElemIterator: h.elems.Iter(), h: h}
}

// IterMut is Iter with writable elements. Writing through them can break the
// heap order; keep the order or rebuild the heap.
func (h *Heap[T]) IterMut() common.ElemIterator[T] {
	return &iterator[T]{ElemIterator: h.elems.IterMut(), h: h}
}

/* Treats a missing element like every other heap operation does */
type iterator[T any] struct {
	common.ElemIterator[T]
	h *Heap[T]
}

func (it *iterator[T]) Value() *T {
	val := it.ElemIterator.Value()
	if val == nil {
		it.h.check(it.ElemIterator.Error())
	}
	return val
}

// Take collects up to n elements from it, stopping early without loading
// anything past the last one taken.
func Take[T any](it common.ElemIterator[T], n int) ([]T, error) {
	out := []T{}
	if n <= 0 {
		return out, nil
	}

	for val := it.Value(); val != nil; val = it.Value() {
		out = append(out, *val)
		if len(out) == n || !it.Next() {
			break
		}
	}
	return out, it.Error()
}
