// Package binaryheap is a max-heap whose elements live in a Vector, normally a
// storagevec.Vec, so a push or pop only loads the O(log n) cells on one
// root-to-leaf path.
//
// A Heap is not safe for concurrent use, and no two heaps may share a vector.
package binaryheap

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/chettriyuvraj/storage-heap/common"
)

// Vector is the positional storage a heap needs. Pointers returned by Get and
// First are valid until the next call on the vector.
type Vector[T any] interface {
	Push(value T) error
	Get(i uint32) (*T, error)
	First() (*T, error)
	Swap(a, b uint32) error
	SwapRemove(i uint32) (removed T, ok bool, err error)
	Len() uint32
	IsEmpty() bool
	Iter() common.ElemIterator[T]
	IterMut() common.ElemIterator[T]
}

type flusher interface {
	Flush() error
}

type Heap[T any] struct {
	elems   Vector[T]
	compare func(a, b T) int
}

// New wraps elems, which must be empty or already in heap order, for example
// a vector reopened after a flush. elems is not touched.
func New[T cmp.Ordered](elems Vector[T]) *Heap[T] {
	return NewFunc(elems, cmp.Compare[T])
}

// NewFunc is New with a custom order; compare returns a negative number when
// a < b, zero when equal, and a positive number when a > b.
func NewFunc[T any](elems Vector[T], compare func(a, b T) int) *Heap[T] {
	return &Heap[T]{elems: elems, compare: compare}
}

func (h *Heap[T]) Len() uint32 {
	return h.elems.Len()
}

func (h *Heap[T]) IsEmpty() bool {
	return h.elems.IsEmpty()
}

// Peek returns the maximum, nil if the heap is empty.
func (h *Heap[T]) Peek() (*T, error) {
	top, err := h.elems.First()
	if err != nil {
		return nil, h.check(err)
	}
	if top == nil && !h.elems.IsEmpty() {
		h.missing(0)
	}
	return top, nil
}

func (h *Heap[T]) Push(value T) error {
	if err := h.elems.Push(value); err != nil {
		return h.check(err)
	}
	return h.siftUp(h.elems.Len() - 1)
}

// Pop removes and returns the maximum; ok is false if the heap is empty. If
// restoring the order fails after the removal, the removed value is returned
// along with the error and the vector should not be flushed.
func (h *Heap[T]) Pop() (top T, ok bool, err error) {
	top, ok, err = h.elems.SwapRemove(0)
	if err != nil {
		return top, false, h.check(err)
	}
	if !ok {
		return top, false, nil
	}

	if h.elems.Len() > 1 {
		if err := h.siftDown(0); err != nil {
			return top, true, err
		}
	}
	return top, true, nil
}

// Flush commits the vector if it buffers writes.
func (h *Heap[T]) Flush() error {
	if f, ok := h.elems.(flusher); ok {
		return f.Flush()
	}
	return nil
}

/* The root has no parent, so a push into an empty heap sifts nothing */
func (h *Heap[T]) siftUp(i uint32) error {
	for i > 0 {
		parent := (i - 1) / 2

		cur, err := h.at(i)
		if err != nil {
			return err
		}
		par, err := h.at(parent)
		if err != nil {
			return err
		}
		if h.compare(cur, par) <= 0 {
			return nil
		}

		if err := h.elems.Swap(i, parent); err != nil {
			return h.check(err)
		}
		i = parent
	}
	return nil
}

/* Children are computed in uint64 since 2i+2 overflows uint32 near the maximum length */
func (h *Heap[T]) siftDown(i uint32) error {
	n := uint64(h.elems.Len())

	for {
		left := 2*uint64(i) + 1
		if left >= n {
			return nil
		}

		largest := uint32(left)
		largestVal, err := h.at(largest)
		if err != nil {
			return err
		}
		if right := left + 1; right < n {
			rightVal, err := h.at(uint32(right))
			if err != nil {
				return err
			}
			if h.compare(rightVal, largestVal) >= 0 {
				largest, largestVal = uint32(right), rightVal
			}
		}

		cur, err := h.at(i)
		if err != nil {
			return err
		}
		if h.compare(largestVal, cur) <= 0 {
			return nil
		}

		if err := h.elems.Swap(i, largest); err != nil {
			return h.check(err)
		}
		i = largest
	}
}

/* Copies the element out, the vector's pointer does not survive the next load */
func (h *Heap[T]) at(i uint32) (T, error) {
	val, err := h.elems.Get(i)
	if err != nil {
		var zero T
		return zero, h.check(err)
	}
	if val == nil {
		h.missing(i)
	}
	return *val, nil
}

/* A missing element inside the length is a broken heap, not an error to hand back */
func (h *Heap[T]) check(err error) error {
	if errors.Is(err, common.ErrCellMissing) {
		panic(fmt.Sprintf("binaryheap: %v (len %d)", err, h.elems.Len()))
	}
	return err
}

func (h *Heap[T]) missing(i uint32) {
	panic(fmt.Sprintf("binaryheap: no element at occupied index %d (len %d)", i, h.elems.Len()))
}
