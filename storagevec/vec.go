// Package storagevec is a positional container whose elements live one per
// cell in a key-value store and are loaded only when touched.
//
// Layout under a prefix P:
//
//	P/len          uint32 big-endian element count
//	P/c/<uint32>   one encoded element, index big-endian
//
// Touched cells are cached decoded in a bounded LRU. The store is written
// only by Flush, which commits every changed cell and the length as a single
// batch; until then the stored vector is the one of the last Flush. Changed
// cells evicted from the LRU are held aside until that Flush, so memory grows
// with the cells changed since it.
package storagevec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chettriyuvraj/storage-heap/codec"
	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULTCACHESIZE = 256
	MINCACHESIZE     = 2 /* Swap holds two cells at once */

	cellVersion = byte(0x01)
)

var ErrVecFull = errors.New("vector reached its maximum length")
var ErrCorruptLength = errors.New("corrupt length cell")
var ErrUnknownCellVersion = errors.New("unknown cell version")

type cell[T any] struct {
	value   T
	present bool /* false once the slot is vacated, Flush deletes the key */
	dirty   bool
}

type Vec[T any] struct {
	store    common.Store
	prefix   []byte
	lenKey   []byte
	codec    codec.Codec[T]
	length   uint32
	lenDirty bool
	cache    *lru.Cache[uint32, *cell[T]]
	pending  map[uint32]*cell[T] /* Dirty cells evicted from the cache, written by Flush */
	logger   *logrus.Entry
}

type options struct {
	cacheSize int
}

type Option func(*options)

// WithCacheSize bounds how many decoded cells stay in memory.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// New returns an empty vector under prefix without touching the store.
// Anything already stored under prefix is overwritten as indices are reused.
func New[T any](store common.Store, prefix []byte, c codec.Codec[T], opts ...Option) *Vec[T] {
	o := options{cacheSize: DEFAULTCACHESIZE}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize < MINCACHESIZE {
		o.cacheSize = MINCACHESIZE
	}

	v := &Vec[T]{
		store:   store,
		prefix:  bytes.Clone(prefix),
		lenKey:  append(bytes.Clone(prefix), "/len"...),
		codec:   c,
		pending: map[uint32]*cell[T]{},
		logger:  logger.Default().WithField("vec", string(prefix)),
	}

	/* Only errors on a non-positive size, which is ruled out above */
	cache, err := lru.NewWithEvict[uint32, *cell[T]](o.cacheSize, v.onEvict)
	if err != nil {
		panic(fmt.Sprintf("storagevec: creating cell cache: %v", err))
	}
	v.cache = cache

	return v
}

// Open attaches to a vector previously flushed under prefix. Only the length
// cell is read; element cells load on first access.
func Open[T any](store common.Store, prefix []byte, c codec.Codec[T], opts ...Option) (*Vec[T], error) {
	v := New(store, prefix, c, opts...)

	data, err := store.Get(v.lenKey)
	if err != nil {
		if errors.Is(err, common.ErrKeyDoesNotExist) {
			return v, nil
		}
		return nil, err
	}
	if len(data) != 4 {
		return nil, ErrCorruptLength
	}
	v.length = binary.BigEndian.Uint32(data)

	return v, nil
}

func (v *Vec[T]) Len() uint32 {
	return v.length
}

func (v *Vec[T]) IsEmpty() bool {
	return v.length == 0
}

func (v *Vec[T]) cellKey(i uint32) []byte {
	key := make([]byte, 0, len(v.prefix)+3+4)
	key = append(key, v.prefix...)
	key = append(key, "/c/"...)
	return binary.BigEndian.AppendUint32(key, i)
}

func (v *Vec[T]) encodeCell(value T) ([]byte, error) {
	data, err := v.codec.Encode(value)
	if err != nil {
		return nil, err
	}
	return append([]byte{cellVersion}, data...), nil
}

func (v *Vec[T]) decodeCell(data []byte) (T, error) {
	if len(data) == 0 || data[0] != cellVersion {
		var zero T
		return zero, ErrUnknownCellVersion
	}
	return v.codec.Decode(data[1:])
}

/* Cache first, then evicted dirty cells, then the store */
func (v *Vec[T]) loadCell(i uint32) (*cell[T], error) {
	if c, ok := v.cache.Get(i); ok {
		return c, nil
	}
	if c, ok := v.pending[i]; ok {
		v.put(i, c)
		return c, nil
	}

	c := &cell[T]{}
	data, err := v.store.Get(v.cellKey(i))
	switch {
	case errors.Is(err, common.ErrKeyDoesNotExist):
	case err != nil:
		return nil, err
	default:
		value, err := v.decodeCell(data)
		if err != nil {
			return nil, err
		}
		c.value, c.present = value, true
	}

	v.put(i, c)
	return c, nil
}

func (v *Vec[T]) put(i uint32, c *cell[T]) {
	delete(v.pending, i)
	v.cache.Add(i, c)
}

/* Dirty cells leave the cache for the overlay, the store only changes in Flush */
func (v *Vec[T]) onEvict(i uint32, c *cell[T]) {
	if c.dirty {
		v.pending[i] = c
	}
}

/* In range: nil pointer means the cell is missing, which the caller decides how to treat */
func (v *Vec[T]) get(i uint32, mut bool) (*T, error) {
	if i >= v.length {
		return nil, nil
	}
	c, err := v.loadCell(i)
	if err != nil {
		return nil, err
	}
	if !c.present {
		return nil, nil
	}
	if mut {
		c.dirty = true
	}
	return &c.value, nil
}

// Get returns the element at i, nil if i is out of range. The pointer is
// valid until the next operation on the vector.
func (v *Vec[T]) Get(i uint32) (*T, error) {
	return v.get(i, false)
}

// GetMut is Get for callers that write through the pointer before the next
// operation on the vector.
func (v *Vec[T]) GetMut(i uint32) (*T, error) {
	return v.get(i, true)
}

func (v *Vec[T]) First() (*T, error) {
	return v.Get(0)
}

func (v *Vec[T]) Push(value T) error {
	if v.length == math.MaxUint32 {
		return ErrVecFull
	}
	v.put(v.length, &cell[T]{value: value, present: true, dirty: true})
	v.length++
	v.lenDirty = true
	return nil
}

func (v *Vec[T]) Swap(a, b uint32) error {
	if a >= v.length || b >= v.length {
		return common.ErrIdxOutOfBounds
	}
	if a == b {
		return nil
	}

	ca, err := v.loadCell(a)
	if err != nil {
		return err
	}
	cb, err := v.loadCell(b)
	if err != nil {
		return err
	}
	if !ca.present || !cb.present {
		return common.ErrCellMissing
	}

	ca.value, cb.value = cb.value, ca.value
	ca.dirty, cb.dirty = true, true
	v.put(a, ca)
	v.put(b, cb)
	return nil
}

// SwapRemove removes the element at i and moves the last element into its
// slot. ok is false if i is out of range.
func (v *Vec[T]) SwapRemove(i uint32) (removed T, ok bool, err error) {
	if i >= v.length {
		return removed, false, nil
	}
	last := v.length - 1

	ci, err := v.loadCell(i)
	if err != nil {
		return removed, false, err
	}
	if !ci.present {
		return removed, false, common.ErrCellMissing
	}

	var cl *cell[T]
	if i != last {
		if cl, err = v.loadCell(last); err != nil {
			return removed, false, err
		}
		if !cl.present {
			return removed, false, common.ErrCellMissing
		}
	}

	removed = ci.value
	if cl != nil {
		ci.value = cl.value
		ci.dirty = true
		v.put(i, ci)
	}
	v.put(last, &cell[T]{dirty: true})
	v.length--
	v.lenDirty = true

	return removed, true, nil
}

// Flush commits every pending write and the length as one batch. Nothing is
// marked clean unless the batch succeeds.
func (v *Vec[T]) Flush() error {
	b := &common.Batch{}
	flushed := []*cell[T]{}

	add := func(i uint32, c *cell[T]) error {
		if !c.dirty {
			return nil
		}
		if c.present {
			data, err := v.encodeCell(c.value)
			if err != nil {
				return err
			}
			b.Put(v.cellKey(i), data)
		} else {
			b.Delete(v.cellKey(i))
		}
		flushed = append(flushed, c)
		return nil
	}

	for i, c := range v.pending {
		if err := add(i, c); err != nil {
			return err
		}
	}
	for _, i := range v.cache.Keys() {
		c, ok := v.cache.Peek(i)
		if !ok {
			continue
		}
		if err := add(i, c); err != nil {
			return err
		}
	}
	if v.lenDirty {
		b.Put(v.lenKey, binary.BigEndian.AppendUint32(nil, v.length))
	}

	if err := common.WriteBatch(v.store, b); err != nil {
		return err
	}

	for _, c := range flushed {
		c.dirty = false
	}
	clear(v.pending)
	v.lenDirty = false

	v.logger.WithFields(logrus.Fields{"ops": b.Len(), "len": v.length}).Debug("flushed vector")
	return nil
}

func (v *Vec[T]) Iter() common.ElemIterator[T] {
	return &Iterator[T]{vec: v}
}

// IterMut yields pointers that may be written through before the next call
// on the iterator or the vector.
func (v *Vec[T]) IterMut() common.ElemIterator[T] {
	return &Iterator[T]{vec: v, mut: true}
}
