package common

import "errors"

var ErrBatchWrite = errors.New("error writing batch")

type BatchOp struct {
	Key, Value []byte
	Delete     bool
}

/* Ordered set of writes that should land together */
type Batch struct {
	ops []BatchOp
}

type BatchWriter interface {
	WriteBatch(b *Batch) error
}

func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, BatchOp{Key: key, Value: value})
}

func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, BatchOp{Key: key, Delete: true})
}

func (b *Batch) Ops() []BatchOp {
	return b.ops
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Reset() {
	b.ops = b.ops[:0]
}

/*
Applies the batch in one commit if the store supports it, else op by op.
Deleting a key that is already absent is not an error here.
*/
func WriteBatch(store Store, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}

	if bw, ok := store.(BatchWriter); ok {
		return bw.WriteBatch(b)
	}

	for _, op := range b.ops {
		if op.Delete {
			if err := store.Delete(op.Key); err != nil && !errors.Is(err, ErrKeyDoesNotExist) {
				return errors.Join(ErrBatchWrite, err)
			}
			continue
		}
		if err := store.Put(op.Key, op.Value); err != nil {
			return errors.Join(ErrBatchWrite, err)
		}
	}

	return nil
}
