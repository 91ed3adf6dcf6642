package wal

import (
	"encoding/binary"
	"errors"
)

/*
1 individual log record format:
- 1 byte op-type
- 4 byte key length
- {key-length} bytes key
- 4 byte val length
- {val-length} bytes val
As big endian
*/

const (
	PUT = byte(iota)
	DELETE
	BATCH /* val holds a run of encoded PUT/DELETE records that replay together or not at all */
)

const MINIMUMRECORDSIZE = 9

var opmap map[byte]bool = map[byte]bool{
	PUT:    true,
	DELETE: true,
	BATCH:  true,
}

var ErrOpDoesNotExist = errors.New("the provided op does not exist")
var ErrMinRecordSize = errors.New("size of record lesser than the minimum record size")
var ErrKeySmallerThanKeyLen = errors.New("size of key lesser than key length specified")
var ErrNoValData = errors.New("binary log record ends after key")
var ErrValSmallerThanValLen = errors.New("size of val lesser than val length specified")
var ErrNestedBatch = errors.New("batch records cannot contain batches")

type LogRecord struct {
	key, val []byte
	op       byte
}

func NewLogRecord(k, v []byte, op byte) (*LogRecord, error) {
	if exists := opmap[op]; !exists {
		return nil, ErrOpDoesNotExist
	}
	return &LogRecord{key: k, val: v, op: op}, nil
}

/* Packs PUT/DELETE records into a single BATCH record */
func NewBatchRecord(records []LogRecord) (*LogRecord, error) {
	val := []byte{}
	for _, record := range records {
		if record.op == BATCH {
			return nil, ErrNestedBatch
		}
		data, err := record.MarshalBinary()
		if err != nil {
			return nil, err
		}
		val = append(val, data...)
	}
	return &LogRecord{val: val, op: BATCH}, nil
}

/* Unpacks the records held by a BATCH record */
func (record *LogRecord) Records() ([]LogRecord, error) {
	records := []LogRecord{}
	for offset := 0; offset < len(record.val); {
		inner := LogRecord{}
		n, err := inner.decode(record.val[offset:])
		if err != nil {
			return nil, err
		}
		if inner.op == BATCH {
			return nil, ErrNestedBatch
		}
		records = append(records, inner)
		offset += n
	}
	return records, nil
}

func (record *LogRecord) Key() []byte { return record.key }

func (record *LogRecord) Val() []byte { return record.val }

func (record *LogRecord) Op() byte { return record.op }

/* Encoded size in bytes */
func (record *LogRecord) Size() int {
	return MINIMUMRECORDSIZE + len(record.key) + len(record.val)
}

func (record *LogRecord) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 0, record.Size())
	data = append(data, record.op)
	data = binary.BigEndian.AppendUint32(data, uint32(len(record.key)))
	data = append(data, record.key...)
	data = binary.BigEndian.AppendUint32(data, uint32(len(record.val)))
	data = append(data, record.val...)
	return data, nil
}

/* Trailing bytes after the first record are ignored, use decodeLogRecord to walk a stream */
func (record *LogRecord) UnmarshalBinary(data []byte) error {
	_, err := record.decode(data)
	return err
}

/* Decodes one record from the start of data and returns the number of bytes it occupied */
func (record *LogRecord) decode(data []byte) (n int, err error) {
	if len(data) < MINIMUMRECORDSIZE {
		return 0, ErrMinRecordSize
	}

	/* Read op */
	op := data[0]
	if !opmap[op] {
		return 0, ErrOpDoesNotExist
	}

	/* Read key len + key */
	kLen := uint64(binary.BigEndian.Uint32(data[1:5]))
	kStart, kEnd := uint64(5), 5+kLen
	if kEnd > uint64(len(data)) {
		return 0, ErrKeySmallerThanKeyLen
	}

	/* Read val len + val */
	vLenEnd := kEnd + 4
	if vLenEnd > uint64(len(data)) {
		return 0, ErrNoValData
	}
	vLen := uint64(binary.BigEndian.Uint32(data[kEnd:vLenEnd]))
	vStart, vEnd := vLenEnd, vLenEnd+vLen
	if vEnd > uint64(len(data)) {
		return 0, ErrValSmallerThanValLen
	}

	record.op = op
	record.key, record.val = nil, nil
	if kLen > 0 {
		record.key = data[kStart:kEnd]
	}
	if vLen > 0 {
		record.val = data[vStart:vEnd]
	}

	return int(vEnd), nil
}
