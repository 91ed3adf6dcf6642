package sstable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/chettriyuvraj/storage-heap/common"
)

const DEFAULTINDEXDISTANCE = 64

var ErrNoSSTableDirOffset = errors.New("no offset for directory in SSTable data")
var ErrInvalidSSTableDirOffset = errors.New("dir offset does not exist in SSTable data")
var ErrCorruptRecord = errors.New("corrupt data record in SSTable")
var ErrUnsortedKeys = errors.New("SSTable keys must be strictly ascending")

/*
SSTable notes:
-> Directory is a sparse index to the offset of some keys in the table, so lookups only scan a short run of records
SSTableFormat:
1. 0-7 bytes: offset to start of 'directory'
2. [start of data] [key_length(4 bytes):key:val_length(4 bytes):val] x Number of keys
3. [start of directory] [key_length(4 bytes):key:key_offset(8 bytes)] x Number of indexed keys
This looks like
[DirectoryOffset]
[Data]
[Directory]
*/

type Table struct {
	data      []byte
	dirOffset uint64
	dir       *SSTableDirectory
	count     int
}

type SSTableDirectory struct {
	entries []*SSTableDirEntry
}

type SSTableDirEntry struct {
	len    uint32
	key    []byte
	offset uint64
}

type TableIterator struct {
	table          *Table
	limitKey       []byte
	next           uint64
	curKey, curVal []byte
	hasEnded       bool
	err            error
}

/* Drains iter (must yield ascending keys) into SSTable bytes; an index entry is added roughly every distBetweenIndexKeys bytes */
func Build(iter common.Iterator, distBetweenIndexKeys int) (data []byte, err error) {
	dir := SSTableDirectory{}
	curOffset, curDistanceBetweenKeys := 8, 0
	var prevKey []byte
	for k := iter.Key(); k != nil; k = iter.Key() {
		v := iter.Value()
		kvSize := len(k) + len(v)

		if prevKey != nil && bytes.Compare(prevKey, k) >= 0 {
			return nil, ErrUnsortedKeys
		}
		prevKey = k

		/* Only append entry to index if distance between keys exceeds distBetweenIndexKeys OR key is the first key */
		if len(data) == 0 || curDistanceBetweenKeys+kvSize > distBetweenIndexKeys {
			dir.entries = append(dir.entries, &SSTableDirEntry{len: uint32(len(k)), key: k, offset: uint64(curOffset)})
			curDistanceBetweenKeys = 0
		} else {
			curDistanceBetweenKeys += kvSize
		}

		dataRecord := createDataRecord(k, v)
		curOffset += len(dataRecord)
		data = append(data, dataRecord...)

		if !iter.Next() {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error building SSTable: %w", err)
	}

	/* Combine directoryOffset:SSTableData:directory */
	out := binary.BigEndian.AppendUint64(make([]byte, 0, curOffset), uint64(curOffset))
	out = append(out, data...)
	for _, entry := range dir.entries {
		out = binary.BigEndian.AppendUint32(out, entry.len)
		out = append(out, entry.key...)
		out = binary.BigEndian.AppendUint64(out, entry.offset)
	}

	return out, nil
}

/* Format for a single record: [key_length(4 bytes):key:val_length(4 bytes):val] */
func createDataRecord(k, v []byte) (record []byte) {
	record = binary.BigEndian.AppendUint32(record, uint32(len(k)))
	record = append(record, k...)
	record = binary.BigEndian.AppendUint32(record, uint32(len(v)))
	record = append(record, v...)
	return record
}

func Open(data []byte) (*Table, error) {
	dir, dirOffset, err := getSSTableDir(data)
	if err != nil {
		return nil, fmt.Errorf("error opening SSTable: %w", err)
	}

	table := &Table{data: data, dirOffset: dirOffset, dir: dir}

	/* Walk every record once so corruption surfaces on open rather than on a later lookup */
	for offset := uint64(8); offset < dirOffset; table.count++ {
		_, _, next, err := table.readRecord(offset)
		if err != nil {
			return nil, fmt.Errorf("error opening SSTable: %w", err)
		}
		offset = next
	}

	return table, nil
}

/* Note: It will ignore incomplete entries at the end */
func getSSTableDir(data []byte) (*SSTableDirectory, uint64, error) {
	if len(data) < 8 {
		return nil, 0, ErrNoSSTableDirOffset
	}

	dirOffset := binary.BigEndian.Uint64(data[:8])
	if dirOffset < 8 || dirOffset > uint64(len(data)) {
		return nil, 0, ErrInvalidSSTableDirOffset
	}

	curOffset := dirOffset
	dir := SSTableDirectory{entries: []*SSTableDirEntry{}}
	for {
		if curOffset+4 > uint64(len(data)) {
			break
		}
		keyLen := binary.BigEndian.Uint32(data[curOffset : curOffset+4])
		curOffset += 4

		if curOffset+uint64(keyLen) > uint64(len(data)) {
			break
		}
		key := data[curOffset : curOffset+uint64(keyLen)]
		curOffset += uint64(keyLen)

		if curOffset+8 > uint64(len(data)) {
			break
		}
		keyOffset := binary.BigEndian.Uint64(data[curOffset : curOffset+8])
		curOffset += 8

		dir.entries = append(dir.entries, &SSTableDirEntry{len: keyLen, key: key, offset: keyOffset})
	}

	return &dir, dirOffset, nil
}

func (table *Table) readRecord(offset uint64) (k, v []byte, next uint64, err error) {
	end := table.dirOffset
	if offset+4 > end {
		return nil, nil, 0, ErrCorruptRecord
	}
	kLen := uint64(binary.BigEndian.Uint32(table.data[offset : offset+4]))
	offset += 4
	if offset+kLen+4 > end {
		return nil, nil, 0, ErrCorruptRecord
	}
	k = table.data[offset : offset+kLen]
	offset += kLen
	vLen := uint64(binary.BigEndian.Uint32(table.data[offset : offset+4]))
	offset += 4
	if offset+vLen > end {
		return nil, nil, 0, ErrCorruptRecord
	}
	v = table.data[offset : offset+vLen]
	return k, v, offset + vLen, nil
}

/* Number of records in the table */
func (table *Table) Len() int {
	return table.count
}

/* Offset of the closest indexed record at or before key, ok false if key sorts before every record */
func (table *Table) seekOffset(key []byte) (offset uint64, ok bool) {
	entries := table.dir.entries
	i := sort.Search(len(entries), func(i int) bool {
		return bytes.Compare(entries[i].key, key) > 0
	})
	if i == 0 {
		return 8, false
	}
	return entries[i-1].offset, true
}

func (table *Table) Get(key []byte) (value []byte, err error) {
	offset, ok := table.seekOffset(key)
	if !ok {
		return nil, common.ErrKeyDoesNotExist
	}

	for offset < table.dirOffset {
		k, v, next, err := table.readRecord(offset)
		if err != nil {
			return nil, err
		}
		switch cmp := bytes.Compare(k, key); {
		case cmp == 0:
			return v, nil
		case cmp > 0:
			return nil, common.ErrKeyDoesNotExist
		}
		offset = next
	}

	return nil, common.ErrKeyDoesNotExist
}

func (table *Table) Has(key []byte) (ret bool, err error) {
	_, err = table.Get(key)
	if err != nil {
		if errors.Is(err, common.ErrKeyDoesNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (table *Table) FullScan() (common.Iterator, error) {
	iter := &TableIterator{table: table}
	iter.load(8)
	return iter, iter.err
}

/* Note: limit -> nil indicates scan till end of table */
func (table *Table) RangeScan(start, limit []byte) (common.Iterator, error) {
	iter := &TableIterator{table: table, limitKey: limit}
	if limit != nil && bytes.Compare(start, limit) > 0 {
		iter.hasEnded = true
		return iter, common.ErrInvalidRange
	}

	/* Skip records below start, beginning from the closest indexed one */
	offset, _ := table.seekOffset(start)
	for iter.load(offset); !iter.hasEnded && bytes.Compare(iter.curKey, start) < 0; {
		iter.load(iter.next)
	}

	return iter, iter.err
}

func (iter *TableIterator) load(offset uint64) {
	iter.curKey, iter.curVal = nil, nil
	if offset >= iter.table.dirOffset {
		iter.hasEnded = true
		return
	}

	k, v, next, err := iter.table.readRecord(offset)
	if err != nil {
		iter.err = err
		iter.hasEnded = true
		return
	}
	if iter.limitKey != nil && bytes.Compare(k, iter.limitKey) > 0 {
		iter.hasEnded = true
		return
	}

	iter.next = next
	iter.curKey, iter.curVal = k, v
}

func (iter *TableIterator) Next() bool {
	if iter.hasEnded {
		return false
	}
	iter.load(iter.next)
	return !iter.hasEnded
}

func (iter *TableIterator) Key() []byte {
	if iter.hasEnded {
		return nil
	}
	return iter.curKey
}

func (iter *TableIterator) Value() []byte {
	if iter.hasEnded {
		return nil
	}
	return iter.curVal
}

func (iter *TableIterator) Error() error {
	return iter.err
}
