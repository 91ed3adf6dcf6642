package sstable

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/test"
	"github.com/stretchr/testify/require"
)

/* Structs for testing SSTable */

type kvRecord struct{ k, v []byte }

type DummyIterator struct {
	i       int
	records []kvRecord
}

func (iter *DummyIterator) Next() bool {
	if iter.i < len(iter.records) {
		iter.i++
	}
	return iter.i < len(iter.records)
}

func (iter *DummyIterator) Key() []byte {
	if iter.i < len(iter.records) {
		return iter.records[iter.i].k
	}
	return nil
}

func (iter *DummyIterator) Value() []byte {
	if iter.i < len(iter.records) {
		return iter.records[iter.i].v
	}
	return nil
}

func (iter *DummyIterator) Error() error {
	return nil
}

func NewDummyIterator(records []kvRecord) *DummyIterator {
	return &DummyIterator{records: records}
}

func buildTable(t *testing.T, records []kvRecord, distBetweenIndexKeys int) *Table {
	t.Helper()
	data, err := Build(NewDummyIterator(records), distBetweenIndexKeys)
	require.NoError(t, err)
	table, err := Open(data)
	require.NoError(t, err)
	return table
}

/* Testing our ss table generation by comparing the directory generated */
func TestGetSSTableDir(t *testing.T) {
	distBetweenIndexKeys := 10
	records := []kvRecord{
		{[]byte("comp"), []byte("c")},
		{[]byte("extc"), []byte{}},
		{[]byte("mecha"), []byte("mechanical")},
		{[]byte("zebr"), []byte("?")},
	}

	sstData, err := Build(NewDummyIterator(records), distBetweenIndexKeys)
	require.NoError(t, err)
	gotDir, _, err := getSSTableDir(sstData)
	require.NoError(t, err)
	expectedDir := SSTableDirectory{
		entries: []*SSTableDirEntry{
			{len: 4, key: records[0].k, offset: 8},
			{len: 5, key: records[2].k, offset: 8 + 13 + 12},
		},
	}
	require.Equal(t, expectedDir, *gotDir)

	/* Incomplete directory data at the tail is ignored */
	gotDir, _, err = getSSTableDir(sstData[:len(sstData)-3])
	require.NoError(t, err)
	require.Equal(t, expectedDir.entries[:1], gotDir.entries)
}

func TestOpenInvalid(t *testing.T) {
	_, err := Open([]byte{0x00, 0x01})
	require.ErrorIs(t, err, ErrNoSSTableDirOffset)

	_, err = Open(binary.BigEndian.AppendUint64(nil, 100))
	require.ErrorIs(t, err, ErrInvalidSSTableDirOffset)

	/* Directory offset promises a record that is cut short */
	data := binary.BigEndian.AppendUint64(nil, 14)
	data = append(data, 0x00, 0x00, 0x00, 0x09, 'k', 'e')
	_, err = Open(data)
	require.ErrorIs(t, err, ErrCorruptRecord)

	_, err = Build(NewDummyIterator([]kvRecord{{[]byte("b"), nil}, {[]byte("a"), nil}}), DEFAULTINDEXDISTANCE)
	require.ErrorIs(t, err, ErrUnsortedKeys)
}

func TestSSTableGet(t *testing.T) {
	records := []kvRecord{
		{[]byte("biot"), []byte("b")},
		{[]byte("comp"), []byte("c")},
		{[]byte("elec"), []byte("e")},
		{[]byte("extc"), []byte{}},
		{[]byte("mecha"), []byte("mechanical")},
		{[]byte("zebr"), []byte("?")},
	}
	table := buildTable(t, records, 10)
	require.Equal(t, len(records), table.Len())

	tcs := []struct {
		name    string
		record  kvRecord
		errWant error
	}{
		{name: "get first record", record: records[0]},
		{name: "get last record", record: records[5]},
		{name: "get last dir indexed record", record: records[4]},
		{name: "get non dir indexed record", record: records[2]},
		{name: "get record with empty value", record: records[3]},
		{name: "get non-existent record lesser than first key", record: kvRecord{[]byte("alexa"), nil}, errWant: common.ErrKeyDoesNotExist},
		{name: "get non-existent record between keys", record: kvRecord{[]byte("d"), nil}, errWant: common.ErrKeyDoesNotExist},
		{name: "get non-existent record greater than last key", record: kvRecord{[]byte("zx"), nil}, errWant: common.ErrKeyDoesNotExist},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			v, errGot := table.Get(tc.record.k)
			if tc.errWant != nil {
				require.ErrorIs(t, errGot, tc.errWant)
				has, err := table.Has(tc.record.k)
				require.NoError(t, err)
				require.False(t, has)
				return
			}
			require.NoError(t, errGot)
			require.Equal(t, tc.record.v, v)
		})
	}
}

func TestSSTableRangeScan(t *testing.T) {
	records := []kvRecord{
		{[]byte("key1"), []byte("val1")},
		{[]byte("key3"), []byte("val3")},
		{[]byte("key5"), []byte("val5")},
		{[]byte("key7"), []byte("val7")},
		{[]byte("key9"), []byte("val9")},
	}
	table := buildTable(t, records, 10)

	/* Check exact ranges + confirm if values exhausted afterwards */
	iterator, err := table.RangeScan([]byte("key1"), []byte("key9"))
	require.NoError(t, err)
	for i := 1; i <= 9; i += 2 {
		keyExpected, valExpected := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		test.IteratorTestKey(t, iterator, keyExpected, false)
		test.IteratorTestVal(t, iterator, valExpected, false)
		test.IteratorTestNext(t, iterator, i < 9, false)
	}
	test.IteratorTestNext(t, iterator, false, false)
	test.IteratorTestKey(t, iterator, nil, false)
	test.IteratorTestVal(t, iterator, nil, false)

	/* Check inexact ranges + confirm if values exhausted afterwards */
	iterator, err = table.RangeScan([]byte("key4"), []byte("key8"))
	require.NoError(t, err)
	for i := 5; i <= 7; i += 2 {
		keyExpected, valExpected := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		test.IteratorTestKey(t, iterator, keyExpected, false)
		test.IteratorTestVal(t, iterator, valExpected, false)
		test.IteratorTestNext(t, iterator, i < 7, false)
	}
	test.IteratorTestKey(t, iterator, nil, false)

	_, err = table.RangeScan([]byte("key8"), []byte("key4"))
	require.ErrorIs(t, err, common.ErrInvalidRange)
}

func TestFullScan(t *testing.T) {
	records := []kvRecord{
		{[]byte("key1"), []byte("val1")},
		{[]byte("key2"), []byte("val2")},
		{[]byte("key3"), []byte("val3")},
		{[]byte("key4"), []byte("val4")},
		{[]byte("key5"), []byte("val5")},
	}

	/* Empty table */
	table := buildTable(t, nil, DEFAULTINDEXDISTANCE)
	require.Equal(t, 0, table.Len())
	iter, err := table.FullScan()
	require.NoError(t, err)
	test.IteratorTestKey(t, iter, nil, false)
	test.IteratorTestNext(t, iter, false, false)

	for i := range records {
		/* Populate a subset of the test case records */
		curRecords := records[:i+1]
		table := buildTable(t, curRecords, DEFAULTINDEXDISTANCE)

		/* Verify if we can get entire subset using FullScan() */
		iter, err := table.FullScan()
		require.NoError(t, err)
		for j := 0; j <= i; j++ {
			test.IteratorTestKey(t, iter, curRecords[j].k, false)
			test.IteratorTestVal(t, iter, curRecords[j].v, false)
			if j < i {
				test.IteratorTestNext(t, iter, true, false)
			}
		}

		/* Verify if iterator exhausted after all elems output-ed */
		test.IteratorTestNext(t, iter, false, false)
		test.IteratorTestKey(t, iter, nil, false)
		test.IteratorTestVal(t, iter, nil, false)
	}
}
