package test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/stretchr/testify/require"
)

type StoreTester struct {
	New func() common.Store
}

type DBTester struct {
	New func() common.DB
}

/* Cell-level behaviour every store backing a storage vector must have */
func TestStore(t *testing.T, tester StoreTester) {
	tcs := []struct {
		name string
		f    func(t *testing.T, tester StoreTester)
	}{
		{"testGetPut", testGetPut},
		{"testDelete", testDelete},
		{"testHas", testHas},
		{"testBatch", testBatch},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tc.f(t, tester)
		})
	}
}

/* Store suite + ordered scans */
func TestDB(t *testing.T, tester DBTester) {
	TestStore(t, StoreTester{New: func() common.Store { return tester.New() }})

	tcs := []struct {
		name string
		f    func(t *testing.T, tester DBTester)
	}{
		{"testRangeScan", testRangeScan},
		{"testOpenRangeScan", testOpenRangeScan},
		{"testInvalidRange", testInvalidRange},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tc.f(t, tester)
		})
	}
}

func BenchmarkDB(b *testing.B, tester DBTester) {
	bms := []struct {
		name string
		f    func(b *testing.B, tester DBTester)
	}{
		{name: "benchmarkPut", f: benchmarkPut},
		{name: "benchmarkGet", f: benchmarkGet},
		{name: "benchmarkDelete", f: benchmarkDelete},
	}
	for _, bm := range bms {
		b.Run(bm.name, func(b *testing.B) {
			bm.f(b, tester)
		})
	}
}

func testGetPut(t *testing.T, tester StoreTester) {
	db := tester.New()

	/* Get-Put a non existing key */
	keyNonExistent := []byte("kNE")
	_, err := db.Get(keyNonExistent)
	require.ErrorIs(t, err, common.ErrKeyDoesNotExist)

	/* Get-Put a new key-value pair */
	k1, v1 := []byte("key1"), []byte("val1")
	err = db.Put(k1, v1)
	require.NoError(t, err)
	v1FromDB, err := db.Get(k1)
	require.NoError(t, err)
	require.Equal(t, v1, v1FromDB)

	/* Overwrite an existing val */
	v2 := []byte("val2")
	err = db.Put(k1, v2)
	require.NoError(t, err)
	v2FromDB, err := db.Get(k1)
	require.NoError(t, err)
	require.Equal(t, v2, v2FromDB)

	/* Caller reusing its buffer must not change the stored value */
	k3, v3 := []byte("key3"), []byte("val3")
	err = db.Put(k3, v3)
	require.NoError(t, err)
	v3[0] = 'x'
	v3FromDB, err := db.Get([]byte("key3"))
	require.NoError(t, err)
	require.Equal(t, []byte("val3"), v3FromDB)
}

func testDelete(t *testing.T, tester StoreTester) {
	db := tester.New()

	/* Delete non-existent key */
	keyNonExistent := []byte("kNE")
	err := db.Delete(keyNonExistent)
	require.ErrorIs(t, err, common.ErrKeyDoesNotExist)

	/* Delete existing key */
	k1, v1 := []byte("key1"), []byte("val1")
	err = db.Put(k1, v1)
	require.NoError(t, err)
	err = db.Delete(k1)
	require.NoError(t, err)
	_, err = db.Get(k1)
	require.ErrorIs(t, err, common.ErrKeyDoesNotExist)
}

func testHas(t *testing.T, tester StoreTester) {
	db := tester.New()

	k1, v1 := []byte("key1"), []byte("val1")
	has, err := db.Has(k1)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, db.Put(k1, v1))
	has, err = db.Has(k1)
	require.NoError(t, err)
	require.True(t, has)
}

func testBatch(t *testing.T, tester StoreTester) {
	db := tester.New()
	require.NoError(t, db.Put([]byte("key0"), []byte("val0")))

	b := &common.Batch{}
	for i := 1; i <= 3; i++ {
		b.Put([]byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i)))
	}
	b.Delete([]byte("key0"))
	b.Delete([]byte("kNE")) /* Deleting an absent key inside a batch is not an error */
	require.NoError(t, common.WriteBatch(db, b))

	_, err := db.Get([]byte("key0"))
	require.ErrorIs(t, err, common.ErrKeyDoesNotExist)
	for i := 1; i <= 3; i++ {
		v, err := db.Get([]byte(fmt.Sprintf("key%d", i)))
		require.NoError(t, err)
		require.Equal(t, []byte(fmt.Sprintf("val%d", i)), v)
	}
}

func testRangeScan(t *testing.T, tester DBTester) {
	db := tester.New()
	iterations := 9
	for i := iterations; i >= 0; i -= 2 {
		k, v := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		err := db.Put(k, v)
		require.NoError(t, err)
	}

	/* Check exact ranges + confirm if values exhausted afterwards */
	start, end := []byte("key1"), []byte("key9")
	iterator, err := db.RangeScan(start, end)
	require.NoError(t, err)
	for i := 1; i <= 9; i += 2 {
		keyExpected, valExpected := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		IteratorTestKey(t, iterator, keyExpected, false)
		IteratorTestVal(t, iterator, valExpected, false)
		IteratorTestNext(t, iterator, i < iterations, false)
	}
	IteratorTestNext(t, iterator, false, false)
	IteratorTestKey(t, iterator, nil, false)
	IteratorTestVal(t, iterator, nil, false)

	/* Check inexact ranges + confirm if values exhausted afterwards */
	start, end = []byte("key"), []byte("key8")
	iterator, err = db.RangeScan(start, end)
	require.NoError(t, err)
	for i := 1; i <= 7; i += 2 {
		keyExpected, valExpected := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		IteratorTestKey(t, iterator, keyExpected, false)
		IteratorTestVal(t, iterator, valExpected, false)
		IteratorTestNext(t, iterator, i < 7, false)
	}
	IteratorTestNext(t, iterator, false, false)
	IteratorTestKey(t, iterator, nil, false)
	IteratorTestVal(t, iterator, nil, false)

	/* Range matching no keys */
	iterator, err = db.RangeScan([]byte("kez"), []byte("kez9"))
	require.NoError(t, err)
	IteratorTestKey(t, iterator, nil, false)
	IteratorTestNext(t, iterator, false, false)
}

func testOpenRangeScan(t *testing.T, tester DBTester) {
	db := tester.New()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Put([]byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))))
	}

	/* nil limit scans to the end */
	iterator, err := db.RangeScan([]byte("key2"), nil)
	require.NoError(t, err)
	for i := 2; i < 5; i++ {
		IteratorTestKey(t, iterator, []byte(fmt.Sprintf("key%d", i)), false)
		IteratorTestNext(t, iterator, i < 4, false)
	}
	IteratorTestKey(t, iterator, nil, false)
}

func testInvalidRange(t *testing.T, tester DBTester) {
	db := tester.New()
	_, err := db.RangeScan([]byte("key9"), []byte("key1"))
	require.ErrorIs(t, err, common.ErrInvalidRange)
}

func benchmarkPut(b *testing.B, tester DBTester) {
	bms := []struct {
		name string
		size int
	}{
		{name: "Hundred", size: 100},
		{name: "Thousand", size: 1000},
		{name: "TenThousand", size: 10000},
	}
	for _, bm := range bms {
		b.Run(bm.name, func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				db := tester.New()
				for i := 0; i < bm.size; i++ {
					k, v := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
					require.NoError(b, db.Put(k, v))
				}
			}
		})
	}
}

func benchmarkGet(b *testing.B, tester DBTester) {
	dbSize := 10000

	/* Populate KV store */
	db := tester.New()
	for i := 0; i < dbSize; i++ {
		k, v := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
		require.NoError(b, db.Put(k, v))
	}

	r := rand.New(rand.NewSource(500))
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		k := []byte(fmt.Sprintf("key%d", r.Intn(dbSize)))
		_, err := db.Get(k)
		require.NoError(b, err)
	}
}

func benchmarkDelete(b *testing.B, tester DBTester) {
	dbSize := 1000
	for n := 0; n < b.N; n++ {
		/* Repopulate for every run, ignoring setup cost */
		b.StopTimer()
		db := tester.New()
		for i := 0; i < dbSize; i++ {
			k, v := []byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i))
			require.NoError(b, db.Put(k, v))
		}
		b.StartTimer()

		/* Deletions are done in order, results for random deletes would be different */
		for i := 0; i < dbSize; i++ {
			require.NoError(b, db.Delete([]byte(fmt.Sprintf("key%d", i))))
		}
	}
}
