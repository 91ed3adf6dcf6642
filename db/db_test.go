package db

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/test"
	"github.com/stretchr/testify/require"
)

func newTestDB(t testing.TB, walLimit int64) (*DB, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	db, err := NewDB(NewDBConfig(walLimit, false, dir))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, dir
}

func TestDB(t *testing.T) {
	test.TestDB(t, test.DBTester{New: func() common.DB {
		db, _ := newTestDB(t, 0)
		return db
	}})

	/* A tiny WAL limit checkpoints on nearly every write */
	test.TestDB(t, test.DBTester{New: func() common.DB {
		db, _ := newTestDB(t, 32)
		return db
	}})
}

func BenchmarkDB(b *testing.B) {
	test.BenchmarkDB(b, test.DBTester{New: func() common.DB {
		db, _ := newTestDB(b, 0)
		return db
	}})
}

func TestEmptyValRejected(t *testing.T) {
	db, _ := newTestDB(t, 0)
	require.ErrorIs(t, db.Put([]byte("k"), nil), common.ErrValDoesNotExist)
	require.ErrorIs(t, db.Put(nil, []byte("v")), common.ErrEmptyKey)

	b := &common.Batch{}
	b.Put([]byte("k"), []byte{})
	require.ErrorIs(t, db.WriteBatch(b), common.ErrValDoesNotExist)
	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestReopenReplaysWAL(t *testing.T) {
	db, dir := newTestDB(t, 0)

	for i := 0; i <= 4; i++ {
		k, v := []byte(fmt.Sprintf("k%d", i)), []byte(fmt.Sprintf("v%d", i))
		require.NoError(t, db.Put(k, v))
	}
	require.NoError(t, db.Delete([]byte("k3")))
	require.NoError(t, db.Delete([]byte("k4")))
	b := &common.Batch{}
	b.Put([]byte("k5"), []byte("v5"))
	b.Delete([]byte("k0"))
	require.NoError(t, db.WriteBatch(b))
	require.NoError(t, db.Close())

	/* Use the same directory to populate db2 */
	db2, err := NewDB(NewDBConfig(0, false, dir))
	require.NoError(t, err)
	defer db2.Close()

	for i := 0; i <= 5; i++ {
		k, vWant := []byte(fmt.Sprintf("k%d", i)), []byte(fmt.Sprintf("v%d", i))
		vGot, err := db2.Get(k)
		if i == 0 || i == 3 || i == 4 {
			require.ErrorIs(t, err, common.ErrKeyDoesNotExist)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, vWant, vGot)
	}
}

func TestCheckpoint(t *testing.T) {
	db, dir := newTestDB(t, 64)

	for i := 0; i < 50; i++ {
		k, v := []byte(fmt.Sprintf("key%02d", i)), []byte(fmt.Sprintf("val%02d", i))
		require.NoError(t, db.Put(k, v))
	}
	require.NoError(t, db.Delete([]byte("key07")))

	/* WAL was truncated by checkpoints and never grows much past the limit */
	require.LessOrEqual(t, db.log.Size(), int64(64))
	_, err := os.Stat(filepath.Join(dir, DEFAULTCHECKPOINTFILENAME))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := NewDB(NewDBConfig(64, false, dir))
	require.NoError(t, err)
	defer db2.Close()
	for i := 0; i < 50; i++ {
		v, err := db2.Get([]byte(fmt.Sprintf("key%02d", i)))
		if i == 7 {
			require.ErrorIs(t, err, common.ErrKeyDoesNotExist)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, []byte(fmt.Sprintf("val%02d", i)), v)
	}
}

func TestCreateNewWipesDir(t *testing.T) {
	db, dir := newTestDB(t, 0)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Checkpoint())
	require.NoError(t, db.Close())

	db2, err := NewDB(NewDBConfig(0, true, dir))
	require.NoError(t, err)
	defer db2.Close()
	_, err = db2.Get([]byte("k"))
	require.ErrorIs(t, err, common.ErrKeyDoesNotExist)
}

func TestCorruptCheckpoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DEFAULTCHECKPOINTFILENAME), []byte{0x01}, 0644))
	_, err := NewDB(NewDBConfig(0, false, dir))
	require.ErrorIs(t, err, ErrInitDB)
}
