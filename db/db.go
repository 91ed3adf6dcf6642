package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/chettriyuvraj/storage-heap/logger"
	"github.com/chettriyuvraj/storage-heap/memdb"
	"github.com/chettriyuvraj/storage-heap/sstable"
	"github.com/chettriyuvraj/storage-heap/wal"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULTWALFILENAME        = "log"
	DEFAULTCHECKPOINTFILENAME = "checkpoint.sst"
	DEFAULTWALLIMIT           = 4 << 20 /* In bytes */
)

/*
DB keeps every key in memdb and makes it durable with a WAL:
- each mutation is appended to the WAL before it touches memdb
- once the WAL outgrows walLimit, memdb is written out as an SSTable checkpoint and the WAL is truncated
- on open, the checkpoint is loaded and the WAL replayed on top of it
*/
type DB struct {
	dirName  string
	memdb    *memdb.MemDB
	walLimit int64
	log      *wal.WAL
	logger   *logrus.Entry
}

type DBConfig struct {
	walLimit  int64
	createNew bool /* Should we wipe dirName if it already exists? */
	dirName   string
}

var ErrMemDB = errors.New("error while querying memdb")
var ErrInitDB = errors.New("error initializing DB")
var ErrWALPUT = errors.New("error appending PUT to WAL")
var ErrWALDELETE = errors.New("error appending DELETE to WAL")
var ErrWALBATCH = errors.New("error appending BATCH to WAL")
var ErrWALReplay = errors.New("error replaying records from WAL")
var ErrCheckpoint = errors.New("error checkpointing DB")

func NewDBConfig(walLimit int64, createNew bool, dirName string) DBConfig {
	if walLimit <= 0 {
		walLimit = DEFAULTWALLIMIT
	}
	return DBConfig{walLimit: walLimit, createNew: createNew, dirName: dirName}
}

/* Initialize DB only using this function */
func NewDB(config DBConfig) (*DB, error) {
	dirName := config.dirName

	/* Create directory for DB */
	exists, err := fileOrDirExists(dirName)
	if err != nil {
		return nil, errors.Join(ErrInitDB, err)
	}
	if exists && config.createNew {
		if err := emptyDir(dirName, true); err != nil {
			return nil, errors.Join(ErrInitDB, err)
		}
	}
	if !exists {
		if err := os.MkdirAll(dirName, 0755); err != nil {
			return nil, errors.Join(ErrInitDB, err)
		}
	}

	db := &DB{
		dirName:  dirName,
		memdb:    memdb.NewMemDB(),
		walLimit: config.walLimit,
		logger:   logger.Default().WithField("dir", dirName),
	}

	if err := db.loadCheckpoint(); err != nil {
		return nil, errors.Join(ErrInitDB, err)
	}

	/* Attach WAL */
	log, err := wal.Open(filepath.Join(dirName, DEFAULTWALFILENAME))
	if err != nil {
		return nil, errors.Join(ErrInitDB, err)
	}
	db.log = log

	if err := db.replay(); err != nil {
		log.Close()
		return nil, errors.Join(ErrInitDB, err)
	}

	return db, nil
}

func (db *DB) Get(key []byte) (val []byte, err error) {
	val, err = db.memdb.Get(key)
	if err != nil {
		if errors.Is(err, common.ErrKeyDoesNotExist) {
			return nil, err
		}
		return nil, errors.Join(ErrMemDB, err)
	}
	return val, nil
}

func (db *DB) Has(key []byte) (ret bool, err error) {
	return db.memdb.Has(key)
}

func (db *DB) Put(key, val []byte) error {
	if len(key) == 0 {
		return common.ErrEmptyKey
	}
	if len(val) == 0 {
		return common.ErrValDoesNotExist
	}

	if err := db.log.Append(key, val, wal.PUT); err != nil {
		return errors.Join(ErrWALPUT, err)
	}
	if err := db.memdb.Put(key, val); err != nil {
		return errors.Join(ErrMemDB, err)
	}

	return db.maybeCheckpoint()
}

func (db *DB) Delete(key []byte) error {
	/* Only log deletes of keys that exist */
	if _, err := db.Get(key); err != nil {
		return err
	}

	if err := db.log.Append(key, nil, wal.DELETE); err != nil {
		return errors.Join(ErrWALDELETE, err)
	}
	if err := db.memdb.Delete(key); err != nil {
		return errors.Join(ErrMemDB, err)
	}

	return db.maybeCheckpoint()
}

/* All ops of the batch go to the WAL as one record, so after a crash either all of them replay or none */
func (db *DB) WriteBatch(b *common.Batch) error {
	records := make([]wal.LogRecord, 0, b.Len())
	for _, op := range b.Ops() {
		if len(op.Key) == 0 {
			return common.ErrEmptyKey
		}
		opType := wal.PUT
		if op.Delete {
			opType = wal.DELETE
		} else if len(op.Value) == 0 {
			return common.ErrValDoesNotExist
		}
		record, err := wal.NewLogRecord(op.Key, op.Value, opType)
		if err != nil {
			return errors.Join(ErrWALBATCH, err)
		}
		records = append(records, *record)
	}

	if err := db.log.AppendBatch(records); err != nil {
		return errors.Join(ErrWALBATCH, err)
	}
	for _, record := range records {
		if err := db.apply(record); err != nil {
			return errors.Join(ErrMemDB, err)
		}
	}

	return db.maybeCheckpoint()
}

func (db *DB) RangeScan(start, limit []byte) (common.Iterator, error) {
	return db.memdb.RangeScan(start, limit)
}

/* Applies a logged record to memdb, deletes of absent keys are no-ops */
func (db *DB) apply(record wal.LogRecord) error {
	switch record.Op() {
	case wal.PUT:
		return db.memdb.Put(record.Key(), record.Val())
	case wal.DELETE:
		if err := db.memdb.Delete(record.Key()); err != nil && !errors.Is(err, common.ErrKeyDoesNotExist) {
			return err
		}
	}
	return nil
}

func (db *DB) replay() error {
	records, err := db.log.Replay()
	if err != nil {
		return errors.Join(ErrWALReplay, err)
	}
	for _, record := range records {
		if err := db.apply(record); err != nil {
			return errors.Join(ErrWALReplay, err)
		}
	}

	db.logger.WithField("records", len(records)).Debug("replayed WAL")
	return nil
}

func (db *DB) maybeCheckpoint() error {
	if db.log.Size() <= db.walLimit {
		return nil
	}
	return db.Checkpoint()
}

/*
- Writes memdb to a temp SSTable, renames it over the previous checkpoint, then truncates the WAL
- A crash before the truncate leaves WAL records that are already in the checkpoint, replaying them is harmless
*/
func (db *DB) Checkpoint() error {
	iter, err := db.memdb.FullScan()
	if err != nil {
		return errors.Join(ErrCheckpoint, err)
	}
	data, err := sstable.Build(iter, sstable.DEFAULTINDEXDISTANCE)
	if err != nil {
		return errors.Join(ErrCheckpoint, err)
	}

	checkpointPath := filepath.Join(db.dirName, DEFAULTCHECKPOINTFILENAME)
	tempPath := fmt.Sprintf("%s.tmp", checkpointPath)
	if err := writeFileSync(tempPath, data); err != nil {
		return errors.Join(ErrCheckpoint, err)
	}
	if err := os.Rename(tempPath, checkpointPath); err != nil {
		return errors.Join(ErrCheckpoint, err)
	}
	if err := db.log.Truncate(); err != nil {
		return errors.Join(ErrCheckpoint, err)
	}

	db.logger.WithFields(logrus.Fields{"keys": db.memdb.Len(), "bytes": len(data)}).Info("checkpointed DB")
	return nil
}

func (db *DB) loadCheckpoint() error {
	data, err := os.ReadFile(filepath.Join(db.dirName, DEFAULTCHECKPOINTFILENAME))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	table, err := sstable.Open(data)
	if err != nil {
		return err
	}
	iter, err := table.FullScan()
	if err != nil {
		return err
	}
	for k := iter.Key(); k != nil; k = iter.Key() {
		if err := db.memdb.Put(k, iter.Value()); err != nil {
			return err
		}
		if !iter.Next() {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}

	db.logger.WithField("keys", table.Len()).Debug("loaded checkpoint")
	return nil
}

func (db *DB) Close() error {
	return db.log.Close()
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileOrDirExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func emptyDir(dirName string, recurse bool) error {
	dirEntries, err := os.ReadDir(dirName)
	if err != nil {
		return fmt.Errorf("error reading dir entries to empty %w", err)
	}

	for _, dirEntry := range dirEntries {
		dirEntryPath := filepath.Join(dirName, dirEntry.Name())
		if dirEntry.IsDir() {
			if !recurse {
				continue
			}
			if err := os.RemoveAll(dirEntryPath); err != nil {
				return fmt.Errorf("error emptying dir entries %w", err)
			}
			continue
		}
		if err := os.Remove(dirEntryPath); err != nil {
			return fmt.Errorf("error emptying dir entries %w", err)
		}
	}
	return nil
}
