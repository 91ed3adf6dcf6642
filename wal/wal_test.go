package wal

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

/* To mock files for test */
type memFile struct {
	data   []byte
	offset int64
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.offset + int64(len(p))
	if end > int64(len(f.data)) {
		f.data = append(f.data, make([]byte, end-int64(len(f.data)))...)
	}
	copy(f.data[f.offset:], p)
	f.offset = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.offset = offset
	case io.SeekCurrent:
		f.offset += offset
	case io.SeekEnd:
		f.offset = int64(len(f.data)) + offset
	}
	return f.offset, nil
}

func (f *memFile) Truncate(size int64) error {
	f.data = f.data[:size]
	return nil
}

func (f *memFile) Close() error {
	return nil
}

func TestAppendAndReplay(t *testing.T) {
	records := []LogRecord{
		{key: []byte("k1"), val: nil, op: DELETE},
		{key: []byte("k2"), val: []byte("v2"), op: PUT},
		{key: []byte("k3"), val: nil, op: DELETE},
	}

	/* Append to log and replay the same data successfully */
	tcs := []struct {
		name    string
		records []LogRecord
	}{
		{"append 1 log", records[0:1]},
		{"append multiple logs", records},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			log := &WAL{file: &memFile{}}
			wantSize := int64(0)
			for _, record := range tc.records {
				err := log.Append(record.key, record.val, record.op)
				require.NoError(t, err)
				wantSize += int64(record.Size())
			}
			require.Equal(t, wantSize, log.Size())

			replayLogs, err := log.Replay()
			require.NoError(t, err)
			require.Equal(t, tc.records, replayLogs)
		})
	}
}

func TestReplayDropsTornTail(t *testing.T) {
	f := &memFile{}
	log := &WAL{file: f}
	require.NoError(t, log.Append([]byte("k1"), []byte("v1"), PUT))
	require.NoError(t, log.Append([]byte("k2"), []byte("v2"), PUT))

	/* Simulate a crash midway through the second append */
	f.data = f.data[:len(f.data)-3]

	replayLogs, err := log.Replay()
	require.NoError(t, err)
	require.Equal(t, []LogRecord{{key: []byte("k1"), val: []byte("v1"), op: PUT}}, replayLogs)
}

func TestReplayRejectsUnknownOp(t *testing.T) {
	f := &memFile{data: bytes.Repeat([]byte{0x07}, MINIMUMRECORDSIZE)}
	log := &WAL{file: f}
	_, err := log.Replay()
	require.ErrorIs(t, err, ErrOpDoesNotExist)
}

func TestOpenTruncateReopen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "log")

	log, err := Open(filename)
	require.NoError(t, err)
	require.NoError(t, log.Append([]byte("k1"), []byte("v1"), PUT))
	require.NoError(t, log.Close())

	/* Reopened log keeps previous records and appends after them */
	log, err = Open(filename)
	require.NoError(t, err)
	require.Equal(t, int64(MINIMUMRECORDSIZE+4), log.Size())
	require.NoError(t, log.Append([]byte("k2"), nil, DELETE))
	replayLogs, err := log.Replay()
	require.NoError(t, err)
	require.Len(t, replayLogs, 2)
	require.Equal(t, DELETE, replayLogs[1].Op())

	require.NoError(t, log.Truncate())
	require.Equal(t, int64(0), log.Size())
	replayLogs, err = log.Replay()
	require.NoError(t, err)
	require.Empty(t, replayLogs)
	require.NoError(t, log.Close())
}

func TestAppendBatch(t *testing.T) {
	f := &memFile{}
	log := &WAL{file: f}
	batch := []LogRecord{
		{key: []byte("k1"), val: []byte("v1"), op: PUT},
		{key: []byte("k2"), val: nil, op: DELETE},
	}
	require.NoError(t, log.Append([]byte("k0"), []byte("v0"), PUT))
	require.NoError(t, log.AppendBatch(batch))

	/* Batch is flattened on replay */
	replayLogs, err := log.Replay()
	require.NoError(t, err)
	require.Equal(t, append([]LogRecord{{key: []byte("k0"), val: []byte("v0"), op: PUT}}, batch...), replayLogs)

	/* A torn batch is dropped as a whole */
	f.data = f.data[:len(f.data)-1]
	replayLogs, err = log.Replay()
	require.NoError(t, err)
	require.Equal(t, []LogRecord{{key: []byte("k0"), val: []byte("v0"), op: PUT}}, replayLogs)

	err = log.AppendBatch([]LogRecord{{op: BATCH}})
	require.ErrorIs(t, err, ErrNestedBatch)
}
