package wal

import (
	"errors"
	"io"
	"os"
)

var ErrWALAppend = errors.New("error appending record to WAL")
var ErrWALRead = errors.New("error reading WAL")

type logFile interface {
	io.ReadWriteSeeker
	io.Closer
	Truncate(size int64) error
}

type WAL struct {
	file     logFile
	filename string
	size     int64
}

/* Opens or creates the log at filename, appends go to the end */
func Open(filename string) (*WAL, error) {
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &WAL{file: f, filename: filename, size: size}, nil
}

func (log *WAL) Filename() string {
	return log.filename
}

/* Bytes currently in the log */
func (log *WAL) Size() int64 {
	return log.size
}

func (log *WAL) Append(k, v []byte, op byte) error {
	record, err := NewLogRecord(k, v, op)
	if err != nil {
		return errors.Join(ErrWALAppend, err)
	}
	return log.append(record)
}

/* Appends records as one BATCH record so a torn write drops all of them */
func (log *WAL) AppendBatch(records []LogRecord) error {
	record, err := NewBatchRecord(records)
	if err != nil {
		return errors.Join(ErrWALAppend, err)
	}
	return log.append(record)
}

func (log *WAL) append(record *LogRecord) error {
	data, err := record.MarshalBinary()
	if err != nil {
		return errors.Join(ErrWALAppend, err)
	}

	n, err := log.file.Write(data)
	log.size += int64(n)
	if err != nil {
		return errors.Join(ErrWALAppend, err)
	}

	return nil
}

/*
- Reads every complete record from the start of the log, BATCH records are flattened into their PUT/DELETE records
- A torn record at the tail (crash mid-append) is dropped
*/
func (log *WAL) Replay() ([]LogRecord, error) {
	if _, err := log.file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Join(ErrWALRead, err)
	}
	data, err := io.ReadAll(log.file)
	if err != nil {
		return nil, errors.Join(ErrWALRead, err)
	}

	records := []LogRecord{}
	for offset := 0; offset < len(data); {
		record := LogRecord{}
		n, err := record.decode(data[offset:])
		if err != nil {
			if errors.Is(err, ErrOpDoesNotExist) {
				return nil, errors.Join(ErrWALRead, err)
			}
			break
		}
		offset += n

		if record.op != BATCH {
			records = append(records, record)
			continue
		}
		inner, err := record.Records()
		if err != nil {
			return nil, errors.Join(ErrWALRead, err)
		}
		records = append(records, inner...)
	}

	/* Further appends continue where the log ends */
	if _, err := log.file.Seek(0, io.SeekEnd); err != nil {
		return nil, errors.Join(ErrWALRead, err)
	}

	return records, nil
}

/* Empties the log, used once its records are captured elsewhere */
func (log *WAL) Truncate() error {
	if err := log.file.Truncate(0); err != nil {
		return err
	}
	if _, err := log.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	log.size = 0
	return nil
}

func (log *WAL) Close() error {
	return log.file.Close()
}
