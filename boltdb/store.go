// Package boltdb provides a logparse.DatasetStore backed by a single boltdb
// file. Records and ingested-file fingerprints are written in one
// transaction, so they can never drift out of sync across partial writes.
package boltdb

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/rendinam/logparse"
)

var (
	recordBucket      = []byte("records")
	fingerprintBucket = []byte("fingerprints")
)

var _ logparse.DatasetStore = &Store{}

// Store persists a dataset in boltdb. One Store owns one dataset file.
type Store struct {
	db   *bolt.DB
	path string
}

// NewStore opens (creating if needed) the dataset file at path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", path)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads the full dataset. A fresh file with no buckets yet loads as an
// empty dataset.
func (s *Store) Load() (*logparse.Dataset, error) {
	ds := logparse.NewDataset()
	err := s.db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(recordBucket)
		if rb != nil {
			err := rb.ForEach(func(k, v []byte) error {
				var rec logparse.TransactionRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return errors.Wrapf(err, "decoding record %d", binary.BigEndian.Uint64(k))
				}
				ds.Records = append(ds.Records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		fb := tx.Bucket(fingerprintBucket)
		if fb != nil {
			return fb.ForEach(func(k, v []byte) error {
				ds.Ingested[logparse.Fingerprint(k)] = struct{}{}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading dataset")
	}
	return ds, nil
}

// Save replaces all persisted state with ds in a single transaction.
func (s *Store) Save(ds *logparse.Dataset) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{recordBucket, fingerprintBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return errors.Wrapf(err, "clearing bucket %s", name)
				}
			}
		}
		rb, err := tx.CreateBucket(recordBucket)
		if err != nil {
			return errors.Wrap(err, "creating record bucket")
		}
		for i, rec := range ds.Records {
			buf, err := json.Marshal(rec)
			if err != nil {
				return errors.Wrapf(err, "encoding record %d", i)
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := rb.Put(key, buf); err != nil {
				return errors.Wrapf(err, "writing record %d", i)
			}
		}
		fb, err := tx.CreateBucket(fingerprintBucket)
		if err != nil {
			return errors.Wrap(err, "creating fingerprint bucket")
		}
		for fp := range ds.Ingested {
			if err := fb.Put([]byte(fp), []byte{}); err != nil {
				return errors.Wrapf(err, "writing fingerprint %s", fp)
			}
		}
		return nil
	})
	return errors.Wrap(err, "saving dataset")
}

// Close syncs and closes the underlying boltdb.
func (s *Store) Close() error {
	err := s.db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return s.db.Close()
}
