// Package leveldb provides a logparse.DatasetStore backed by leveldb. It
// persists records and ingested-file fingerprints through a single synced
// WriteBatch, keeping the two in lockstep just like the boltdb store. Prefer
// boltdb unless write volume makes leveldb's batched writes worthwhile.
package leveldb

import (
	"encoding/binary"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rendinam/logparse"
)

var (
	recordPrefix      = []byte("r/")
	fingerprintPrefix = []byte("f/")
)

var _ logparse.DatasetStore = &Store{}

// Store persists a dataset in a leveldb directory.
type Store struct {
	db *leveldb.DB
}

// NewStore opens (creating if needed) the dataset db in directory dirname.
func NewStore(dirname string) (*Store, error) {
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at '%v'", dirname)
	}
	return &Store{db: db}, nil
}

func recordKey(i int) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], uint64(i))
	return key
}

// Load reads the full dataset. An empty db loads as an empty dataset.
func (s *Store) Load() (*logparse.Dataset, error) {
	ds := logparse.NewDataset()

	iter := s.db.NewIterator(util.BytesPrefix(recordPrefix), nil)
	for iter.Next() {
		var rec logparse.TransactionRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			iter.Release()
			return nil, errors.Wrapf(err, "decoding record %q", iter.Key())
		}
		ds.Records = append(ds.Records, rec)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating records")
	}

	iter = s.db.NewIterator(util.BytesPrefix(fingerprintPrefix), nil)
	for iter.Next() {
		fp := logparse.Fingerprint(iter.Key()[len(fingerprintPrefix):])
		ds.Ingested[fp] = struct{}{}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating fingerprints")
	}
	return ds, nil
}

// Save replaces all persisted state with ds. Deletions of prior state and
// writes of the new state go through one synced batch.
func (s *Store) Save(ds *logparse.Dataset) error {
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "iterating prior state")
	}

	for i, rec := range ds.Records {
		buf, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrapf(err, "encoding record %d", i)
		}
		batch.Put(recordKey(i), buf)
	}
	for fp := range ds.Ingested {
		batch.Put(append(append([]byte(nil), fingerprintPrefix...), fp...), []byte{})
	}

	err := s.db.Write(batch, &opt.WriteOptions{Sync: true})
	return errors.Wrap(err, "saving dataset")
}

// Close closes the underlying leveldb.
func (s *Store) Close() error {
	return s.db.Close()
}
