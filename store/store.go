// Package store selects a dataset store backend by name.
package store

import (
	"github.com/pkg/errors"

	"github.com/rendinam/logparse"
	"github.com/rendinam/logparse/boltdb"
	"github.com/rendinam/logparse/leveldb"
)

// Open opens the named backend ("bolt" or "leveldb") for the dataset at
// path. For bolt the path is a file; for leveldb it is a directory.
func Open(backend, path string) (logparse.DatasetStore, error) {
	switch backend {
	case "bolt":
		return boltdb.NewStore(path)
	case "leveldb":
		return leveldb.NewStore(path)
	}
	return nil, errors.Errorf("unknown store backend %q (want bolt or leveldb)", backend)
}
