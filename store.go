package logparse

// DatasetStore loads and saves a dataset as one durable artifact. The record
// table and the ingested-fingerprint set always travel together; storing them
// separately was found to let them drift apart across partial writes.
//
// Load returns an empty dataset when no prior state exists — a first run, not
// an error. A successful Save fully replaces prior persisted state.
type DatasetStore interface {
	Load() (*Dataset, error)
	Save(*Dataset) error
	Close() error
}
