// Package ingest wires the log ingestion pipeline into a runnable command:
// expand file globs (optionally pulling logs down from S3 first), load the
// persisted dataset, merge every new log file into it, and save.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rendinam/logparse"
	"github.com/rendinam/logparse/s3"
	"github.com/rendinam/logparse/store"
)

// Main contains the configuration for an ingestion run.
type Main struct {
	Dataset     string   `help:"Path of the dataset file to create or update."`
	Files       []string `help:"Log files to parse, raw or .gz; glob syntax is honored."`
	IgnoreHosts []string `help:"Address substrings whose lines are skipped, e.g. security scanners."`
	Store       string   `help:"Dataset store backend: bolt or leveldb."`
	Hostnames   bool     `help:"Resolve client hostnames for new records (slow; best-effort)."`

	S3Region string `help:"AWS region of the log bucket."`
	S3Bucket string `help:"S3 bucket to fetch logs from before ingesting."`
	S3Prefix string `help:"Key prefix of log objects in the S3 bucket."`
	SpoolDir string `help:"Local directory S3 logs are downloaded into."`

	LogLevel string `help:"Log level: debug, info, warn, error."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Dataset:  "dataset.db",
		Store:    "bolt",
		SpoolDir: "spool",
		LogLevel: "info",
	}
}

// Run runs the ingestion. File-level problems are logged and survived; only
// storage I/O failures are fatal, since dataset persistence is the run's only
// durable side effect.
func (m *Main) Run() error {
	logger := m.logger()

	files, err := m.gatherFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info().Str("dataset", m.Dataset).Msg("no log files provided, importing existing dataset only")
	}

	st, err := store.Open(m.Store, m.Dataset)
	if err != nil {
		return errors.Wrap(err, "opening dataset store")
	}
	defer st.Close()

	dataset, err := st.Load()
	if err != nil {
		return errors.Wrap(err, "loading dataset")
	}
	logger.Info().Int("records", len(dataset.Records)).
		Int("ingested_files", len(dataset.Ingested)).
		Msg("loaded dataset")

	engine := logparse.NewEngine(m.IgnoreHosts, logger)
	stats := engine.Ingest(files, dataset)

	if m.Hostnames && stats.RecordsAdded > 0 {
		logparse.NewHostnameResolver().Enrich(dataset.Records)
	}

	if err := st.Save(dataset); err != nil {
		return errors.Wrap(err, "saving dataset")
	}
	logger.Info().Int("records", len(dataset.Records)).Msg("dataset saved")
	return nil
}

// gatherFiles expands globs and, when configured, spools logs down from S3.
func (m *Main) gatherFiles() ([]string, error) {
	var files []string
	for _, spec := range m.Files {
		expanded, err := filepath.Glob(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "bad file pattern %q", spec)
		}
		if expanded == nil && !strings.ContainsAny(spec, "*?[") {
			// A plain path that doesn't exist should be reported by the
			// engine as unreadable, not dropped here.
			files = append(files, spec)
			continue
		}
		files = append(files, expanded...)
	}
	if m.S3Bucket != "" {
		fetcher, err := s3.NewFetcher(m.S3Region, m.S3Bucket, m.S3Prefix)
		if err != nil {
			return nil, errors.Wrap(err, "setting up s3 fetcher")
		}
		spooled, err := fetcher.Fetch(m.SpoolDir)
		if err != nil {
			return nil, errors.Wrap(err, "fetching logs from s3")
		}
		files = append(files, spooled...)
	}
	return files, nil
}

func (m *Main) logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(m.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()
}
