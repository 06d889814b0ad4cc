package logparse

import (
	"sort"

	"github.com/rs/zerolog"
)

// RunStats summarizes one ingestion run. Nothing is silently swallowed: every
// skipped, failed, and unparseable input shows up here.
type RunStats struct {
	FilesRead    int
	FilesSkipped int
	FilesFailed  int
	RecordsAdded int
	ReadStats
}

// Engine drives one ingestion run: it decides which candidate files are new,
// reads them, and merges their package-download records into a dataset. One
// engine is constructed per run and owns its parser and reader; there are no
// package-level singletons.
type Engine struct {
	reader *LogReader
	log    zerolog.Logger
}

// NewEngine returns an engine which ignores lines containing any of
// ignoreHosts. Pass a no-op logger (zerolog.Nop()) to silence it.
func NewEngine(ignoreHosts []string, log zerolog.Logger) *Engine {
	return &Engine{
		reader: NewLogReader(NewLineParser(), ignoreHosts),
		log:    log,
	}
}

// Ingest merges the package-download records of every not-yet-seen file into
// dataset, mutating it in place, and returns run statistics.
//
// Files are processed strictly one at a time in sorted path order so merge
// order is deterministic. A file's fingerprint is registered only after its
// records are in the dataset; a crash mid-run therefore loses at most the
// in-memory batch, never records belonging to an already-registered
// fingerprint. An unreadable file is reported and skipped without a
// fingerprint, so the next run retries it. An empty file set is a no-op.
func (e *Engine) Ingest(files []string, dataset *Dataset) RunStats {
	var stats RunStats

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var batch []TransactionRecord
	var newPrints []Fingerprint

	for _, path := range sorted {
		fp, err := FingerprintFile(path)
		if err != nil {
			e.log.Warn().Err(err).Str("file", path).Msg("skipping unreadable file")
			stats.FilesFailed++
			continue
		}
		if dataset.HasIngested(fp) {
			e.log.Info().Str("file", path).Msg("already ingested, skipping")
			stats.FilesSkipped++
			continue
		}
		records, rs, err := e.reader.ReadFile(path)
		if err != nil {
			e.log.Warn().Err(err).Str("file", path).Msg("skipping unreadable file")
			stats.FilesFailed++
			continue
		}
		e.log.Info().Str("file", path).
			Int("lines", rs.Lines).
			Int("records", rs.Records).
			Int("unparseable", rs.Unparseable).
			Int("nonpackage", rs.NonPackage).
			Msg("read log file")
		stats.FilesRead++
		stats.ReadStats.Add(rs)
		batch = append(batch, records...)
		newPrints = append(newPrints, fp)
	}

	if len(newPrints) == 0 {
		return stats
	}

	batch = FilterPackages(batch)
	SortByTimestamp(batch)
	batch = DedupRecords(batch)
	NormalizeChannels(batch)

	// Existing rows are trusted as already filtered and deduplicated; the
	// batch is appended and the whole table re-sorted.
	dataset.Records = append(dataset.Records, batch...)
	SortByTimestamp(dataset.Records)
	stats.RecordsAdded = len(batch)

	// Fingerprints are registered last, after the merge above, preserving the
	// idempotency invariant.
	for _, fp := range newPrints {
		dataset.Ingested[fp] = struct{}{}
	}

	e.log.Info().
		Int("files_read", stats.FilesRead).
		Int("files_skipped", stats.FilesSkipped).
		Int("files_failed", stats.FilesFailed).
		Int("records_added", stats.RecordsAdded).
		Int("unparseable", stats.Unparseable).
		Int("nonpackage", stats.NonPackage).
		Msg("ingestion complete")
	return stats
}
