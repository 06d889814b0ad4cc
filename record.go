package logparse

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PackageSuffix is the archive suffix that marks a conda package download.
// Records whose request path does not carry it never reach the dataset.
const PackageSuffix = ".tar.bz2"

// legacy channel names rewritten before storage. Rewriting is anchored on the
// leading slash so the replacement itself is never rewritten again.
var channelAliases = map[string]string{
	"/conda-dev": "/astroconda-dev",
}

// TransactionRecord is one successful package download parsed from an access
// log. PackageName is derived from RequestPath and is only present when the
// path named a package archive.
type TransactionRecord struct {
	ClientAddr  string    `json:"ipaddress"`
	Hostname    string    `json:"hostname"`
	Timestamp   time.Time `json:"date"`
	RequestPath string    `json:"path"`
	Status      int       `json:"status"`
	Size        int64     `json:"size"`
	PackageName string    `json:"name"`
}

// Channel returns the distribution channel for the record: the leading
// segment of the request path, or "" if the path is too shallow.
func (r TransactionRecord) Channel() string {
	segs := strings.Split(strings.TrimPrefix(r.RequestPath, "/"), "/")
	if len(segs) < 2 {
		return ""
	}
	return segs[0]
}

// key is the identity used for exact-row deduplication. The timestamp is
// rendered to a fixed format rather than compared as a time.Time value so
// that two parses of the same line (which carry distinct Location pointers)
// still collide.
func (r TransactionRecord) key() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%d\x00%d\x00%s",
		r.ClientAddr,
		r.Hostname,
		r.Timestamp.Format(time.RFC3339),
		r.RequestPath,
		r.Status,
		r.Size,
		r.PackageName)
}

// Dataset is the durable aggregate: the accumulated record table plus the set
// of file fingerprints whose contents have already been merged into it.
type Dataset struct {
	Records  []TransactionRecord
	Ingested map[Fingerprint]struct{}
}

// NewDataset returns an empty dataset, the state of a first run.
func NewDataset() *Dataset {
	return &Dataset{
		Ingested: make(map[Fingerprint]struct{}),
	}
}

// HasIngested reports whether a file with the given fingerprint has already
// been merged.
func (d *Dataset) HasIngested(fp Fingerprint) bool {
	_, ok := d.Ingested[fp]
	return ok
}

// FilterPackages keeps only the records that represent successful package
// downloads: HTTP 200 or 302 with a package-archive path.
func FilterPackages(records []TransactionRecord) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.Status != 200 && r.Status != 302 {
			continue
		}
		if !strings.Contains(r.RequestPath, PackageSuffix) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortByTimestamp sorts records ascending by timestamp. The sort is stable so
// same-instant records keep their file order.
func SortByTimestamp(records []TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// DedupRecords drops exact duplicate rows, keeping first occurrences in
// order.
func DedupRecords(records []TransactionRecord) []TransactionRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		k := r.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// NormalizeChannels rewrites legacy channel names in each record's request
// path to their modern equivalents. Applying it twice is a no-op.
func NormalizeChannels(records []TransactionRecord) {
	for i := range records {
		for old, repl := range channelAliases {
			records[i].RequestPath = strings.Replace(records[i].RequestPath, old, repl, -1)
		}
	}
}
