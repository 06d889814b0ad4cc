package logparse

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ReadStats counts per-line outcomes for one file. Unparseable covers grammar
// mismatches and failed semantic conversion; NonPackage counts lines that
// parsed fine but did not name a package archive. The two are reported
// separately.
type ReadStats struct {
	Lines       int
	Records     int
	Unparseable int
	NonPackage  int
	Ignored     int
}

// Add accumulates other into s.
func (s *ReadStats) Add(other ReadStats) {
	s.Lines += other.Lines
	s.Records += other.Records
	s.Unparseable += other.Unparseable
	s.NonPackage += other.NonPackage
	s.Ignored += other.Ignored
}

// LogReader reads a whole access-log file, raw or gzipped, and produces one
// TransactionRecord per fully parseable package-download line. Bad lines
// never abort a file; open failures, decompression failures, and scan
// failures reject the whole file as unreadable.
type LogReader struct {
	parser *LineParser

	// IgnoreHosts are literal substrings; any line containing one is skipped
	// before parsing. The loose containment test (rather than an exact field
	// match) is deliberate: it is used to drop whole classes of traffic such
	// as security scanners.
	IgnoreHosts []string
}

// NewLogReader returns a reader using the given parser.
func NewLogReader(parser *LineParser, ignoreHosts []string) *LogReader {
	return &LogReader{parser: parser, IgnoreHosts: ignoreHosts}
}

// ReadFile opens, decompresses if needed, and parses every line of the file
// at path. The returned slice is a finite single pass over the file; re-read
// by calling ReadFile again.
func (lr *LogReader) ReadFile(path string) ([]TransactionRecord, ReadStats, error) {
	var stats ReadStats
	f, err := os.Open(path)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, stats, errors.Wrapf(err, "decompressing %s", path)
		}
		defer gz.Close()
		r = gz
	}
	records, stats, err := lr.readLines(r)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "reading %s", path)
	}
	return records, stats, nil
}

func (lr *LogReader) readLines(r io.Reader) ([]TransactionRecord, ReadStats, error) {
	var stats ReadStats
	var records []TransactionRecord

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
line:
	for scan.Scan() {
		stats.Lines++
		text := scan.Text()
		for _, host := range lr.IgnoreHosts {
			if strings.Contains(text, host) {
				stats.Ignored++
				continue line
			}
		}
		rec, err := lr.parseLine(text)
		if err != nil {
			if errors.Cause(err) == ErrNotAPackage {
				stats.NonPackage++
			} else {
				stats.Unparseable++
			}
			continue
		}
		stats.Records++
		records = append(records, rec)
	}
	// A scanner error means the file itself is bad (mid-stream gzip
	// corruption, a line over the buffer limit), not just one bad line. The
	// whole file is rejected so it is retried rather than half-ingested.
	if err := scan.Err(); err != nil {
		return nil, stats, errors.Wrap(err, "scanning lines")
	}
	return records, stats, nil
}

// parseLine does the full line-to-record conversion: grammar match, lenient
// date interpretation, integer conversion, and package-name extraction.
func (lr *LogReader) parseLine(line string) (TransactionRecord, error) {
	var rec TransactionRecord
	rf, err := lr.parser.Parse(line)
	if err != nil {
		return rec, err
	}
	ts, err := rf.Timestamp()
	if err != nil {
		return rec, err
	}
	status, err := strconv.Atoi(rf.Status)
	if err != nil {
		return rec, errors.Wrapf(err, "status %q", rf.Status)
	}
	// Size is optional; some log formats omit it or log "-".
	var size int64
	if rf.Size != "" && rf.Size != "-" {
		size, err = strconv.ParseInt(rf.Size, 10, 64)
		if err != nil {
			return rec, errors.Wrapf(err, "size %q", rf.Size)
		}
	}
	name, err := ExtractName(rf.Path)
	if err != nil {
		return rec, err
	}
	rec = TransactionRecord{
		ClientAddr:  rf.ClientAddr,
		Timestamp:   ts,
		RequestPath: rf.Path,
		Status:      status,
		Size:        size,
		PackageName: name,
	}
	return rec, nil
}
