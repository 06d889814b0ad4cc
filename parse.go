package logparse

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// linePattern matches one apache/nginx access log line. The request-line
// group accommodates PUTs as well as a second URL token (normally "-"), and
// the size field is absent in some log formats.
const linePattern = `^(?P<ipaddress>\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}) \S+ \S+ \[(?P<date>\d{2}/[a-zA-Z]{3}/\d{4}):(?P<time>\d{2}:\d{2}:\d{2}) (?P<offset>[+-]\d{4})\] ".* (?P<path>.*?) .*" (?P<status>\d+)(?: (?P<size>\d+|-))?`

// Expected per-line parse failures. Callers count these and move on; they
// never abort a file.
var (
	// ErrNoMatch means the line does not conform to the access-log grammar.
	ErrNoMatch = errors.New("line does not match log grammar")
	// ErrIncompleteCapture means the line matched the outer grammar but a
	// required field was empty.
	ErrIncompleteCapture = errors.New("required field not captured")
)

// RawFields holds the captured groups of one log line as strings. Semantic
// conversion (date and integer parsing) is the caller's job.
type RawFields struct {
	ClientAddr string
	Date       string
	Time       string
	Offset     string
	Path       string
	Status     string
	Size       string
}

// LineParser parses raw access-log lines into RawFields. It holds its own
// compiled pattern rather than sharing a package global, so each engine owns
// its parser.
type LineParser struct {
	re    *regexp.Regexp
	names []string
}

// NewLineParser returns a parser for the standard access-log grammar.
func NewLineParser() *LineParser {
	re := regexp.MustCompile(linePattern)
	return &LineParser{re: re, names: re.SubexpNames()}
}

// Parse parses one log line. It returns ErrNoMatch when the line doesn't
// match the grammar at all, and ErrIncompleteCapture when a required group
// came up empty. Parse has no side effects.
func (p *LineParser) Parse(line string) (RawFields, error) {
	var rf RawFields
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return rf, ErrNoMatch
	}
	for i, name := range p.names {
		switch name {
		case "ipaddress":
			rf.ClientAddr = m[i]
		case "date":
			rf.Date = m[i]
		case "time":
			rf.Time = m[i]
		case "offset":
			rf.Offset = m[i]
		case "path":
			rf.Path = m[i]
		case "status":
			rf.Status = m[i]
		case "size":
			rf.Size = m[i]
		}
	}
	if rf.ClientAddr == "" || rf.Date == "" || rf.Time == "" || rf.Path == "" || rf.Status == "" {
		return RawFields{}, ErrIncompleteCapture
	}
	return rf, nil
}

// dateLayouts are tried in order when interpreting the captured date field.
// Logs in the wild are not entirely consistent about it.
var dateLayouts = []string{
	"02/Jan/2006",
	"2006-01-02",
	"02/01/2006",
}

// Timestamp converts the captured date, time and UTC-offset fields into a
// single time.Time carrying the log's own offset.
func (rf RawFields) Timestamp() (time.Time, error) {
	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		day, err = time.Parse(layout, rf.Date)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "interpreting date %q", rf.Date)
	}
	clock := rf.Time
	if clock == "" {
		clock = "00:00:00"
	}
	offset := rf.Offset
	if offset == "" {
		offset = "+0000"
	}
	ts, err := time.Parse("2006-01-02 15:04:05 -0700",
		day.Format("2006-01-02")+" "+clock+" "+offset)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "interpreting time %q %q", rf.Time, rf.Offset)
	}
	return ts, nil
}
