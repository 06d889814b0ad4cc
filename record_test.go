package logparse

import (
	"testing"
	"time"
)

func rec(addr, path string, status int, ts time.Time) TransactionRecord {
	name, _ := ExtractName(path)
	return TransactionRecord{
		ClientAddr:  addr,
		Timestamp:   ts,
		RequestPath: path,
		Status:      status,
		PackageName: name,
	}
}

func TestFilterPackages(t *testing.T) {
	ts := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	records := []TransactionRecord{
		rec("1.1.1.1", "/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts),
		rec("1.1.1.2", "/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", 302, ts),
		rec("1.1.1.3", "/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", 404, ts),
		rec("1.1.1.4", "/chan/noarch/repodata.json", 200, ts),
	}
	got := FilterPackages(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, r := range got {
		if r.Status != 200 && r.Status != 302 {
			t.Errorf("status %d survived the filter", r.Status)
		}
	}
}

func TestSortByTimestamp(t *testing.T) {
	base := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	records := []TransactionRecord{
		rec("1.1.1.1", "/chan/linux-64/a-1-1.tar.bz2", 200, base.Add(2*time.Hour)),
		rec("1.1.1.2", "/chan/linux-64/b-1-1.tar.bz2", 200, base),
		rec("1.1.1.3", "/chan/linux-64/c-1-1.tar.bz2", 200, base.Add(time.Hour)),
	}
	SortByTimestamp(records)
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("records out of order at %d: %v", i, records)
		}
	}
}

func TestDedupRecords(t *testing.T) {
	ts := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	a := rec("1.1.1.1", "/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts)
	b := rec("1.1.1.2", "/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts)
	got := DedupRecords([]TransactionRecord{a, b, a, a, b})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(got), got)
	}
}

func TestDedupDistinguishesOffsets(t *testing.T) {
	// Same wall-clock instant parsed twice gets distinct Location pointers;
	// those must still dedup.
	p := NewLineParser()
	lr := NewLogReader(p, nil)
	r1, err := lr.parseLine(goodLine)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	r2, err := lr.parseLine(goodLine)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	got := DedupRecords([]TransactionRecord{r1, r2})
	if len(got) != 1 {
		t.Fatalf("identical lines did not dedup: %v", got)
	}
}

func TestNormalizeChannelsIdempotent(t *testing.T) {
	ts := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	records := []TransactionRecord{
		rec("1.1.1.1", "/conda-dev/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts),
		rec("1.1.1.2", "/astroconda/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts),
	}
	NormalizeChannels(records)
	if records[0].RequestPath != "/astroconda-dev/linux-64/numpy-1.21.0-py39h.tar.bz2" {
		t.Errorf("legacy channel not rewritten: %v", records[0].RequestPath)
	}
	if records[1].RequestPath != "/astroconda/linux-64/numpy-1.21.0-py39h.tar.bz2" {
		t.Errorf("unrelated channel rewritten: %v", records[1].RequestPath)
	}
	once := records[0].RequestPath
	NormalizeChannels(records)
	if records[0].RequestPath != once {
		t.Errorf("normalization not idempotent: %v", records[0].RequestPath)
	}
}

func TestChannel(t *testing.T) {
	ts := time.Now()
	r := rec("1.1.1.1", "/astroconda-dev/linux-64/numpy-1.21.0-py39h.tar.bz2", 200, ts)
	if ch := r.Channel(); ch != "astroconda-dev" {
		t.Errorf("wrong channel: %q", ch)
	}
	r.RequestPath = "/shallow"
	if ch := r.Channel(); ch != "" {
		t.Errorf("expected empty channel, got %q", ch)
	}
}
