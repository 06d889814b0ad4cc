package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rendinam/logparse/store"
)

var data = `192.168.1.10 - - [01/Feb/2020:13:45:09 -0500] "GET /astroconda/linux-64/numpy-1.21.0-py39h.tar.bz2 HTTP/1.1" 200 4194304 "-" "conda/4.8.2"
10.7.7.7 - - [01/Feb/2020:13:46:00 -0500] "GET /astroconda/linux-64/stsci-hst-2020.1-py37.tar.bz2 HTTP/1.1" 404 0 "-" "conda/4.8.2"
totally malformed line
`

func newLogFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing log file: %v", err)
	}
	return path
}

func TestIngestRun(t *testing.T) {
	d, err := os.MkdirTemp("", "testingestrun")
	if err != nil {
		t.Fatal("getting temp dir")
	}
	defer os.RemoveAll(d)
	newLogFile(t, d, "access.log")

	cmd := NewMain()
	cmd.Dataset = filepath.Join(d, "dataset.db")
	cmd.Files = []string{filepath.Join(d, "*.log")}
	cmd.LogLevel = "error"
	if err := cmd.Run(); err != nil {
		t.Fatalf("running ingester: %v", err)
	}
	// Second run over the same file must be a no-op.
	if err := cmd.Run(); err != nil {
		t.Fatalf("re-running ingester: %v", err)
	}

	st, err := store.Open("bolt", cmd.Dataset)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()
	ds, err := st.Load()
	if err != nil {
		t.Fatalf("loading dataset: %v", err)
	}
	if len(ds.Records) != 1 {
		t.Fatalf("expected 1 record after two runs, got %d", len(ds.Records))
	}
	if len(ds.Ingested) != 1 {
		t.Fatalf("expected 1 fingerprint, got %d", len(ds.Ingested))
	}
}

func TestIngestRunLevelDB(t *testing.T) {
	d, err := os.MkdirTemp("", "testingestldb")
	if err != nil {
		t.Fatal("getting temp dir")
	}
	defer os.RemoveAll(d)
	newLogFile(t, d, "access.log")

	cmd := NewMain()
	cmd.Dataset = filepath.Join(d, "dataset")
	cmd.Store = "leveldb"
	cmd.Files = []string{filepath.Join(d, "access.log")}
	cmd.LogLevel = "error"
	if err := cmd.Run(); err != nil {
		t.Fatalf("running ingester: %v", err)
	}

	st, err := store.Open("leveldb", cmd.Dataset)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()
	ds, err := st.Load()
	if err != nil {
		t.Fatalf("loading dataset: %v", err)
	}
	if len(ds.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ds.Records))
	}
}

func TestIngestRunNoFiles(t *testing.T) {
	d, err := os.MkdirTemp("", "testingestnofiles")
	if err != nil {
		t.Fatal("getting temp dir")
	}
	defer os.RemoveAll(d)

	cmd := NewMain()
	cmd.Dataset = filepath.Join(d, "dataset.db")
	cmd.LogLevel = "error"
	if err := cmd.Run(); err != nil {
		t.Fatalf("load-and-report-only run failed: %v", err)
	}
}
