package logparse

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func mustTempDir(t *testing.T, prefix string) string {
	t.Helper()
	d, err := os.MkdirTemp("", prefix)
	if err != nil {
		t.Fatal("getting temp dir")
	}
	return d
}

func mustFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestFingerprintContentOnly(t *testing.T) {
	d := mustTempDir(t, "testfingerprint")
	defer os.RemoveAll(d)

	a := mustFile(t, d, "a.log", "some log content\n")
	b := mustFile(t, d, "b.log", "some log content\n")
	c := mustFile(t, d, "c.log", "different content\n")

	fpa, err := FingerprintFile(a)
	if err != nil {
		t.Fatalf("fingerprinting a: %v", err)
	}
	fpb, err := FingerprintFile(b)
	if err != nil {
		t.Fatalf("fingerprinting b: %v", err)
	}
	fpc, err := FingerprintFile(c)
	if err != nil {
		t.Fatalf("fingerprinting c: %v", err)
	}

	if fpa != fpb {
		t.Errorf("same content, different fingerprints: %v vs %v", fpa, fpb)
	}
	if fpa == fpc {
		t.Errorf("different content, same fingerprint: %v", fpa)
	}
	if len(fpa) != 32 {
		t.Errorf("expected 32 hex chars, got %q", fpa)
	}
}

func TestFingerprintChunked(t *testing.T) {
	// Content larger than one chunk must hash the same as a single read.
	big := bytes.Repeat([]byte("0123456789abcdef"), 1024) // 16KiB

	whole, err := FingerprintReader(bytes.NewReader(big))
	if err != nil {
		t.Fatalf("fingerprinting: %v", err)
	}

	d := mustTempDir(t, "testfingerprintchunk")
	defer os.RemoveAll(d)
	path := mustFile(t, d, "big.log", string(big))
	fromFile, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("fingerprinting file: %v", err)
	}
	if whole != fromFile {
		t.Errorf("chunked file hash %v != reader hash %v", fromFile, whole)
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, err := FingerprintFile("/does/not/exist"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
