package logparse

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

// fingerprintChunkSize bounds memory use when hashing arbitrarily large
// files.
const fingerprintChunkSize = 4096

// Fingerprint is the hex MD5 digest of a log file's on-disk bytes. It is an
// idempotency key only: two files with the same content are the same file for
// ingestion purposes, whatever their paths or mtimes.
type Fingerprint string

// FingerprintReader computes the fingerprint of everything readable from r,
// in fixed-size chunks.
func FingerprintReader(r io.Reader) (Fingerprint, error) {
	h := md5.New()
	buf := make([]byte, fingerprintChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "reading for fingerprint")
		}
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// FingerprintFile computes the fingerprint of the file as stored on disk. For
// compressed logs that is the compressed bytes, not the decompressed content.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	fp, err := FingerprintReader(f)
	if err != nil {
		return "", errors.Wrapf(err, "fingerprinting %s", path)
	}
	return fp, nil
}
