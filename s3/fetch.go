// Package s3 downloads access logs from an S3 bucket into a local spool
// directory so they can be ingested like any other log file. Objects already
// present in the spool are not downloaded again; the ingestion engine's
// fingerprinting makes re-downloads harmless anyway.
package s3

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// Fetcher lists and downloads log objects under one bucket/prefix.
type Fetcher struct {
	bucket string
	prefix string

	s3   *s3.S3
	sess *session.Session
}

// NewFetcher returns a Fetcher for the given region, bucket, and key prefix.
func NewFetcher(region, bucket, prefix string) (*Fetcher, error) {
	f := &Fetcher{
		bucket: bucket,
		prefix: prefix,
	}
	var err error
	f.sess, err = session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting aws session")
	}
	f.s3 = s3.New(f.sess)
	return f, nil
}

// Fetch downloads every object under the configured prefix into spoolDir and
// returns the local paths, including those of objects that were already
// spooled. Object keys are flattened to base names inside the spool.
func (f *Fetcher) Fetch(spoolDir string) ([]string, error) {
	if err := os.MkdirAll(spoolDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating spool dir %s", spoolDir)
	}
	resp, err := f.s3.ListObjects(&s3.ListObjectsInput{
		Bucket: aws.String(f.bucket),
		Prefix: aws.String(f.prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}

	paths := make([]string, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		local := filepath.Join(spoolDir, filepath.Base(*obj.Key))
		if _, err := os.Stat(local); err == nil {
			paths = append(paths, local)
			continue
		}
		if err := f.download(*obj.Key, local); err != nil {
			return nil, err
		}
		paths = append(paths, local)
	}
	return paths, nil
}

// download writes one object to local via a temp file, so a partial download
// never masquerades as a spooled log.
func (f *Fetcher) download(key, local string) error {
	result, err := f.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "fetching %v", key)
	}
	defer result.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(local), ".spool-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	_, err = io.Copy(tmp, result.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "downloading %v", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), local), "moving into spool")
}
