// Package archive persists the original uploaded case documents so an
// evaluation can later be traced back to its source file. Backends: local
// filesystem (default) or S3. Archival is best-effort; the evaluator logs
// and continues when a save fails.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archiver stores and retrieves original case documents, keyed by the
// object key returned from Save.
type Archiver interface {
	Save(ctx context.Context, caseID, filename string, data io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Backend selects the archive implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
	BackendOff   Backend = "off"
)

// NewFromEnv builds an Archiver from ARCHIVE_BACKEND (local, s3, or off).
// "off" disables archival and returns a nil Archiver with no error.
func NewFromEnv() (Archiver, error) {
	backend := Backend(os.Getenv("ARCHIVE_BACKEND"))
	if backend == "" {
		backend = BackendLocal
	}

	switch backend {
	case BackendLocal:
		dir := os.Getenv("ARCHIVE_LOCAL_DIR")
		if dir == "" {
			dir = "./data/case-documents"
		}
		return NewLocal(dir)

	case BackendS3:
		bucket := os.Getenv("ARCHIVE_S3_BUCKET")
		if bucket == "" {
			return nil, errors.New("ARCHIVE_S3_BUCKET is required for the s3 archive backend")
		}
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-1"
		}
		return NewS3(S3Config{
			Bucket:    bucket,
			Region:    region,
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})

	case BackendOff:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown archive backend: %s", backend)
	}
}

// objectKey builds a stable key of the form yyyy/mm/<caseID>/<name>, with
// path separators and spaces stripped from the original filename.
func objectKey(caseID, filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "document"
	}
	now := time.Now().UTC()
	return fmt.Sprintf("%04d/%02d/%s/%s", now.Year(), now.Month(), caseID, name)
}
