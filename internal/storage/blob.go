package storage

import (
	"fmt"
	"io"
	"path"
)

// BlobStore holds assignment submission files, addressed by key.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// SubmissionKey builds the canonical key for one uploaded file.
func SubmissionKey(assignmentID, studentID, filename string) string {
	return fmt.Sprintf("submissions/%s/%s/%s", assignmentID, studentID, path.Base(filename))
}
