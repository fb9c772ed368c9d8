package core

import (
	"errors"
	"fmt"
)

// ErrInputRejected marks upload requests that are unusable before any parsing.
var ErrInputRejected = errors.New("input rejected")

var (
	// ErrNoFile is returned when the request has no file field.
	ErrNoFile = fmt.Errorf("%w: no file part in the request", ErrInputRejected)

	// ErrNoSelectedFile is returned when the file field has an empty filename.
	ErrNoSelectedFile = fmt.Errorf("%w: no selected file", ErrInputRejected)

	// ErrFileType is returned for file names without a .csv extension.
	ErrFileType = fmt.Errorf("%w: file type not allowed, only CSV files are accepted", ErrInputRejected)

	// ErrFileTooLarge is returned when the upload exceeds the size limit.
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrInputRejected)
)

// ErrNotFound is returned for dataset identifiers that were never issued.
var ErrNotFound = errors.New("dataset not found")

// ErrIngestFailed is matched by every IngestError.
var ErrIngestFailed = errors.New("ingest failed")

// ErrRateLimited is returned when a client exceeds its request rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrDuplicateID is returned by a Store when an identifier is already taken.
var ErrDuplicateID = errors.New("dataset id already exists")

// ErrNoColumns is returned for uploads without a header line.
var ErrNoColumns = errors.New("no columns to parse from file")

// ErrInvalidEncoding is returned for content that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("encoding error: content is not valid UTF-8")

// IngestError reports why an uploaded file could not become a dataset.
type IngestError struct {
	FileName string
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("failed to process CSV %q: %v", e.FileName, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIngestFailed) hold for every IngestError.
func (e *IngestError) Is(target error) bool { return target == ErrIngestFailed }

// FilterError reports an unexpected failure while evaluating one constraint.
type FilterError struct {
	DatasetID string
	Column    string
	Err       error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("error applying filter on column %q: %v", e.Column, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }
