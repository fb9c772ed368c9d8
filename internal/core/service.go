package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/csvapi/internal/config"
	"github.com/JonMunkholm/csvapi/internal/logging"
	"github.com/google/uuid"
)

// Service provides the dataset operations used by the HTTP layer.
type Service struct {
	store   Store
	limiter *UploadLimiter

	// Replaceable in tests.
	now   func() time.Time
	newID func() (string, error)
}

// NewService creates a Service over store with upload limits from cfg.
func NewService(store Store, cfg config.UploadConfig) *Service {
	return &Service{
		store:   store,
		limiter: NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		now:     time.Now,
		newID:   newDatasetID,
	}
}

// newDatasetID returns a random UUID in canonical text form.
func newDatasetID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate dataset id: %w", err)
	}
	return id.String(), nil
}

// Ingest parses an uploaded CSV and stores it as a new dataset.
//
// The file name is checked before anything is read. The content is parsed
// completely before the dataset is inserted, so on any error nothing is
// stored. Parse failures are returned as *IngestError.
func (s *Service) Ingest(ctx context.Context, fileName string, r io.Reader) (*IngestResult, error) {
	if err := ValidateFileName(fileName); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx, "file_name", fileName)
	start := s.now()

	counter := NewCountingReader(r)
	columns, rows, err := ParseCSV(ctx, counter)
	if err != nil {
		logger.Error("error processing CSV", "error", err, "bytes", counter.BytesRead)
		return nil, &IngestError{FileName: fileName, Err: err}
	}

	id, err := s.newID()
	if err != nil {
		return nil, &IngestError{FileName: fileName, Err: err}
	}

	ds := &Dataset{
		ID:        id,
		FileName:  fileName,
		Columns:   columns,
		Rows:      rows,
		CreatedAt: s.now(),
	}
	if err := s.store.Insert(ds); err != nil {
		return nil, &IngestError{FileName: fileName, Err: err}
	}

	duration := s.now().Sub(start)
	logger.Info("dataset created",
		"dataset_id", id,
		"rows", len(rows),
		"columns", len(columns),
		"bytes", counter.BytesRead,
		"duration_ms", duration.Milliseconds(),
	)

	return &IngestResult{
		DatasetID:        id,
		FileName:         fileName,
		Columns:          columns,
		Rows:             len(rows),
		AccessURL:        AccessURL(id),
		FilterURLExample: FilterURL(id) + "?your_column_name=value",
		Duration:         duration,
	}, nil
}

// Dataset returns the stored dataset with the given id, or ErrNotFound.
func (s *Service) Dataset(id string) (*Dataset, error) {
	ds, ok := s.store.Lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	return ds, nil
}

// Datasets returns summaries of all stored datasets, oldest first.
func (s *Service) Datasets() []DatasetInfo {
	return s.store.List()
}

// DatasetCount returns the number of stored datasets.
func (s *Service) DatasetCount() int {
	return s.store.Len()
}

// Filter returns the rows of dataset id matching every constraint.
// Returns ErrNotFound without evaluating constraints if id is unknown.
func (s *Service) Filter(ctx context.Context, id string, constraints Constraints) (*FilterResult, error) {
	ds, err := s.Dataset(id)
	if err != nil {
		return nil, err
	}
	return ApplyFilter(ctx, ds, constraints)
}

// UploadLimiterStatus returns the current upload concurrency state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
