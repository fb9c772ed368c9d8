package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvapi/internal/config"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), config.UploadConfig{
		MaxFileSize:   1 << 20,
		MaxConcurrent: 2,
		MaxWaitTime:   time.Second,
	})
}

func TestService_Ingest(t *testing.T) {
	svc := newTestService()

	result, err := svc.Ingest(context.Background(), "people.csv", strings.NewReader("name,age\nAlice,30\nBob,25\n"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if result.Rows != 2 {
		t.Errorf("Rows = %d, want 2", result.Rows)
	}
	if len(result.Columns) != 2 {
		t.Errorf("Columns = %q, want 2 columns", result.Columns)
	}
	if result.AccessURL != "/data/"+result.DatasetID {
		t.Errorf("AccessURL = %q", result.AccessURL)
	}
	wantFilter := "/data/" + result.DatasetID + "/filter?your_column_name=value"
	if result.FilterURLExample != wantFilter {
		t.Errorf("FilterURLExample = %q, want %q", result.FilterURLExample, wantFilter)
	}

	ds, err := svc.Dataset(result.DatasetID)
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}
	if ds.FileName != "people.csv" {
		t.Errorf("FileName = %q, want %q", ds.FileName, "people.csv")
	}
	if svc.DatasetCount() != 1 {
		t.Errorf("DatasetCount() = %d, want 1", svc.DatasetCount())
	}
}

func TestService_IngestDistinctIDs(t *testing.T) {
	svc := newTestService()
	seen := make(map[string]bool)

	for i := 0; i < 5; i++ {
		result, err := svc.Ingest(context.Background(), "same.csv", strings.NewReader("a\n1\n"))
		if err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
		if seen[result.DatasetID] {
			t.Fatalf("dataset id %q issued twice", result.DatasetID)
		}
		seen[result.DatasetID] = true
	}

	if got := len(svc.Datasets()); got != 5 {
		t.Errorf("Datasets() returned %d, want 5", got)
	}
}

func TestService_IngestRejected(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  string
		wantErr  error
	}{
		{"wrong extension", "data.txt", "name\nAlice\n", ErrFileType},
		{"empty filename", "", "name\nAlice\n", ErrNoSelectedFile},
		{"empty content", "empty.csv", "", ErrNoColumns},
		{"malformed rows", "bad.csv", "a,b\n1,2,3\n", ErrIngestFailed},
		{"invalid encoding", "latin1.csv", "name\nJos\xe9\n", ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()

			_, err := svc.Ingest(context.Background(), tt.fileName, strings.NewReader(tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ingest() error = %v, want %v", err, tt.wantErr)
			}
			if n := svc.DatasetCount(); n != 0 {
				t.Errorf("DatasetCount() = %d after failed ingest, want 0", n)
			}
		})
	}
}

func TestService_IngestIDCollision(t *testing.T) {
	svc := newTestService()
	svc.newID = func() (string, error) { return "fixed", nil }

	if _, err := svc.Ingest(context.Background(), "a.csv", strings.NewReader("x\n1\n")); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	_, err := svc.Ingest(context.Background(), "b.csv", strings.NewReader("y\n2\n"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("second Ingest() error = %v, want ErrDuplicateID", err)
	}

	ds, _ := svc.Dataset("fixed")
	if ds.FileName != "a.csv" {
		t.Errorf("stored dataset replaced by %q", ds.FileName)
	}
}

func TestService_Filter(t *testing.T) {
	svc := newTestService()
	result, err := svc.Ingest(context.Background(), "people.csv", strings.NewReader(peopleCSV))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	filtered, err := svc.Filter(context.Background(), result.DatasetID, Constraints{"age": "30"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if filtered.Records.Len() != 2 {
		t.Errorf("Filter() matched %d rows, want 2", filtered.Records.Len())
	}
}

func TestService_UnknownDataset(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Dataset("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Dataset() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Filter(context.Background(), "nope", Constraints{"a": "1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Filter() error = %v, want ErrNotFound", err)
	}
}

func TestService_WaitForUploads(t *testing.T) {
	svc := newTestService()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := svc.WaitForUploads(ctx); err != nil {
		t.Errorf("WaitForUploads() with no uploads error = %v", err)
	}
	if status := svc.UploadLimiterStatus(); status.Active != 0 || status.MaxConcurrent != 2 {
		t.Errorf("UploadLimiterStatus() = %+v", status)
	}
}
