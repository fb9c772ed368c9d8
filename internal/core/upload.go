package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ContextCheckInterval is how often (in rows) parsing checks for cancellation.
var ContextCheckInterval = 100

// ValidateFileName rejects uploads whose name is empty or lacks a .csv extension.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrNoSelectedFile
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return ErrFileType
	}
	return nil
}

// ParseCSV reads CSV text from r into typed rows.
//
// The first non-blank line is the header. Blank header names become
// "Unnamed: <index>" and repeated names get ".1", ".2" suffixes. Rows
// shorter than the header are padded with nulls; rows longer than the header
// are an error. Content must be valid UTF-8; a leading BOM is ignored.
func ParseCSV(ctx context.Context, r io.Reader) ([]string, []Row, error) {
	cr := csv.NewReader(NewBOMSkippingReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoColumns
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse header: %w", err)
	}
	headerLine, _ := cr.FieldPos(0)
	if err := validateUTF8(header, headerLine); err != nil {
		return nil, nil, err
	}

	columns := normalizeHeader(header)
	width := len(columns)

	var records [][]string
	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse CSV: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if len(record) > width {
			return nil, nil, fmt.Errorf("expected %d fields in line %d, saw %d", width, line, len(record))
		}
		if err := validateUTF8(record, line); err != nil {
			return nil, nil, err
		}
		for len(record) < width {
			record = append(record, "")
		}
		records = append(records, record)
	}

	return columns, convertRecords(records, width), nil
}

// normalizeHeader names blank columns and de-duplicates repeated names.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	next := make(map[string]int, len(header))

	for i, raw := range header {
		base := raw
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}

		name := base
		for n := next[base]; ; n++ {
			if n > 0 {
				name = fmt.Sprintf("%s.%d", base, n)
			}
			if _, taken := used[name]; !taken {
				next[base] = n + 1
				break
			}
		}

		used[name] = struct{}{}
		columns[i] = name
	}
	return columns
}
