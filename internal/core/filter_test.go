package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// mustDataset parses csv into a dataset for filter tests.
func mustDataset(t *testing.T, csv string) *Dataset {
	t.Helper()
	columns, rows, err := ParseCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	return &Dataset{ID: "ds-1", FileName: "people.csv", Columns: columns, Rows: rows}
}

// column returns the text of one column across rows.
func column(rows []Row, col int) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[col].Text()
	}
	return out
}

const peopleCSV = "name,age,city,score\n" +
	"Alice,30,NYC,1.5\n" +
	"Bob,25,LA,2\n" +
	"Carol,30,LA,\n" +
	"Dan,41,NYC,30\n"

func TestApplyFilter(t *testing.T) {
	ds := mustDataset(t, peopleCSV)

	tests := []struct {
		name        string
		constraints Constraints
		wantNames   []string
		wantSkipped []string
	}{
		{
			name:        "no constraints returns everything",
			constraints: Constraints{},
			wantNames:   []string{"Alice", "Bob", "Carol", "Dan"},
		},
		{
			name:        "integer column by text",
			constraints: Constraints{"age": "30"},
			wantNames:   []string{"Alice", "Carol"},
		},
		{
			name:        "integer column by decimal value",
			constraints: Constraints{"age": "30.0"},
			wantNames:   []string{"Alice", "Carol"},
		},
		{
			name:        "float column by integer value",
			constraints: Constraints{"score": "2"},
			wantNames:   []string{"Bob"},
		},
		{
			name:        "float column by exact text",
			constraints: Constraints{"score": "2.0"},
			wantNames:   []string{"Bob"},
		},
		{
			name:        "string column",
			constraints: Constraints{"city": "LA"},
			wantNames:   []string{"Bob", "Carol"},
		},
		{
			name:        "string match is case sensitive",
			constraints: Constraints{"city": "la"},
			wantNames:   []string{},
		},
		{
			name:        "constraints combine with AND",
			constraints: Constraints{"age": "30", "city": "LA"},
			wantNames:   []string{"Carol"},
		},
		{
			name:        "null cell matches nan text",
			constraints: Constraints{"score": "nan"},
			wantNames:   []string{"Carol"},
		},
		{
			name:        "unknown column skipped",
			constraints: Constraints{"height": "180", "city": "NYC"},
			wantNames:   []string{"Alice", "Dan"},
			wantSkipped: []string{"height"},
		},
		{
			name:        "only unknown columns returns everything",
			constraints: Constraints{"zzz": "1"},
			wantNames:   []string{"Alice", "Bob", "Carol", "Dan"},
			wantSkipped: []string{"zzz"},
		},
		{
			name:        "no match",
			constraints: Constraints{"age": "99"},
			wantNames:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyFilter(context.Background(), ds, tt.constraints)
			if err != nil {
				t.Fatalf("ApplyFilter() error = %v", err)
			}
			if got := column(result.Records.Rows, 0); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("names = %q, want %q", got, tt.wantNames)
			}
			if !reflect.DeepEqual(result.Skipped, tt.wantSkipped) {
				t.Errorf("Skipped = %q, want %q", result.Skipped, tt.wantSkipped)
			}
			if result.Empty() != (len(tt.wantNames) == 0) {
				t.Errorf("Empty() = %v with %d rows", result.Empty(), len(tt.wantNames))
			}
		})
	}
}

func TestApplyFilter_StringColumnNumericValues(t *testing.T) {
	ds := mustDataset(t, "code\n007\nabc\n7.0\n")

	result, err := ApplyFilter(context.Background(), ds, Constraints{"code": "7"})
	if err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}
	want := []string{"007", "7.0"}
	if got := column(result.Records.Rows, 0); !reflect.DeepEqual(got, want) {
		t.Errorf("codes = %q, want %q", got, want)
	}
}

func TestApplyFilter_DoesNotModifyDataset(t *testing.T) {
	ds := mustDataset(t, peopleCSV)
	before := column(ds.Rows, 0)

	first, err := ApplyFilter(context.Background(), ds, Constraints{"city": "NYC"})
	if err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}
	second, err := ApplyFilter(context.Background(), ds, Constraints{"city": "NYC"})
	if err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}

	if got := column(ds.Rows, 0); !reflect.DeepEqual(got, before) {
		t.Errorf("dataset rows changed: %q, want %q", got, before)
	}
	if !reflect.DeepEqual(column(first.Records.Rows, 0), column(second.Records.Rows, 0)) {
		t.Error("repeated filter returned different rows")
	}
}

func TestApplyFilter_Cancelled(t *testing.T) {
	ds := mustDataset(t, peopleCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ApplyFilter(ctx, ds, Constraints{"age": "30"})

	var fe *FilterError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FilterError", err)
	}
	if fe.Column != "age" {
		t.Errorf("FilterError.Column = %q, want %q", fe.Column, "age")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled: %v", err)
	}
}

func TestApplyFilter_MalformedRow(t *testing.T) {
	ds := &Dataset{
		ID:      "broken",
		Columns: []string{"a", "b"},
		Rows:    []Row{{IntCell(1)}},
	}

	_, err := ApplyFilter(context.Background(), ds, Constraints{"a": "1"})

	var fe *FilterError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FilterError", err)
	}
}

func TestConstraintsFromQuery(t *testing.T) {
	q := map[string][]string{
		"age":  {"25", "30"},
		"city": {"LA"},
		"none": {},
	}

	got := ConstraintsFromQuery(q)
	want := Constraints{"age": "30", "city": "LA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ConstraintsFromQuery() = %v, want %v", got, want)
	}
	if cols := got.Columns(); !reflect.DeepEqual(cols, []string{"age", "city"}) {
		t.Errorf("Columns() = %q, want sorted names", cols)
	}
}
