package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// ============================================================================
// ValidateFileName Tests
// ============================================================================

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{"csv", "people.csv", nil},
		{"uppercase extension", "PEOPLE.CSV", nil},
		{"dotted name", "q1.sales.csv", nil},
		{"empty", "", ErrNoSelectedFile},
		{"text file", "data.txt", ErrFileType},
		{"no extension", "people", ErrFileType},
		{"csv in middle", "people.csv.exe", ErrFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFileName(%q) = %v, want %v", tt.file, err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrInputRejected) {
				t.Errorf("ValidateFileName(%q) should be an input rejection", tt.file)
			}
		})
	}
}

// ============================================================================
// ParseCSV Tests
// ============================================================================

// texts renders parsed rows as strings for comparison.
func texts(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cell.Text()
		}
	}
	return out
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantColumns []string
		wantRows    [][]string
	}{
		{
			name:        "simple CSV",
			input:       "name,age\nAlice,30\nBob,25\n",
			wantColumns: []string{"name", "age"},
			wantRows:    [][]string{{"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name:        "header only",
			input:       "name,age\n",
			wantColumns: []string{"name", "age"},
			wantRows:    [][]string{},
		},
		{
			name:        "quoted field with comma",
			input:       "name,address\nJohn,\"123 Main St, Apt 4\"\n",
			wantColumns: []string{"name", "address"},
			wantRows:    [][]string{{"John", "123 Main St, Apt 4"}},
		},
		{
			name:        "quoted field with newline",
			input:       "name,notes\nJohn,\"Line 1\nLine 2\"\n",
			wantColumns: []string{"name", "notes"},
			wantRows:    [][]string{{"John", "Line 1\nLine 2"}},
		},
		{
			name:        "CRLF line endings",
			input:       "a,b\r\n1,2\r\n",
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "BOM prefix",
			input:       "\xEF\xBB\xBFname,age\nAlice,30\n",
			wantColumns: []string{"name", "age"},
			wantRows:    [][]string{{"Alice", "30"}},
		},
		{
			name:        "short row padded with nulls",
			input:       "a,b,c\n1,2\n",
			wantColumns: []string{"a", "b", "c"},
			wantRows:    [][]string{{"1", "2", "nan"}},
		},
		{
			name:        "blank lines skipped",
			input:       "\nname\n\nAlice\n",
			wantColumns: []string{"name"},
			wantRows:    [][]string{{"Alice"}},
		},
		{
			name:        "integer column with gap becomes float",
			input:       "age\n30\n\n25\nNA\n",
			wantColumns: []string{"age"},
			wantRows:    [][]string{{"30.0"}, {"25.0"}, {"nan"}},
		},
		{
			name:        "blank and duplicate headers",
			input:       "a,,a,a\n1,2,3,4\n",
			wantColumns: []string{"a", "Unnamed: 1", "a.1", "a.2"},
			wantRows:    [][]string{{"1", "2", "3", "4"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, rows, err := ParseCSV(context.Background(), strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if !reflect.DeepEqual(columns, tt.wantColumns) {
				t.Errorf("columns = %q, want %q", columns, tt.wantColumns)
			}
			if got := texts(rows); !reflect.DeepEqual(got, tt.wantRows) {
				t.Errorf("rows = %q, want %q", got, tt.wantRows)
			}
		})
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		contains string
	}{
		{name: "empty file", input: "", wantErr: ErrNoColumns},
		{name: "only blank lines", input: "\n\n", wantErr: ErrNoColumns},
		{name: "invalid UTF-8", input: "name\nbad\xff\n", wantErr: ErrInvalidEncoding},
		{name: "too many fields", input: "a,b\n1,2\n1,2,3\n", contains: "expected 2 fields in line 3, saw 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseCSV(context.Background(), strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ParseCSV() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err, tt.contains)
			}
		})
	}
}

func TestParseCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ParseCSV(ctx, strings.NewReader("name\nAlice\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"x", "y"}, []string{"x", "y"}},
		{[]string{"", ""}, []string{"Unnamed: 0", "Unnamed: 1"}},
		{[]string{"a", "a", "a.1"}, []string{"a", "a.1", "a.1.1"}},
		{[]string{"a.1", "a", "a"}, []string{"a.1", "a", "a.2"}},
	}

	for _, tt := range tests {
		if got := normalizeHeader(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
