package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,age")...),
			expected: "name,age",
		},
		{
			name:     "file without BOM",
			input:    []byte("name,age"),
			expected: "name,age",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a'},
			expected: string([]byte{0xEF, 0xBB, 'a'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := "name,age\nAlice,30\n"
	counter := NewCountingReader(strings.NewReader(input))

	if _, err := io.Copy(io.Discard, counter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", counter.BytesRead, len(input))
	}
}

func TestValidateUTF8(t *testing.T) {
	if err := validateUTF8([]string{"Zoë", "東京"}, 2); err != nil {
		t.Errorf("valid record: unexpected error %v", err)
	}

	err := validateUTF8([]string{"ok", "bad\xff"}, 7)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("error = %v, want ErrInvalidEncoding", err)
	}
	if !strings.Contains(err.Error(), "line 7") {
		t.Errorf("error should name the line: %v", err)
	}
}
