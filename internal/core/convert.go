package core

// convert.go turns raw CSV text into typed cells.
//
// These functions handle the usual shape of user-provided CSV data:
//   - Missing-value markers (empty, NA, N/A, null, NaN, ...)
//   - Integer and decimal columns, including scientific notation
//   - Integer columns with gaps, which become decimal columns
//
// Type inference is per column: a column is numeric only when every
// non-missing cell in it is numeric.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// integerRegex matches plain integer literals.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// missingValues are the cell contents treated as null.
var missingValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// ParseNumber parses s as a decimal number.
// Surrounding whitespace is ignored. Returns false for anything that is not
// a finite number in plain or scientific notation (hex, inf and nan are
// rejected).
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInteger parses s as an int64 integer literal.
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !integerRegex.MatchString(s) {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// isMissing reports whether a raw cell denotes a missing value.
func isMissing(s string) bool {
	_, ok := missingValues[s]
	return ok
}

// columnKind is the inferred storage type of a column.
type columnKind int

const (
	columnString columnKind = iota
	columnInteger
	columnFloat
)

// inferColumn decides the kind of column col across all records.
func inferColumn(records [][]string, col int) columnKind {
	allInt, allNum, hasNull := true, true, false

	for _, rec := range records {
		raw := rec[col]
		if isMissing(raw) {
			hasNull = true
			continue
		}
		if allInt {
			if _, ok := parseInteger(raw); !ok {
				allInt = false
			}
		}
		if _, ok := ParseNumber(raw); !ok {
			allNum = false
			break
		}
	}

	switch {
	case allInt && !hasNull:
		return columnInteger
	case allNum:
		return columnFloat
	default:
		return columnString
	}
}

// convertCell builds the typed cell for raw under the column's kind.
func convertCell(raw string, kind columnKind) Cell {
	if isMissing(raw) {
		return NullCell()
	}

	switch kind {
	case columnInteger:
		if i, ok := parseInteger(raw); ok {
			return IntCell(i)
		}
	case columnFloat:
		if f, ok := ParseNumber(raw); ok {
			return FloatCell(f)
		}
	}
	return StringCell(raw)
}

// convertRecords types every column and returns rows aligned with the header.
// Each record must already have exactly width fields.
func convertRecords(records [][]string, width int) []Row {
	kinds := make([]columnKind, width)
	for col := range kinds {
		kinds[col] = inferColumn(records, col)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, width)
		for col, raw := range rec {
			row[col] = convertCell(raw, kinds[col])
		}
		rows[i] = row
	}
	return rows
}
