package core

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	CellNull CellKind = iota
	CellString
	CellNumber
)

// String returns the kind name.
func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	default:
		return "null"
	}
}

// Cell is a single dataset value: a string, a number or null.
// Numbers remember whether they came from an integer column so they render
// the same way on every request.
type Cell struct {
	kind    CellKind
	str     string
	num     float64
	integer int64
	isInt   bool
}

// NullCell returns a missing value.
func NullCell() Cell { return Cell{} }

// StringCell returns a string value.
func StringCell(s string) Cell { return Cell{kind: CellString, str: s} }

// IntCell returns an integer number.
func IntCell(i int64) Cell {
	return Cell{kind: CellNumber, num: float64(i), integer: i, isInt: true}
}

// FloatCell returns a decimal number.
func FloatCell(f float64) Cell { return Cell{kind: CellNumber, num: f} }

// Kind returns the cell's variant.
func (c Cell) Kind() CellKind { return c.kind }

// Text renders the cell as a string for exact-match comparison.
// Integers render without a decimal point ("30"), decimals always carry one
// ("30.0", "0.5") or use exponent form outside [1e-4, 1e16), and nulls
// render as "nan".
func (c Cell) Text() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		if c.isInt {
			return strconv.FormatInt(c.integer, 10)
		}
		return formatFloat(c.num)
	default:
		return "nan"
	}
}

// Number returns the numeric value of the cell.
// String cells are parsed with ParseNumber; nulls never have a value.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case CellNumber:
		return c.num, true
	case CellString:
		return ParseNumber(c.str)
	default:
		return 0, false
	}
}

// MarshalJSON encodes the cell as a JSON string, number or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellString:
		return json.Marshal(c.str)
	case CellNumber:
		if c.isInt {
			return strconv.AppendInt(nil, c.integer, 10), nil
		}
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.num)
	default:
		return []byte("null"), nil
	}
}

// formatFloat renders f with the shortest representation that round-trips,
// always keeping a fractional part for plain notation.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Row is one dataset record; cells are aligned with Dataset.Columns.
type Row []Cell

// Dataset is an in-memory table built from one CSV upload.
// A Dataset is immutable once it has been inserted into a Store.
type Dataset struct {
	ID        string
	FileName  string
	Columns   []string
	Rows      []Row
	CreatedAt time.Time
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, col := range d.Columns {
		if col == name {
			return i, true
		}
	}
	return -1, false
}

// Records returns a JSON view over all rows of the dataset.
func (d *Dataset) Records() Records {
	return Records{Columns: d.Columns, Rows: d.Rows}
}

// Info returns a summary of the dataset.
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:        d.ID,
		FileName:  d.FileName,
		Columns:   len(d.Columns),
		Rows:      len(d.Rows),
		CreatedAt: d.CreatedAt,
		AccessURL: AccessURL(d.ID),
	}
}

// Records serializes rows as a JSON array of objects keyed by column name.
// Keys appear in header order.
type Records struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (r Records) Len() int { return len(r.Rows) }

// MarshalJSON encodes the rows as [{"col": value, ...}, ...].
func (r Records) MarshalJSON() ([]byte, error) {
	keys := make([][]byte, len(r.Columns))
	for i, col := range r.Columns {
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range r.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, cell := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			v, err := cell.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DatasetInfo summarizes a stored dataset.
type DatasetInfo struct {
	ID        string    `json:"dataset_id"`
	FileName  string    `json:"file_name"`
	Columns   int       `json:"columns"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
	AccessURL string    `json:"access_url"`
}

// IngestResult describes a successfully stored upload.
type IngestResult struct {
	DatasetID        string
	FileName         string
	Columns          []string
	Rows             int
	AccessURL        string
	FilterURLExample string
	Duration         time.Duration
}

// AccessURL returns the path serving the full dataset.
func AccessURL(id string) string {
	return "/data/" + id
}

// FilterURL returns the path serving filtered queries over the dataset.
func FilterURL(id string) string {
	return "/data/" + id + "/filter"
}

// Constraints maps column names to the value each must equal.
// All constraints must hold for a row to match.
type Constraints map[string]string

// ConstraintsFromQuery builds constraints from URL query parameters.
// When a key is repeated the last value wins.
func ConstraintsFromQuery(q url.Values) Constraints {
	c := make(Constraints, len(q))
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		c[key] = values[len(values)-1]
	}
	return c
}

// Columns returns the constrained column names in sorted order.
func (c Constraints) Columns() []string {
	cols := make([]string, 0, len(c))
	for col := range c {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// FilterResult is the outcome of applying constraints to a dataset.
type FilterResult struct {
	DatasetID string
	Records   Records
	Applied   []string // Columns whose constraint was evaluated
	Skipped   []string // Columns not present in the dataset
}

// Empty reports whether no rows matched.
func (r *FilterResult) Empty() bool {
	return r.Records.Len() == 0
}
