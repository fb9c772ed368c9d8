// Package catalog stores books in a relational table.
//
// Two backends implement Repository: PostgreSQL through a pgx pool and
// SQLite through database/sql. Open picks one from the database URL.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire and storage format of publication dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD". JSON null is handled by the
// pointer field holding the Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("published_date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Book is one catalog entry. ISBN is unique across the catalog.
type Book struct {
	ISBN          string `json:"isbn" validate:"required,max=150"`
	Title         string `json:"title" validate:"required,max=150"`
	Author        string `json:"author" validate:"required,max=150"`
	PublishedDate *Date  `json:"published_date"`
}

var validate = validator.New()

// ValidationError lists the fields of a Book that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid book: " + strings.Join(e.Fields, ", ")
}

// Validate checks the required fields and their lengths.
func (b *Book) Validate() error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, describeField(fe))
	}
	return ve
}

// describeField renders one failed rule using the JSON field name.
func describeField(fe validator.FieldError) string {
	name := jsonName(fe.StructField())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func jsonName(field string) string {
	switch field {
	case "ISBN":
		return "isbn"
	case "PublishedDate":
		return "published_date"
	default:
		return strings.ToLower(field)
	}
}
