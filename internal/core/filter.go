package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/csvapi/internal/logging"
)

// ApplyFilter evaluates constraints against ds and returns the matching rows.
//
// Constraints are combined with AND, each one narrowing the working set left
// by the previous. A constraint on a column ds does not have is skipped and
// listed in the result's Skipped field. ds itself is never modified.
//
// A *FilterError is returned if a constraint cannot be evaluated; any partial
// result is discarded.
func ApplyFilter(ctx context.Context, ds *Dataset, constraints Constraints) (*FilterResult, error) {
	logger := logging.WithFields(ctx, "dataset_id", ds.ID)

	working := make([]Row, len(ds.Rows))
	copy(working, ds.Rows)

	result := &FilterResult{DatasetID: ds.ID}

	for _, column := range constraints.Columns() {
		col, ok := ds.ColumnIndex(column)
		if !ok {
			logger.Warn("filter column not found in dataset", "column", column)
			result.Skipped = append(result.Skipped, column)
			continue
		}

		var err error
		working, err = applyConstraint(ctx, working, col, len(ds.Columns), constraints[column])
		if err != nil {
			logger.Error("error applying filter", "column", column, "error", err)
			return nil, &FilterError{DatasetID: ds.ID, Column: column, Err: err}
		}
		result.Applied = append(result.Applied, column)
	}

	result.Records = Records{Columns: ds.Columns, Rows: working}
	return result, nil
}

// applyConstraint keeps the rows whose cell at col matches value.
// The input slice is not modified.
func applyConstraint(ctx context.Context, rows []Row, col, width int, value string) ([]Row, error) {
	want, numeric := ParseNumber(value)

	kept := make([]Row, 0, len(rows))
	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, dataset has %d columns", i, len(row), width)
		}
		if matchCell(row[col], value, want, numeric) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// matchCell reports whether cell equals value as text, or numerically when
// both sides are numbers. numeric is false when value did not parse, which
// leaves only the text comparison.
func matchCell(cell Cell, value string, want float64, numeric bool) bool {
	textMatch := cell.Text() == value

	numberMatch := false
	if numeric {
		if got, ok := cell.Number(); ok {
			numberMatch = got == want
		}
	}

	return textMatch || numberMatch
}
