// Package core provides the business logic for the CSV dataset service.
//
// This package holds all domain logic independent of any transport layer.
// It can be used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Cells: every value in a dataset is a tagged [Cell] (string, number or
//     null) decided once at ingest time and carried unchanged to JSON.
//   - Store: datasets live in a [Store] keyed by a random UUID. The default
//     implementation, [MemoryStore], keeps them in process memory until exit.
//   - Ingest: [Service.Ingest] parses an uploaded CSV fully, infers column
//     types and only then inserts the dataset, so a dataset is either fully
//     visible or absent.
//   - Filter: [Service.Filter] narrows a dataset by column=value constraints
//     on a working copy of its rows. The stored dataset is never modified.
//
// # Matching
//
// A row matches a constraint when the cell's text equals the value exactly,
// or when both the cell and the value parse as numbers with equal values.
// Both comparisons are always evaluated and combined with OR, so "30",
// "30.0" and "3e1" all match an integer cell holding 30.
//
// Constraints naming a column the dataset does not have are skipped and
// reported in [FilterResult.Skipped]; they are not errors.
//
// # Error Handling
//
// Failures are classified with sentinel errors and typed errors:
//
//   - [ErrInputRejected]: the upload request itself is unusable (400)
//   - [ErrNotFound]: unknown dataset identifier (404)
//   - [IngestError]: the CSV content could not be parsed (500)
//   - [FilterError]: a constraint could not be evaluated (500)
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
