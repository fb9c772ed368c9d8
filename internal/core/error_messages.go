package core

// # Error Codes Reference
//
// This file maps errors to user-friendly messages with codes for support
// reference. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the size limit
//	FILE002 - Invalid CSV: the content could not be parsed as CSV
//	FILE003 - Encoding error: the content is not UTF-8
//	FILE004 - No file: the request has no "file" field
//	FILE005 - Empty file: the upload has no header line
//	FILE006 - No selected file: the "file" field has an empty filename
//	FILE007 - File type: the filename does not end in .csv
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset not found: unknown dataset identifier
//	DS002 - Filter failed: a filter constraint could not be evaluated
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Rate Limit Errors (RATE001-RATE099)
//
//	RATE001 - Too many requests from one client
//
// # Default Error (ERR000)
//
// Fallback when nothing specific matches. Check the logs for the
// technical error, which is always logged with the request id.

import (
	"context"
	"errors"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorTarget maps a sentinel error to its user message.
// The first target matched with errors.Is wins, so specific errors come
// before the general ones they wrap.
type errorTarget struct {
	target error
	msg    UserMessage
}

var errorTargets = []errorTarget{
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{ErrTooManyUploads, UserMessage{
		Message: "Too many uploads in progress",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrRateLimited, UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a minute and try again",
		Code:    "RATE001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file part in the request.",
		Action:  "Send the CSV as multipart form field \"file\"",
		Code:    "FILE004",
	}},
	{ErrNoSelectedFile, UserMessage{
		Message: "No selected file.",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE006",
	}},
	{ErrFileType, UserMessage{
		Message: "File type not allowed. Only CSV files are accepted.",
		Action:  "Upload a file with a .csv extension",
		Code:    "FILE007",
	}},
	{ErrNotFound, UserMessage{
		Message: "Dataset not found. Please check the dataset ID or upload a CSV first.",
		Action:  "List available datasets at /data",
		Code:    "DS001",
	}},
	{ErrNoColumns, UserMessage{
		Message: "Failed to process CSV: no columns to parse from file. Please check file format.",
		Action:  "Please upload a CSV file with a header line",
		Code:    "FILE005",
	}},
	{ErrInvalidEncoding, UserMessage{
		Message: "Failed to process CSV: file contains invalid characters. Please check file format.",
		Action:  "Save file as UTF-8 encoding",
		Code:    "FILE003",
	}},
}

// defaultMessage is returned when no specific error matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-friendly message.
// Parse and filter failures carry their cause in the message. A FilterError
// keeps its own message even when its cause is a context error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fe *FilterError
	if errors.As(err, &fe) {
		return UserMessage{
			Message: fe.Error(),
			Action:  "Check the filter values and try again",
			Code:    "DS002",
		}
	}

	for _, t := range errorTargets {
		if errors.Is(err, t.target) {
			return t.msg
		}
	}

	var ie *IngestError
	if errors.As(err, &ie) {
		return UserMessage{
			Message: "Failed to process CSV: " + ie.Err.Error() + ". Please check file format.",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
