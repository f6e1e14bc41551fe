// Package core provides the ingestion pipeline for tabular uploads.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit (10MB)
//	          Patterns: "file too large"
//	FILE002 - Invalid CSV: File is not a valid delimited text file
//	          Patterns: "decode csv"
//	FILE003 - Spreadsheet error: File is not a readable spreadsheet
//	          Patterns: "decode xlsx"
//	FILE004 - No file: No file was selected
//	          Patterns: "no files provided"
//	FILE005 - Empty sheet: The first sheet has no data
//	          Patterns: "empty sheet"
//	FILE006 - Unsupported type: Only spreadsheet and CSV files are accepted
//	          Patterns: "unsupported file"
//	FILE007 - Too many files: More files than allowed in one upload
//	          Patterns: "too many files"
//	FILE008 - Read error: The file could not be read
//	          Patterns: "read file"
//	FILE009 - Invalid form: The multipart upload could not be parsed
//	          Patterns: "invalid upload form"
//
// # Edit Errors (VAL001-VAL099)
//
//	VAL001 - Row not found: The edited row does not exist
//	         Patterns: "row index out of range"
//	VAL002 - Column not found: The edited column does not exist
//	         Patterns: "unknown column key"
//	VAL003 - Unknown profile: The requested validation profile does not exist
//	         Patterns: "unknown profile"
//	VAL004 - Bad rule file: A rule definition could not be loaded
//	         Patterns: "rules:"
//
// # Ingestion Errors (UPL001-UPL099)
//
//	UPL001 - Ingestion cancelled
//	         Patterns: "ingestion cancelled"
//	UPL002 - System busy: Too many ingestions in progress
//	         Patterns: "too many concurrent ingestions"
//	UPL003 - Session expired: Ingestion session not found
//	         Patterns: "ingestion not found"
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//	UPL006 - Still running: Ingestion has not finished yet
//	         Patterns: "ingestion in progress", "ingestion already started"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Returned when no pattern matches. Check application logs for the
// original technical error.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains and the first match wins, so
// more specific patterns come before general ones ("decode csv" before "read file").
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE009)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit (10MB)",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "decode csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma or tab separated text",
			Code:    "FILE002",
		},
	},
	{
		pattern: "decode xlsx",
		msg: UserMessage{
			Message: "File is not a readable spreadsheet",
			Action:  "Re-save the workbook as .xlsx and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no files provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a spreadsheet or CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty sheet",
		msg: UserMessage{
			Message: "The first sheet of the file has no data",
			Action:  "Make sure the data is on the first sheet, starting with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file",
		msg: UserMessage{
			Message: "File type not supported",
			Action:  "Please upload Excel or CSV files only",
			Code:    "FILE006",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one upload",
			Action:  "Upload at most 5 files at a time",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Select the files again and retry the upload",
			Code:    "FILE009",
		},
	},
	{
		pattern: "read file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is not open in another program and try again",
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Edit and Rule Errors (VAL001-VAL004)
	// =========================================================================
	{
		pattern: "row index out of range",
		msg: UserMessage{
			Message: "The edited row does not exist",
			Action:  "Reload the review table and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "unknown column key",
		msg: UserMessage{
			Message: "The edited column does not exist",
			Action:  "Reload the review table and try again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unknown profile",
		msg: UserMessage{
			Message: "The selected validation profile does not exist",
			Action:  "Pick one of the listed profiles",
			Code:    "VAL003",
		},
	},
	{
		pattern: "rules:",
		msg: UserMessage{
			Message: "A validation rule could not be loaded",
			Action:  "Check the rule file for the column and rule named in the log",
			Code:    "VAL004",
		},
	},

	// =========================================================================
	// Ingestion Errors (UPL001-UPL006)
	// =========================================================================
	{
		pattern: "ingestion cancelled",
		msg: UserMessage{
			Message: "Processing was cancelled",
			Action:  "Start a new upload when ready",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many concurrent ingestions",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "ingestion not found",
		msg: UserMessage{
			Message: "Upload session not found",
			Action:  "The session may have expired. Please start a new upload",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading smaller files or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "ingestion in progress",
		msg: UserMessage{
			Message: "Files are still being processed",
			Action:  "Wait for processing to finish",
			Code:    "UPL006",
		},
	},
	{
		pattern: "ingestion already started",
		msg: UserMessage{
			Message: "Files are still being processed",
			Action:  "Wait for processing to finish",
			Code:    "UPL006",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action", prefixed with the failing
// file name when the error refers to one.
//
// Example output: "report.xlsx: The first sheet of the file has no data (Code: FILE005). Make sure ..."
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	out := fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
	if name := FailingFile(err); name != "" {
		out = name + ": " + out
	}
	return out
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
