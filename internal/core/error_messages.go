// Package core turns uploaded trade confirmation PDFs into one combined CSV.
//
// # Error Codes Reference
//
// Errors are mapped to user-friendly messages with codes for support
// reference. Sentinel errors are matched first with errors.Is, then the
// error text is searched for known patterns.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Upload exceeds the maximum request size
//	          Action: Upload fewer or smaller PDFs per request
//	          Patterns: "request body too large", "message too large"
//
//	FILE004 - No file: No files were uploaded
//	          Action: Attach one or more PDF files
//	          Sentinel: ErrNoFiles
//
//	FILE006 - Not a PDF: A file does not have a .pdf extension
//	          Action: Only upload files ending in .pdf
//	          Sentinel: ErrNotPDF
//
// # Extraction Errors (EXT001-EXT099)
//
//	EXT002 - Unreadable PDF: The document could not be parsed
//	         Action: Check the file opens in a PDF viewer and is not encrypted
//	         Sentinel: extract.ErrUnreadablePDF
//
//	EXT001 - Extraction failed: No extraction strategy could read the document
//	         Action: Check the PDF contains a text layer
//	         Sentinel: extract.ErrExtraction
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Another batch is being processed
//	         Action: Please wait a moment and try again
//	         Sentinel: ErrTooManyBatches
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try fewer files per request
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// When a user reports ERR000, check the application logs for the original
// technical error.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tradecsv/internal/extract"
)

// ErrNoFiles is returned when a batch carries no uploads.
var ErrNoFiles = errors.New("no files uploaded")

// ErrNotPDF is matched by NotPDFError.
var ErrNotPDF = errors.New("file is not a PDF")

// NotPDFError names an upload rejected for its extension.
type NotPDFError struct {
	File string
}

func (e *NotPDFError) Error() string {
	return fmt.Sprintf("file %s is not a PDF", e.File)
}

func (e *NotPDFError) Is(target error) bool {
	return target == ErrNotPDF
}

// FileError reports the upload whose processing aborted a batch.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("error processing %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages are checked in order; ErrUnreadablePDF precedes
// ErrExtraction because an extraction failure usually wraps it.
var sentinelMessages = []sentinelMessage{
	{ErrNoFiles, UserMessage{
		Message: "No files were uploaded",
		Action:  "Attach one or more PDF files",
		Code:    "FILE004",
	}},
	{ErrNotPDF, UserMessage{
		Message: "Only PDF files are accepted",
		Action:  "Only upload files ending in .pdf",
		Code:    "FILE006",
	}},
	{ErrTooManyBatches, UserMessage{
		Message: "System is busy processing another batch",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{extract.ErrUnreadablePDF, UserMessage{
		Message: "The PDF could not be read",
		Action:  "Check the file opens in a PDF viewer and is not encrypted",
		Code:    "EXT002",
	}},
	{extract.ErrExtraction, UserMessage{
		Message: "Tables could not be extracted from the PDF",
		Action:  "Check the PDF contains a text layer",
		Code:    "EXT001",
	}},
}

// errorPattern maps a case-insensitive substring to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum request size",
			Action:  "Upload fewer or smaller PDFs per request",
			Code:    "FILE001",
		},
	},
	{
		pattern: "message too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum request size",
			Action:  "Upload fewer or smaller PDFs per request",
			Code:    "FILE001",
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
			Action:  "Try fewer files per request",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// Detail renders err as the API "detail" string: the failing file and the
// technical cause for processing failures, a short sentence otherwise.
func Detail(err error) string {
	var fileErr *FileError
	var notPDF *NotPDFError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFiles):
		return "No files uploaded"
	case errors.As(err, &notPDF):
		return fmt.Sprintf("File %s is not a PDF", notPDF.File)
	case errors.As(err, &fileErr):
		return fmt.Sprintf("Error processing %s: %v", fileErr.File, fileErr.Err)
	default:
		return MapError(err).Message
	}
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFiles) || errors.Is(err, ErrNotPDF)
}
