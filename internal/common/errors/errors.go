// Package errors provides standardized error handling for the card dispatch pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Validation errors block composition/submission entirely and are surfaced
// synchronously, before any network interaction.
const (
	ErrCodeNoChannel         ErrorCode = "VALIDATION_NO_CHANNEL"
	ErrCodeNoRecipients      ErrorCode = "VALIDATION_NO_RECIPIENTS"
	ErrCodeTooManyRecipients ErrorCode = "VALIDATION_TOO_MANY_RECIPIENTS"
	ErrCodeMissingSubject    ErrorCode = "VALIDATION_MISSING_SUBJECT"

	ErrCodeAssetMissing ErrorCode = "TEMPLATE_ASSET_MISSING"

	ErrCodeTransportSendFailed ErrorCode = "TRANSPORT_SEND_FAILED"
	ErrCodePartialDelivery     ErrorCode = "PARTIAL_DELIVERY"

	ErrCodeJobNotFound ErrorCode = "JOB_NOT_FOUND"

	ErrCodeDatabaseQueryFailed ErrorCode = "DATABASE_QUERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNoChannelError creates a fatal pre-submission validation error.
func NewNoChannelError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoChannel,
		Message:   "No delivery channel selected",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoRecipientsError creates a fatal pre-submission validation error.
func NewNoRecipientsError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoRecipients,
		Message:   "No valid recipients resolved for channel",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTooManyRecipientsError creates a fatal pre-submission validation error.
// The batch is rejected whole; there is no partial send.
func NewTooManyRecipientsError(count, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTooManyRecipients,
		Message:   "Recipient count exceeds the dispatch limit",
		Details:   fmt.Sprintf("count: %d, max: %d", count, max),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingSubjectError creates a fatal pre-submission validation error.
func NewMissingSubjectError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingSubject,
		Message:   "Subject is required for the email channel",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssetMissingError creates a per-render template error. The underlying
// canvas is not corrupted by it.
func NewAssetMissingError(itemID, sourceRef string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssetMissing,
		Message:   "Item asset reference is missing or unreadable",
		Details:   fmt.Sprintf("itemId: %s, sourceRef: %q", itemID, sourceRef),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportSendFailedError creates a retryable per-message transport error.
// It is recorded against the message and never aborts the rest of the batch.
func NewTransportSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportSendFailed,
		Message:   "Delivery collaborator rejected or could not reach the recipient",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPartialDeliveryError creates the job-level summary error raised when a
// batch finishes with both sent and failed entries. Not fatal, but visible.
func NewPartialDeliveryError(sent, failed int) *StandardError {
	return &StandardError{
		Code:      ErrCodePartialDelivery,
		Message:   "Dispatch completed with partial delivery",
		Details:   fmt.Sprintf("sent: %d, failed: %d", sent, failed),
		Retryable: false,
		Metadata: map[string]interface{}{
			"sent":   sent,
			"failed": failed,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewJobNotFoundError creates a non-retryable lookup error.
func NewJobNotFoundError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Dispatch job not found",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable guest store error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Guest store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsValidation reports whether err is a fatal pre-submission validation error.
func IsValidation(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return strings.HasPrefix(string(stdErr.Code), "VALIDATION_")
}

// IsTemplate reports whether err is a render-time template error.
func IsTemplate(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return strings.HasPrefix(string(stdErr.Code), "TEMPLATE_")
}

// IsRetryable reports whether err may succeed on an explicit retry.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Retryable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.HasPrefix(codeStr, "TRANSPORT") || codeStr == string(ErrCodePartialDelivery):
		return "DELIVERY"
	case strings.HasPrefix(codeStr, "DATABASE"):
		return "DATABASE"
	default:
		return "OTHER"
	}
}
