// Package errors provides structured error codes for relterms.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (database, lock file)
//   - 4XX: Validation errors
//   - 5XX: Indexing and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates database and lock file errors.
	CategoryStorage Category = "STORAGE"
	// CategoryValidation indicates invalid user input.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates indexing failures and unexpected errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal means the run cannot continue until an operator acts.
	SeverityFatal Severity = "FATAL"
	// SeverityError means the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning means the operation may succeed if tried again.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStorageUnavailable = "ERR_201_STORAGE_UNAVAILABLE"
	ErrCodeStorageCorrupt     = "ERR_202_STORAGE_CORRUPT"
	ErrCodeStorageWrite       = "ERR_203_STORAGE_WRITE"
	ErrCodeRunLocked          = "ERR_204_RUN_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput     = "ERR_401_INVALID_INPUT"
	ErrCodeDocumentNotFound = "ERR_402_DOCUMENT_NOT_FOUND"
	ErrCodeUnknownLocale    = "ERR_403_UNKNOWN_LOCALE"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeIndexFailed = "ERR_502_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if code == ErrCodeStorageCorrupt {
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode reports whether the failure is usually transient.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeStorageUnavailable, ErrCodeRunLocked:
		return true
	default:
		return false
	}
}

// exitCodes maps categories to process exit statuses.
var exitCodes = map[Category]int{
	CategoryConfig:     2,
	CategoryValidation: 2,
	CategoryStorage:    3,
	CategoryInternal:   1,
}
