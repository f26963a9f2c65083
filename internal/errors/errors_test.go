package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesCause(t *testing.T) {
	// Given: a driver error
	cause := errors.New("connection refused")

	// When: wrapping it as a storage error
	err := StorageError("cannot reach postgres", cause)

	// Then: the chain still reaches the driver error
	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		code     string
		message  string
		expected string
	}{
		{ErrCodeConfigNotFound, "config file not found", "[ERR_101_CONFIG_NOT_FOUND] config file not found"},
		{ErrCodeStorageCorrupt, "relterms.db is corrupt", "[ERR_202_STORAGE_CORRUPT] relterms.db is corrupt"},
		{ErrCodeDocumentNotFound, "document 9 not found", "[ERR_402_DOCUMENT_NOT_FOUND] document 9 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, tt.message, nil).Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("index doc: %w", New(ErrCodeDocumentNotFound, "document 9 not found", nil))

	assert.True(t, errors.Is(err, New(ErrCodeDocumentNotFound, "", nil)))
	assert.False(t, errors.Is(err, New(ErrCodeInvalidInput, "", nil)))
}

func TestError_WithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeRunLocked, "another run is active", nil).
		WithDetail("lock", "/data/relterms.db.lock").
		WithSuggestion("wait for it to finish")

	assert.Equal(t, "/data/relterms.db.lock", err.Details["lock"])
	assert.Equal(t, "wait for it to finish", err.Suggestion)
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		expected Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeStorageWrite, CategoryStorage},
		{ErrCodeRunLocked, CategoryStorage},
		{ErrCodeUnknownLocale, CategoryValidation},
		{ErrCodeIndexFailed, CategoryInternal},
		{"ERR", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, "", nil).Category)
		})
	}
}

func TestSeverityAndRetryable(t *testing.T) {
	corrupt := New(ErrCodeStorageCorrupt, "", nil)
	assert.Equal(t, SeverityFatal, corrupt.Severity)
	assert.False(t, corrupt.Retryable)

	unavailable := New(ErrCodeStorageUnavailable, "", nil)
	assert.Equal(t, SeverityWarning, unavailable.Severity)
	assert.True(t, unavailable.Retryable)

	locked := New(ErrCodeRunLocked, "", nil)
	assert.True(t, locked.Retryable)

	invalid := ValidationError("bad id", nil)
	assert.Equal(t, SeverityError, invalid.Severity)
	assert.False(t, invalid.Retryable)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	err := Wrap(ErrCodeStorageWrite, errors.New("disk I/O error"))
	assert.Equal(t, "disk I/O error", err.Message)
	assert.Equal(t, ErrCodeStorageWrite, err.Code)
}

func TestHelpers_LookThroughWrapping(t *testing.T) {
	// Given: a structured error wrapped twice with fmt.Errorf
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w",
		New(ErrCodeStorageCorrupt, "corrupt", nil)))

	// Then: the helpers find it
	assert.Equal(t, ErrCodeStorageCorrupt, GetCode(err))
	assert.Equal(t, CategoryStorage, GetCategory(err))
	assert.True(t, IsFatal(err))
	assert.False(t, IsRetryable(err))

	plain := errors.New("plain")
	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetCategory(plain))
	assert.False(t, IsFatal(plain))
	assert.False(t, IsRetryable(nil))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(ConfigError("bad", nil)))
	assert.Equal(t, 2, ExitCode(ValidationError("bad", nil)))
	assert.Equal(t, 3, ExitCode(StorageError("down", nil)))
	assert.Equal(t, 3, ExitCode(New(ErrCodeRunLocked, "", nil)))
	assert.Equal(t, 1, ExitCode(New(ErrCodeIndexFailed, "", nil)))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
}
