package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found", errType: ErrTypeNotFound, expected: "FILE_NOT_FOUND"},
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "binning", errType: ErrTypeBinning, expected: "BINNING"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "export", errType: ErrTypeExport, expected: "EXPORT"},
		{name: "render", errType: ErrTypeRender, expected: "RENDER"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "internal", errType: ErrTypeInternal, expected: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "analysis date precedes last purchase",
			},
			wantMessage: "[VALIDATION] analysis date precedes last purchase",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "row 4: InvoiceDate",
				Cause:   fmt.Errorf("bad layout"),
			},
			wantMessage: "[PARSING] row 4: InvoiceDate: bad layout",
		},
		{
			name:        "error with empty message",
			appError:    &AppError{Type: ErrTypeInternal},
			wantMessage: "[INTERNAL] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewExportError("write rfm_data.csv", cause)

	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, NewValidationError("x").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := &AppError{Type: ErrTypeValidation, Message: "bad"}

	result := appErr.WithContext("row", 12)

	assert.Same(t, appErr, result)
	require.Contains(t, result.Context, "row")
	assert.Equal(t, 12, result.Context["row"])
}

func TestNewAppError(t *testing.T) {
	got := NewAppError(ErrTypeStorage, "insert rows", errors.New("locked"))

	assert.Equal(t, ErrTypeStorage, got.Type)
	assert.Equal(t, "insert rows", got.Message)
	require.NotNil(t, got.Cause)
	assert.Equal(t, "locked", got.Cause.Error())
	assert.NotNil(t, got.Context)
	assert.Empty(t, got.Context)
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		contains string
	}{
		{
			name:     "missing columns",
			err:      NewMissingColumnsError([]string{"Country", "Quantity"}),
			wantType: ErrTypeValidation,
			contains: "Country",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("data/raw/data.csv", nil),
			wantType: ErrTypeNotFound,
			contains: "data/raw/data.csv not found",
		},
		{
			name:     "binning",
			err:      NewBinningError("Recency", 5, []float64{1, 1, 2}),
			wantType: ErrTypeBinning,
			contains: "bin edges must be unique",
		},
		{
			name:     "render",
			err:      NewRenderError("rfm_correlation.png", errors.New("boom")),
			wantType: ErrTypeRender,
			contains: "render rfm_correlation.png: boom",
		},
		{
			name:     "config",
			err:      NewConfigError("invalid rfm_bins", nil),
			wantType: ErrTypeConfig,
			contains: "invalid rfm_bins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}
}

func TestIsType(t *testing.T) {
	binning := NewBinningError("Monetary", 5, nil)
	wrapped := fmt.Errorf("score customers: %w", binning)
	nested := NewInternalError("pipeline", wrapped)

	assert.True(t, IsType(wrapped, ErrTypeBinning))
	assert.True(t, IsType(nested, ErrTypeInternal))
	assert.True(t, IsType(nested, ErrTypeBinning))
	assert.False(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeBinning))
	assert.False(t, IsType(nil, ErrTypeBinning))
}
