package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewBadRequestError("bad"), http.StatusBadRequest},
		{NewValidationError("title is required"), http.StatusBadRequest},
		{NewNoValidIngredientsError([]string{"plastic"}), http.StatusUnprocessableEntity},
		{NewNotFoundError("Recipe"), http.StatusNotFound},
		{NewAppError(CodeTooManyRequests, "slow down", ""), http.StatusTooManyRequests},
		{NewAppError(CodeServiceUnavailable, "down", ""), http.StatusServiceUnavailable},
		{NewEmbeddingError(errors.New("timeout")), http.StatusBadGateway},
		{NewVectorStoreError("search", errors.New("refused")), http.StatusBadGateway},
		{NewGenerationError(errors.New("empty")), http.StatusBadGateway},
		{NewDatabaseError("insert generation", errors.New("locked")), http.StatusInternalServerError},
		{NewInternalError(""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Recipe not found", NewNotFoundError("Recipe").Error())
	assert.Equal(t, "VECTOR_STORE_ERROR: Vector store operation failed (Failed to upsert)",
		NewVectorStoreError("upsert", nil).Error())
	assert.Equal(t, "An unexpected error occurred", NewInternalError("").Message)
}

func TestWrap(t *testing.T) {
	t.Run("Nil_ShouldStayNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored"))
	})

	t.Run("PlainError_ShouldBecomeInternal", func(t *testing.T) {
		// Arrange
		cause := errors.New("disk full")

		// Act
		wrapped := Wrap(cause, "save failed")

		// Assert
		assert.Equal(t, CodeInternal, wrapped.Code)
		assert.Equal(t, "save failed", wrapped.Message)
		assert.ErrorIs(t, wrapped, cause)
	})

	t.Run("AppError_ShouldPassThrough", func(t *testing.T) {
		// Arrange
		original := NewNotFoundError("Document")

		// Act
		wrapped := Wrap(fmt.Errorf("lookup: %w", original), "ignored")

		// Assert
		assert.Same(t, original, wrapped)
	})
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("ingest: %w", NewEmbeddingError(errors.New("quota")))

	assert.True(t, Is(err, CodeEmbeddingFailed))
	assert.False(t, Is(err, CodeNotFound))
	assert.Equal(t, CodeEmbeddingFailed, GetCode(err))
	assert.Equal(t, CodeInternal, GetCode(errors.New("plain")))
}

func TestNoValidIngredientsError_ShouldCarryRejected(t *testing.T) {
	err := NewNoValidIngredientsError([]string{"plastic", "soap"})

	require.Contains(t, err.Metadata, "rejected")
	assert.Equal(t, []string{"plastic", "soap"}, err.Metadata["rejected"])
}

func TestValidationErrors(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())

	err := NewValidationErrors([]ValidationError{
		{Field: "ingredients", Tag: "required", Message: "ingredients is required"},
		{Field: "top_k", Tag: "max", Message: "top_k must be at most 20"},
	})

	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Equal(t, "ingredients is required; top_k must be at most 20", err.Details)
}

func TestToErrorResponse(t *testing.T) {
	// Act
	resp := ToErrorResponse(NewBadRequestError("bad input"), "req-9")

	// Assert
	assert.False(t, resp.Success)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-9", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Timestamp)
}
