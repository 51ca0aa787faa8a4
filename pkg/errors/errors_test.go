package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	appErr := New("GRANT_NOT_FOUND", "Grant not found", http.StatusNotFound)

	wrapped := FromError(appErr)
	require.Equal(t, appErr, wrapped)
}

func TestFromErrorWrapsGenericErrors(t *testing.T) {
	cause := errors.New("connection refused")

	appErr := FromError(cause)
	require.Equal(t, ErrInternalServer.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	require.ErrorIs(t, appErr, cause)
}

func TestWithInternalKeepsOriginal(t *testing.T) {
	cause := errors.New("boom")
	appErr := ErrForbidden.WithInternal(cause)

	require.Equal(t, ErrForbidden.Code, appErr.Code)
	require.ErrorIs(t, appErr, cause)
	require.Contains(t, appErr.Error(), "boom")
}
