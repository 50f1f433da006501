package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MapsHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeAppNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeLLMCallFailed, http.StatusInternalServerError},
		{CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "msg").HTTPStatus, string(tt.code))
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Wrap(cause, CodeDatabaseError, "查询失败")

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
	assert.Contains(t, appErr.Error(), string(CodeDatabaseError))
}

func TestWithDetail(t *testing.T) {
	appErr := New(CodeValidationFailed, "参数错误").WithDetail("code_gen_type")
	assert.Equal(t, "code_gen_type", appErr.Detail)
}

func TestAsAppError(t *testing.T) {
	appErr := New(CodeAppNotFound, "app not found")
	assert.Same(t, appErr, AsAppError(appErr))

	wrapped := AsAppError(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeUnknown, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(New(CodeNotFound, "x")))
	assert.False(t, IsAppError(errors.New("plain")))
}
