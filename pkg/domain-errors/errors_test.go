package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "stale version")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(nil, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load record")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeInternal))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeSeesThroughFmtWrapping(t *testing.T) {
	inner := New(CodeInvalidTransition, "APPROVED is terminal")
	outer := fmt.Errorf("transition failed: %w", inner)
	assert.True(t, HasCode(outer, CodeInvalidTransition))
}

func TestWithField(t *testing.T) {
	err := New(CodeConflict, "stale version")
	err = WithField(err, "record_id", "abc")
	err = WithField(err, "stored_version", 4)

	assert.Equal(t, "abc", Field(err, "record_id"))
	assert.Equal(t, 4, Field(err, "stored_version"))
	assert.True(t, HasCode(err, CodeConflict), "fields must not change the code")
	assert.Nil(t, Field(err, "missing"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "nope")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("uncoded")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidTransition, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{CodeIntegrity, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToHTTPStatus(New(tc.code, "x")), string(tc.code))
	}
}

func TestToExitCode(t *testing.T) {
	assert.Equal(t, 0, ToExitCode(nil))
	assert.Equal(t, 2, ToExitCode(New(CodeValidation, "x")))
	assert.Equal(t, 2, ToExitCode(New(CodeNotFound, "x")))
	assert.Equal(t, 2, ToExitCode(New(CodeInvalidTransition, "x")))
	assert.Equal(t, 3, ToExitCode(New(CodeConflict, "x")))
	assert.Equal(t, 1, ToExitCode(New(CodeInternal, "x")))
	assert.Equal(t, 1, ToExitCode(errors.New("uncoded")))
}
