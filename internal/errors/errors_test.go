package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrNetwork,
		ErrDecode,
		ErrExec,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .opsdash.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "network error",
			code:       ErrNetwork,
			message:    "Dashboard endpoint unreachable",
			suggestion: "Check base_url points at the integration backend",
		},
		{
			name:       "decode error",
			code:       ErrDecode,
			message:    "Sync status response is not valid JSON",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "message and suggestion",
			err:           New(ErrConfig, "Invalid configuration", "Check .opsdash.yaml syntax"),
			expectedParts: []string{"✗ Invalid configuration", "Check .opsdash.yaml syntax"},
		},
		{
			name:          "with cause",
			err:           WrapWithCode(fmt.Errorf("connection refused"), ErrNetwork, "Request failed", ""),
			expectedParts: []string{"Request failed", "connection refused"},
		},
		{
			name:          "no suggestion",
			err:           New(ErrDecode, "Bad payload", ""),
			expectedParts: []string{"Bad payload"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, out, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, out, part)
			}
		})
	}
}

func TestWrap_DefaultsToNetwork(t *testing.T) {
	err := Wrap(fmt.Errorf("dial tcp: timeout"), "Request failed")
	assert.Equal(t, ErrNetwork, err.Code)
	assert.True(t, IsCode(err, ErrNetwork))
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WrapWithCode(sentinel, ErrDecode, "decode", "")

	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, sentinel, errors.Unwrap(err))
}

func TestIsCode(t *testing.T) {
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrConfig))
	assert.True(t, IsCode(New(ErrConfig, "x", ""), ErrConfig))
	assert.False(t, IsCode(New(ErrConfig, "x", ""), ErrDecode))

	wrapped := fmt.Errorf("outer: %w", New(ErrDecode, "x", ""))
	assert.True(t, IsCode(wrapped, ErrDecode))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "", CodeOf(nil))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, ErrNetwork, CodeOf(fmt.Errorf("ctx: %w", New(ErrNetwork, "x", ""))))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Bad payload", New(ErrDecode, "Bad payload", "hint").Summary())

	inner := errors.New("unexpected EOF")
	err := WrapWithCode(fmt.Errorf("reading body: %w", inner), ErrDecode, "Bad payload", "")
	summary := err.Summary()
	assert.Equal(t, "Bad payload: unexpected EOF", summary)
	assert.False(t, strings.Contains(summary, "\n"))
}
