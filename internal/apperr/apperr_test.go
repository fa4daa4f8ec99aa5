package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatchingSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := ResponseSync(cause)

	assert.ErrorIs(t, err, ErrResponseSync)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDeleteSync)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"validation sentinel", ErrEmptyMessage, CodeValidation},
		{"expiration sentinel", ErrInvalidExpiration, CodeInvalidExpiration},
		{"authorization sentinel", ErrNotSender, CodeNotAuthorized},
		{"wrapped sync error", DeleteSync(errors.New("boom")), CodeSyncFailed},
		{"fmt-wrapped app error", fmt.Errorf("respond: %w", ErrPingNotFound), CodeNotFound},
		{"foreign error", errors.New("plain"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeInternal, "snapshot failed", errors.New("cursor closed"))
	assert.Equal(t, "snapshot failed: cursor closed", err.Error())

	bare := Validation("message cannot be empty")
	assert.Equal(t, "message cannot be empty", bare.Error())
}

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("group", "g42")
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), `"g42"`)
}
