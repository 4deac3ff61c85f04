package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolioError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FolioError
		want string
	}{
		{
			name: "message only",
			err:  New(ErrNotFound, "not found: acme", ""),
			want: "not found: acme",
		},
		{
			name: "with cause",
			err:  Wrap(ErrNetwork, "list repositories failed", "", errors.New("connection reset")),
			want: "list repositories failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestFolioError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NetworkError("search pull requests", cause)

	require.NotNil(t, err.Unwrap())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", NotFound("users/ghost"))

	assert.Equal(t, ErrNotFound, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIs(t *testing.T) {
	err := AuthRequired("fetch contribution calendar")

	assert.True(t, Is(err, ErrAuthRequired))
	assert.False(t, Is(err, ErrRateLimited))
	assert.False(t, Is(nil, ErrAuthRequired))
}

func TestRateLimited(t *testing.T) {
	err := RateLimited("search/issues", time.Time{})
	assert.Equal(t, ErrRateLimited, err.Code)
	assert.Contains(t, err.Error(), "search/issues")
	assert.NotContains(t, err.Error(), "resets at")
	assert.Contains(t, err.Hint, "FOLIO_GITHUB_TOKEN")

	reset := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	err = RateLimited("search/issues", reset)
	assert.Contains(t, err.Error(), "resets at 3:04PM")
}

func TestConstructorsSetCodes(t *testing.T) {
	tests := []struct {
		err  *FolioError
		code ErrorCode
	}{
		{ConfigNotFound("/tmp/config.yaml"), ErrConfigNotFound},
		{ConfigInvalid("bad backend"), ErrConfigInvalid},
		{NotFound("orgs/acme"), ErrNotFound},
		{NetworkError("list organizations", nil), ErrNetwork},
		{AuthRequired("calendar"), ErrAuthRequired},
		{MalformedResponse("search/issues", nil), ErrMalformedResponse},
		{CacheUnavailable(nil), ErrCacheUnavailable},
		{DataUnavailable("octocat", nil), ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDataUnavailable(t *testing.T) {
	cause := NetworkError("list repositories", errors.New("EOF"))
	err := DataUnavailable("octocat", cause)

	assert.Contains(t, err.Error(), "octocat")
	assert.Contains(t, err.Error(), "EOF")
	// the outermost code wins
	assert.Equal(t, ErrDataUnavailable, CodeOf(err))
}
