package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(New(KindValidation, "bad input")))
	assert.Equal(t, KindConflict, KindOf(New(KindConflict, "out of stock")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("db down"))))

	// Wrapping preserves the kind.
	wrapped := fmt.Errorf("context: %w", New(KindNotFound, "missing"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestMessagesOf(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, MessagesOf(New(KindValidation, "a", "b")))
	assert.Equal(t,
		[]string{"an unexpected error occurred, try again later"},
		MessagesOf(errors.New("secret detail")),
		"raw errors must never leak to callers")
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, MessagesOf(err)[0], "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: http.StatusBadRequest,
		KindNotFound:   http.StatusNotFound,
		KindForbidden:  http.StatusForbidden,
		KindConflict:   http.StatusConflict,
		KindAuth:       http.StatusUnauthorized,
		KindInternal:   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind))
	}
}
