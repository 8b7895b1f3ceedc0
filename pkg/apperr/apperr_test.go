package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_FollowsWrapping(t *testing.T) {
	base := InvalidState(CodeEmptyCart, "Cart is empty")
	wrapped := fmt.Errorf("create order: %w", base)

	assert.Equal(t, KindInvalidState, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindInvalidState))

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeEmptyCart, got.Code)
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestUnwrap(t *testing.T) {
	err := Unavailable("store timeout", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "store timeout: context deadline exceeded", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindInvalidState: http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindUnavailable:  http.StatusInternalServerError,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind.String())
	}
}
