package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"not found", NewNotFound("brand", "b1"), KindNotFound, http.StatusNotFound},
		{"already exists", NewAlreadyExists("brand", "b1"), KindAlreadyExists, http.StatusConflict},
		{"version conflict", NewVersionConflict("campaign", "c1", 3), KindVersionConflict, http.StatusConflict},
		{"partial not found", NewPartialNotFound("persona", []string{"p2"}), KindPartialNotFound, http.StatusNotFound},
		{"invalid cursor", NewInvalidCursor("bad signature", nil), KindInvalidCursor, http.StatusBadRequest},
		{"validation", NewValidation("bad input", map[string]string{"name": "required"}), KindValidation, http.StatusBadRequest},
		{"transition", NewTransition("completed", "generating", ""), KindTransition, http.StatusUnprocessableEntity},
		{"unavailable", NewUnavailable("throttled", errors.New("boom")), KindUnavailable, http.StatusServiceUnavailable},
		{"foreign", errors.New("plain"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestWrapPreservesKind(t *testing.T) {
	t.Run("Should keep the kind of an AppError", func(t *testing.T) {
		err := Wrap(NewNotFound("campaign", "c1"), "loading campaign")
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "loading campaign")
	})

	t.Run("Should turn foreign errors into INTERNAL", func(t *testing.T) {
		cause := errors.New("socket closed")
		err := Wrap(cause, "query failed")
		assert.Equal(t, KindInternal, KindOf(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Should pass nil through", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "nothing"))
	})
}

func TestMissingIDs(t *testing.T) {
	err := fmt.Errorf("batch: %w", NewPartialNotFound("persona", []string{"b", "d"}))
	assert.True(t, IsPartialNotFound(err))
	assert.Equal(t, []string{"b", "d"}, MissingIDs(err))
	assert.Nil(t, MissingIDs(NewNotFound("persona", "x")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NewVersionConflict("campaign", "c1", 1)))
	assert.True(t, Retryable(NewUnavailable("throttled", nil)))
	assert.True(t, Retryable(errors.New("connection reset")))
	assert.False(t, Retryable(NewNotFound("campaign", "c1")))
	assert.False(t, Retryable(NewValidation("bad", nil)))
}
