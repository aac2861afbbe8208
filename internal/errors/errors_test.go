package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("formats without a cause", func(t *testing.T) {
		err := New(ErrCodeNotJoinable, "Session has already started")
		assert.Equal(t, "NOT_JOINABLE: Session has already started", err.Error())
	})

	t.Run("formats and unwraps a cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database("Failed to load session", cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("survives wrapping with fmt.Errorf", func(t *testing.T) {
		wrapped := fmt.Errorf("handling request: %w", SessionFull())
		appErr, ok := AsAppError(wrapped)
		require.True(t, ok)
		assert.Equal(t, ErrCodeSessionFull, appErr.Code)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(NotFound("Session")))
	assert.Equal(t, ErrCodeNotEnoughPlayers, CodeOf(NotEnoughPlayers(5, 3)))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}

func TestConstructorMessages(t *testing.T) {
	assert.Equal(t, "Need at least 5 players, have 3", NotEnoughPlayers(5, 3).Message)
	assert.Equal(t, "Session not found", NotFound("Session").Message)
}
