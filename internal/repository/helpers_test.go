package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleNotFound(t *testing.T) {
	type row struct{ ID string }

	t.Run("passes results through", func(t *testing.T) {
		r := row{ID: "x"}
		got, err := HandleNotFound(&r, nil)
		require.NoError(t, err)
		assert.Equal(t, &r, got)
	})

	t.Run("maps no rows to nil", func(t *testing.T) {
		got, err := HandleNotFound(&row{}, sql.ErrNoRows)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("keeps other errors", func(t *testing.T) {
		boom := errors.New("connection reset")
		got, err := HandleNotFound(&row{}, boom)
		assert.Nil(t, got)
		assert.Equal(t, boom, err)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
	assert.False(t, IsUniqueViolation(nil))
}
