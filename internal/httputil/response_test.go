package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["id"])
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   apperrors.ErrorCode
	}{
		{"invalid name", apperrors.InvalidName("Name too short"), http.StatusBadRequest, apperrors.ErrCodeInvalidName},
		{"unauthorized", apperrors.Unauthorized("Only the owner can start"), http.StatusForbidden, apperrors.ErrCodeUnauthorized},
		{"not found", apperrors.NotFound("Session"), http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"session full", apperrors.SessionFull(), http.StatusConflict, apperrors.ErrCodeSessionFull},
		{"not your turn", apperrors.NotYourTurn("Votes are only valid during the day"), http.StatusConflict, apperrors.ErrCodeNotYourTurn},
		{"database", apperrors.Database("Failed to load session", errors.New("down")), http.StatusInternalServerError, apperrors.ErrCodeDatabase},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}
