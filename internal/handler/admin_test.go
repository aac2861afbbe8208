package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/rules"
	"github.com/lunabot/werewolf-server-go/internal/service"
)

func newAdminFixture(t *testing.T, passwordHash string) (http.Handler, *service.GameService) {
	t.Helper()
	sessions := &testSessionRepo{sessions: make(map[string]*model.Session)}
	participants := &testParticipantRepo{participants: make(map[string]*model.Participant)}
	svc := service.NewGameService(sessions, participants, rules.DefaultRuleset(), nil)
	return NewAdminHandler(svc, passwordHash).Routes(), svc
}

func startedSession(t *testing.T, svc *service.GameService) string {
	t.Helper()
	ctx := t.Context()

	session, err := svc.CreateSession(ctx, "u1", "Moonlit Village")
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		_, err := svc.JoinSession(ctx, session.ID, fmt.Sprintf("u%d", i), fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}
	_, err = svc.StartSession(ctx, session.ID, "u1")
	require.NoError(t, err)
	return session.ID
}

func TestAdminForceAdvance(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("advances with the right password", func(t *testing.T) {
		h, svc := newAdminFixture(t, string(hash))
		sessionID := startedSession(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/games/"+sessionID+"/advance", nil)
		req.Header.Set("X-Admin-Password", "s3cret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "day", body["phase"])
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		h, svc := newAdminFixture(t, string(hash))
		sessionID := startedSession(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/games/"+sessionID+"/advance", nil)
		req.Header.Set("X-Admin-Password", "guess")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled without a configured hash", func(t *testing.T) {
		h, svc := newAdminFixture(t, "")
		sessionID := startedSession(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/games/"+sessionID+"/advance", nil)
		req.Header.Set("X-Admin-Password", "anything")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
