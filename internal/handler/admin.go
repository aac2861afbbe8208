package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lunabot/werewolf-server-go/internal/audit"
	"github.com/lunabot/werewolf-server-go/internal/service"
	"github.com/lunabot/werewolf-server-go/internal/util"
)

// AdminHandler exposes the forced phase advance for operators. Disabled
// entirely when no admin password hash is configured.
type AdminHandler struct {
	games        *service.GameService
	passwordHash string
}

func NewAdminHandler(games *service.GameService, passwordHash string) *AdminHandler {
	return &AdminHandler{games: games, passwordHash: passwordHash}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/games/{id}/advance", h.ForceAdvance)

	return r
}

// POST /admin/games/{id}/advance
func (h *AdminHandler) ForceAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !h.authorized(r) {
		audit.Log(r.Context(), audit.Event{
			Type:      audit.EventAdminAuthFailure,
			SessionID: sessionID,
			IP:        r.RemoteAddr,
		})
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	resolution, err := h.games.ForceAdvance(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("sessionId", sessionID).Msg("admin forced phase advance")
	audit.Log(r.Context(), audit.Event{
		Type:      audit.EventAdminAdvance,
		SessionID: sessionID,
		IP:        r.RemoteAddr,
		Details:   map[string]interface{}{"ended": resolution.End != nil},
	})

	resp := map[string]any{
		"phase": resolution.Session.Phase,
		"day":   resolution.Session.Day,
		"ended": resolution.End != nil,
	}
	if resolution.Eliminated != nil {
		resp["eliminatedId"] = resolution.Eliminated.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.passwordHash == "" {
		return false
	}
	return util.CheckPasswordHash(r.Header.Get("X-Admin-Password"), h.passwordHash)
}
