package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lunabot/werewolf-server-go/internal/audit"
	"github.com/lunabot/werewolf-server-go/internal/service"
)

// GameHandler is the inbound dispatch surface: it decodes transport requests
// into engine operations and renders results back as JSON. Caller identity is
// the external chat id supplied by the transport.
type GameHandler struct {
	games *service.GameService
}

func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/join", h.Join)
	r.Get("/{id}", h.Snapshot)
	r.Post("/{id}/leave", h.Leave)
	r.Post("/{id}/start", h.Start)
	r.Post("/{id}/night-action", h.NightAction)
	r.Post("/{id}/vote", h.Vote)

	return r
}

// POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"ownerId"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	session, err := h.games.CreateSession(r.Context(), req.OwnerID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:      audit.EventSessionCreate,
		SessionID: session.ID,
		ActorID:   req.OwnerID,
		IP:        r.RemoteAddr,
	})
	writeJSON(w, http.StatusCreated, session)
}

// GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.games.ListJoinable(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list joinable sessions")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// POST /v1/games/join
// Resolves the join code first, then joins under the session lock.
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JoinCode    string `json:"joinCode"`
		ExternalID  string `json:"externalId"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.JoinCode == "" || req.ExternalID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "joinCode and externalId are required"})
		return
	}

	session, err := h.games.FindSessionByJoinCode(r.Context(), req.JoinCode)
	if err != nil {
		writeError(w, err)
		return
	}

	participant, err := h.games.JoinSession(r.Context(), session.ID, req.ExternalID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, participant)
}

// GET /v1/games/{id}
func (h *GameHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.games.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// POST /v1/games/{id}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalID string `json:"externalId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.games.LeaveSession(r.Context(), chi.URLParam(r, "id"), req.ExternalID)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Dissolved {
		audit.Log(r.Context(), audit.Event{
			Type:      audit.EventSessionDissolve,
			SessionID: chi.URLParam(r, "id"),
			ActorID:   req.ExternalID,
			IP:        r.RemoteAddr,
		})
	}
	if result.End != nil {
		audit.Log(r.Context(), audit.Event{
			Type:      audit.EventGameEnd,
			SessionID: chi.URLParam(r, "id"),
			Details:   map[string]interface{}{"reason": "walkout"},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dissolved":  result.Dissolved,
		"newOwnerId": result.NewOwnerID,
		"died":       result.Died,
		"ended":      result.End != nil,
	})
}

// POST /v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalID string `json:"externalId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.games.StartSession(r.Context(), chi.URLParam(r, "id"), req.ExternalID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:      audit.EventGameStart,
		SessionID: chi.URLParam(r, "id"),
		ActorID:   req.ExternalID,
		IP:        r.RemoteAddr,
		Details:   map[string]interface{}{"players": len(result.Assignments)},
	})

	// Assignments are returned to the dispatcher for private, per-player
	// delivery only.
	writeJSON(w, http.StatusOK, map[string]any{
		"session":     result.Session,
		"assignments": result.Assignments,
	})
}

// POST /v1/games/{id}/night-action
func (h *GameHandler) NightAction(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, h.games.SubmitNightAction)
}

// POST /v1/games/{id}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	h.submitAction(w, r, h.games.SubmitVote)
}

type submitFunc func(ctx context.Context, sessionID, externalID, targetID string) (*service.ActionResult, error)

func (h *GameHandler) submitAction(w http.ResponseWriter, r *http.Request, submit submitFunc) {
	var req struct {
		ExternalID string `json:"externalId"`
		TargetID   string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.ExternalID == "" || req.TargetID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "externalId and targetId are required"})
		return
	}

	result, err := submit(r.Context(), chi.URLParam(r, "id"), req.ExternalID, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"advanced": result.Advanced}
	if result.Resolution != nil {
		resp["phase"] = result.Resolution.Session.Phase
		resp["day"] = result.Resolution.Session.Day
		resp["ended"] = result.Resolution.End != nil
		if result.Resolution.Eliminated != nil {
			resp["eliminatedId"] = result.Resolution.Eliminated.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
