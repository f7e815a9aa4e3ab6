package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/service"
	"devconnect_go/internal/ws"
)

// handleChatHistory returns the full message history with a target user:
// GET /chat/{targetUserID}. Requires a mutual connection.
func handleChatHistory(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		targetID, err := strconv.ParseInt(chi.URLParam(r, "targetUserID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}

		msgs, err := chatSvc.History(r.Context(), caller.ID, targetID, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		responses, err := chatSvc.ToResponses(r.Context(), msgs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": responses})
	}
}

// handleUserStatus reports whether a connected partner is currently online.
func handleUserStatus(registry *ws.Registry, requestSvc *service.RequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}

		connected, err := requestSvc.IsConnected(r.Context(), caller.ID, targetID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !connected {
			writeError(w, domain.ErrNotConnected)
			return
		}

		resp := map[string]any{
			"user_id": targetID,
			"online":  registry.IsOnline(targetID),
		}
		if t, ok := registry.LastSeen(targetID); ok {
			resp["last_seen"] = t
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
