package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/service"
)

func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "userID")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		user, err := userSvc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if user == nil || !user.IsActive {
			writeError(w, domain.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
