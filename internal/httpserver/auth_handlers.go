package httpserver

import (
	"encoding/json"
	"net/http"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/service"
)

type registerRequest struct {
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
	About       *string `json:"about"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		user, err := authSvc.Register(r.Context(), service.RegisterInput{
			Username:    req.Username,
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
			About:       req.About,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		// Auto-login after registration
		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to login after registration"})
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{
			AccessToken: resp.AccessToken,
			TokenType:   "bearer",
			User:        user,
		})
	}
}

func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: resp.AccessToken,
			TokenType:   "bearer",
			User:        resp.User,
		})
	}
}

func handleLogout(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		if err := authSvc.Logout(r.Context(), user.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
