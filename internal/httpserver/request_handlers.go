package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/service"
)

// handleSubmitRequest reviews a feed candidate:
// POST /requests/send/{status}/{userID}, status "interested" or "ignored".
func handleSubmitRequest(requestSvc *service.RequestService, feedSvc *service.FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		intent := domain.RequestStatus(chi.URLParam(r, "status"))
		targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}

		req, err := requestSvc.Submit(r.Context(), caller.ID, targetID, intent)
		if err != nil {
			writeError(w, err)
			return
		}
		// a fresh review makes previously skipped feed candidates eligible again
		feedSvc.NoteReviewed(caller.ID)

		writeJSON(w, http.StatusCreated, req)
	}
}

// handleReviewRequest applies the recipient's decision:
// POST /requests/review/{decision}/{requestID}, decision "accepted" or "rejected".
func handleReviewRequest(requestSvc *service.RequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		decision := domain.RequestStatus(chi.URLParam(r, "decision"))
		requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request id"})
			return
		}

		req, err := requestSvc.Review(r.Context(), caller.ID, requestID, decision)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func handleListReceived(requestSvc *service.RequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		reqs, err := requestSvc.ListReceived(r.Context(), caller.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reqs)
	}
}

func handleListConnections(requestSvc *service.RequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		users, err := requestSvc.ListConnections(r.Context(), caller.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// handleFeedNext returns the next unreviewed candidate, 204 when exhausted.
func handleFeedNext(feedSvc *service.FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := CurrentUser(r)
		if caller == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		candidate, err := feedSvc.NextCandidate(r.Context(), caller.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if candidate == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, candidate)
	}
}
