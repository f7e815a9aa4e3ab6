package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect_go/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrSelfRequest, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrNotConnected, http.StatusNotFound},
		{domain.ErrDuplicateRequest, http.StatusConflict},
		{domain.ErrAlreadyReviewed, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrTransient, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			// wrapped errors map the same as bare sentinels
			writeError(rec, fmt.Errorf("context: %w", tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}
