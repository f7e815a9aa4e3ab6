package httpserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"devconnect_go/internal/config"
)

var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// UploadRoutes returns a sub-router mounted at /api/uploads. Chat images are
// uploaded here and referenced from messages by URL.
func UploadRoutes(cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB limit
			http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if _, ok := allowedImageExts[ext]; !ok {
			http.Error(w, "unsupported file type", http.StatusBadRequest)
			return
		}

		filename := uuid.NewString() + ext
		destPath := filepath.Join(cfg.UploadDir, filename)

		out, err := os.Create(destPath)
		if err != nil {
			http.Error(w, "could not create file", http.StatusInternalServerError)
			return
		}
		defer out.Close()

		if _, err := io.Copy(out, file); err != nil {
			http.Error(w, "could not save file", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"filename":  filename,
			"image_url": "/api/uploads/" + filename,
		})
	})

	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" {
			http.Error(w, "missing filename", http.StatusBadRequest)
			return
		}
		// Prevent path traversal by cleaning the path and not allowing separators.
		if filepath.Base(filename) != filename {
			http.Error(w, "invalid filename", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.UploadDir, filename))
	})

	return r
}
