package handler

import (
	"errors"
	"net/http"
	"os"
	"path"

	"pasta-logger/internal/storage"

	"github.com/rs/zerolog"
)

// FileOpener opens a stored object after checking its signed token.
type FileOpener interface {
	Open(bucket, key, token string) (*os.File, error)
}

// FileHandler serves objects kept by the local store.
type FileHandler struct {
	files  FileOpener
	logger zerolog.Logger
}

// NewFileHandler creates a new file handler.
func NewFileHandler(files FileOpener, logger zerolog.Logger) *FileHandler {
	return &FileHandler{
		files:  files,
		logger: logger.With().Str("handler", "file").Logger(),
	}
}

// Serve handles GET /files/{bucket}/{key...}?token=...
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	bucket, key := r.PathValue("bucket"), r.PathValue("key")

	f, err := h.files.Open(bucket, key, r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, storage.ErrInvalidToken):
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	case errors.Is(err, storage.ErrInvalidKey), errors.Is(err, os.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("failed to open file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
}
