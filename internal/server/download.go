package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleDownload streams a stored payload by file id. Any authenticated
// user may fetch any file; there is no ownership check on this route.
// The attachment filename is the upload-time original name, not the
// generated storage key.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		// ids are UUIDs; anything else cannot name a file
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	rec, err := s.files.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		s.log.Error().Err(err).Msg("download: lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	obj, err := s.storage.Get(ctx, rec.Filename)
	if err != nil {
		s.log.Error().Err(err).Str("file_id", rec.ID).Msg("download: storage read failed")
		writeError(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if rec.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rec.OriginalName))
	w.WriteHeader(http.StatusOK)

	_, _ = io.Copy(w, obj)
}
