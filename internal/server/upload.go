package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxUploadMemory bounds how much of a multipart body is buffered in
// memory before spilling to a temp file.
const maxUploadMemory = 32 << 20 // 32 MiB

// handleUpload accepts a multipart upload under the "file" field, streams
// the payload to the storage backend and records the metadata. The stored
// size is taken from the received payload at upload time and is not
// re-verified later.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	now := time.Now().UTC()
	key := storageKey(now, header.Filename)
	contentType := header.Header.Get("Content-Type")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	path, err := s.storage.Put(ctx, key, file, header.Size, contentType)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("upload: storage write failed")
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	rec, err := s.files.Insert(ctx, FileRecord{
		ID:           uuid.NewString(),
		Filename:     key,
		OriginalName: header.Filename,
		FileType:     classifyFileType(header.Filename),
		Size:         header.Size,
		Path:         path,
		UserID:       userIDFromContext(r.Context()),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("upload: insert failed")
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	s.log.Info().
		Str("file_id", rec.ID).
		Str("user_id", rec.UserID).
		Str("file_type", rec.FileType).
		Int64("size", rec.Size).
		Msg("file uploaded")

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Uploaded successfully",
		"file":    rec,
	})
}

// handleListFiles returns the caller's files as summaries; the storage
// path never appears in the response.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.files.ListByOwner(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.log.Error().Err(err).Msg("files: list failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
