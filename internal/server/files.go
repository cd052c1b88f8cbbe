package server

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord is the full metadata row for one uploaded file, including the
// opaque storage path. API listings use FileSummary instead so the path
// never leaves the server.
type FileRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	Size         int64     `json:"size"`
	Path         string    `json:"path"`
	UserID       string    `json:"userId"`
	UploadDate   time.Time `json:"uploadDate"`
}

// FileSummary is the projection returned by GET /api/files.
type FileSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"uploadDate"`
}

// classifyFileType buckets a filename into the known type set by
// extension. Unrecognized extensions classify as "unknown", which the
// schema accepts as a first-class type.
func classifyFileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xls", ".csv":
		return "excel"
	case ".docx", ".doc":
		return "word"
	case ".txt":
		return "txt"
	default:
		return "unknown"
	}
}

// storageKey builds a collision-resistant object key from the upload time
// and the client-supplied name. The original name is kept in the key for
// operator convenience; path separators are stripped so a crafted filename
// cannot escape the uploads/ prefix.
func storageKey(now time.Time, originalName string) string {
	base := path.Base(filepath.ToSlash(originalName))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return fmt.Sprintf("uploads/%d-%s", now.UnixMilli(), base)
}

// FileStore persists file metadata in the files table.
type FileStore struct {
	db *sql.DB
}

func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) Insert(ctx context.Context, rec FileRecord) (FileRecord, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO files (id, filename, original_name, file_type, size_bytes, path, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING upload_date`,
		rec.ID, rec.Filename, rec.OriginalName, rec.FileType, rec.Size, rec.Path, rec.UserID,
	).Scan(&rec.UploadDate)
	if err != nil {
		return FileRecord{}, fmt.Errorf("insert file record: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the caller's files, newest first, without the
// storage path.
func (s *FileStore) ListByOwner(ctx context.Context, userID string) ([]FileSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, original_name, file_type, size_bytes, upload_date
		 FROM files WHERE user_id = $1
		 ORDER BY upload_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	summaries := []FileSummary{}
	for rows.Next() {
		var f FileSummary
		if err := rows.Scan(&f.ID, &f.Filename, &f.OriginalName, &f.FileType, &f.Size, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("scan file summary: %w", err)
		}
		summaries = append(summaries, f)
	}
	return summaries, rows.Err()
}

func (s *FileStore) GetByID(ctx context.Context, id string) (FileRecord, error) {
	var rec FileRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, original_name, file_type, size_bytes, path, user_id, upload_date
		 FROM files WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Filename, &rec.OriginalName, &rec.FileType, &rec.Size, &rec.Path, &rec.UserID, &rec.UploadDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return FileRecord{}, ErrNotFound
		}
		return FileRecord{}, fmt.Errorf("get file record: %w", err)
	}
	return rec, nil
}
