package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestClassifyFileType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.pdf", "pdf"},
		{"Report.PDF", "pdf"},
		{"sheet.xlsx", "excel"},
		{"sheet.xls", "excel"},
		{"data.csv", "excel"},
		{"letter.docx", "word"},
		{"letter.doc", "word"},
		{"notes.txt", "txt"},
		{"archive.zip", "unknown"},
		{"noextension", "unknown"},
	}
	for _, tc := range tests {
		if got := classifyFileType(tc.name); got != tc.want {
			t.Errorf("classifyFileType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStorageKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	key := storageKey(now, "report.pdf")
	if !strings.HasPrefix(key, "uploads/") {
		t.Errorf("key %q missing uploads/ prefix", key)
	}
	if !strings.HasSuffix(key, "-report.pdf") {
		t.Errorf("key %q should end with the original name", key)
	}

	// Path components in the client name must not escape the prefix.
	escaped := storageKey(now, "../../etc/passwd")
	if strings.Contains(escaped, "..") {
		t.Errorf("key %q retains path traversal", escaped)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadMissingFile(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	s := newTestServer(t, db, storage)

	// multipart body with the wrong field name
	body, contentType := multipartBody(t, "attachment", "report.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(t, s, "u-1"))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "No file provided")
}

func TestUploadStoresPayloadAndMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	root := t.TempDir()
	storage, err := NewDiskStorage(root)
	require.NoError(t, err)

	payload := []byte("%PDF-1.4 test content")
	mock.ExpectQuery("INSERT INTO files").
		WithArgs(
			sqlmock.AnyArg(),         // id
			sqlmock.AnyArg(),         // storage key
			"report.pdf",             // original name
			"pdf",                    // classified type
			int64(len(payload)),      // size
			sqlmock.AnyArg(),         // path
			"u-1",                    // owner
		).
		WillReturnRows(sqlmock.NewRows([]string{"upload_date"}).AddRow(time.Now().UTC()))

	s := newTestServer(t, db, storage)

	body, contentType := multipartBody(t, "file", "report.pdf", payload)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(t, s, "u-1"))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		File FileRecord `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "report.pdf", resp.File.OriginalName)
	require.Equal(t, "pdf", resp.File.FileType)
	require.Equal(t, int64(len(payload)), resp.File.Size)
	require.Equal(t, "u-1", resp.File.UserID)

	// The payload must have landed on disk under the generated key.
	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(resp.File.Filename)))
	require.NoError(t, err)
	require.Equal(t, payload, stored)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, filename, original_name").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "original_name", "file_type", "size_bytes", "upload_date"}).
			AddRow("f-1", "uploads/1-report.pdf", "report.pdf", "pdf", 123, now).
			AddRow("f-2", "uploads/2-notes.txt", "notes.txt", "txt", 45, now))

	s := newTestServer(t, db, nil)

	rr := getWithCookie(t, s.Handler(), http.MethodGet, "/api/files", authCookie(t, s, "u-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var files []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &files))
	require.Len(t, files, 2)
	// Summary shape: the storage path must not appear.
	require.NotContains(t, files[0], "path")
}
