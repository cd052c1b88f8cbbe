package server

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"filedrive/internal/config"
)

// newTestServer wires a Server around the given database handle and
// storage backend with a fixed signing secret.
func newTestServer(t *testing.T, db *sql.DB, storage Storage) *Server {
	t.Helper()
	cfg := config.Config{
		Addr:        ":0",
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	}
	return New(cfg, zerolog.Nop(), db, storage)
}

// authCookie issues a valid session cookie for the given user id.
func authCookie(t *testing.T, s *Server, userID string) *http.Cookie {
	t.Helper()
	token, exp, err := s.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: authCookieName, Value: token, Expires: exp}
}
