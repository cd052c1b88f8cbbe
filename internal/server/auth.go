package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// userIDFromContext returns the authenticated principal set by
// requireAuth. Empty outside guarded routes.
func userIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(userIDKey).(string); ok {
		return s
	}
	return ""
}

// hashPassword generates a bcrypt hash of the password.
// bcrypt cost of 12 is a good balance of security and performance.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a new user. Registration never issues a token;
// the client logs in separately.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Username == "" || req.Email == "" || req.Password == "" || req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("register: hash failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Email, passwordHash, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		s.log.Error().Err(err).Msg("register: create failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// handleLogin checks credentials and issues a session token. Unknown
// email and wrong password produce the identical response so the endpoint
// cannot be used to probe for accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	userID, passwordHash, err := s.users.Credentials(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Msg("login: lookup failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !verifyPassword(req.Password, passwordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, exp, err := s.tokens.Issue(userID)
	if err != nil {
		s.log.Error().Err(err).Msg("login: token issue failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleLogout clears the auth cookie. The token itself stays valid until
// natural expiry; there is no server-side revocation.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// requireAuth guards protected routes. It rejects requests without a
// valid, unexpired token before any data access happens and stores the
// decoded user id in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(authCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := s.tokens.Verify(c.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
