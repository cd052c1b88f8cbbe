package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleGetProfile returns the caller's user record with the password
// hash excluded.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Msg("profile: get failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
}

// handleUpdateProfile updates username and phone number. Email and
// password fields in the body are ignored.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.Username == "" || req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "Username and phone number are required")
		return
	}

	_, err := s.users.UpdateProfile(r.Context(), userIDFromContext(r.Context()), req.Username, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Msg("profile: update failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
	})
}

type addAddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// handleAddAddress appends an address to the caller's list. New addresses
// are never the default, whatever the client sent.
func (s *Server) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	var req addAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.ZipCode = strings.TrimSpace(req.ZipCode)
	if req.Street == "" || req.City == "" || req.State == "" || req.ZipCode == "" {
		writeError(w, http.StatusBadRequest, "All address fields are required")
		return
	}

	user, err := s.users.AddAddress(r.Context(), userIDFromContext(r.Context()), Address{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Msg("profile: add address failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"message": "Address added successfully",
	})
}

// handleRemoveAddress deletes one address by id.
func (s *Server) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	addressID := chi.URLParam(r, "id")
	userID := userIDFromContext(r.Context())

	// Distinguish a missing user from a missing address; the removal
	// statement below reports both as zero rows.
	if _, err := s.users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Msg("profile: lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := s.users.RemoveAddress(r.Context(), userID, addressID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Address not found")
			return
		}
		s.log.Error().Err(err).Msg("profile: remove address failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Address deleted successfully",
	})
}
