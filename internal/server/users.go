package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Address is one entry in a user's embedded address list, stored as a
// JSONB array on the users row.
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	IsDefault bool   `json:"isDefault"`
}

// User is the sanitized user record returned by the API. The password
// hash lives only in the database and in the Credentials lookup.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Addresses   []Address `json:"addresses"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// userColumns is the sanitized projection; password_hash is deliberately
// absent.
const userColumns = "id, username, email, phone_number, addresses, created_at, updated_at"

// UserStore persists users and their embedded addresses.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		rawAddrs []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &rawAddrs, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}

	u.Addresses = []Address{}
	if len(rawAddrs) > 0 {
		if err := json.Unmarshal(rawAddrs, &u.Addresses); err != nil {
			return User{}, fmt.Errorf("decode addresses: %w", err)
		}
	}
	return u, nil
}

// Create inserts a new user with an empty address list. A taken email
// reports ErrEmailTaken.
func (s *UserStore) Create(ctx context.Context, username, email, passwordHash, phoneNumber string) (User, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return User{}, ErrEmailTaken
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, phone_number)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		uuid.NewString(), username, email, passwordHash, phoneNumber,
	)
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Credentials returns the id and password hash for an email, for login
// verification. ErrNotFound for an unknown email.
func (s *UserStore) Credentials(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("lookup credentials: %w", err)
	}
	return id, hash, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	return scanUser(row)
}

// UpdateProfile changes username and phone number only. Email and
// password are not updatable through this path.
func (s *UserStore) UpdateProfile(ctx context.Context, id, username, phoneNumber string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET username = $2, phone_number = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, username, phoneNumber,
	)
	return scanUser(row)
}

// AddAddress appends one address to the user's list in a single atomic
// statement, so concurrent appends never lose entries. The address gets a
// fresh id and is never the default.
func (s *UserStore) AddAddress(ctx context.Context, userID string, addr Address) (User, error) {
	addr.ID = uuid.NewString()
	addr.IsDefault = false

	doc, err := json.Marshal(addr)
	if err != nil {
		return User{}, fmt.Errorf("encode address: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET addresses = addresses || $2::jsonb, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, doc,
	)
	return scanUser(row)
}

// RemoveAddress deletes one address by id. The containment guard in the
// WHERE clause makes the filter-and-write atomic: if the address is gone
// by the time the statement runs, zero rows come back and the caller sees
// ErrNotFound instead of a silent no-op overwrite.
func (s *UserStore) RemoveAddress(ctx context.Context, userID, addressID string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users
		 SET addresses = (
		     SELECT COALESCE(jsonb_agg(elem), '[]'::jsonb)
		     FROM jsonb_array_elements(addresses) AS elem
		     WHERE elem->>'id' <> $2
		 ), updated_at = now()
		 WHERE id = $1
		   AND addresses @> jsonb_build_array(jsonb_build_object('id', $2::text))
		 RETURNING `+userColumns,
		userID, addressID,
	)
	return scanUser(row)
}
