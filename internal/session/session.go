// Package session persists the authenticated session (bearer token plus the
// denormalized login snapshot) in a JSON file so it survives restarts.
// The stored token is never validated against the server; an expired token
// is only discovered when a subsequent request fails.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/patric-chuzhbe/shopadmin/internal/models"
)

type snapshot struct {
	AuthToken   string                `json:"authToken"`
	CurrentUser *models.LoginResponse `json:"currentUser,omitempty"`
}

// Store is the file-backed session state.
type Store struct {
	fileName string
	cache    snapshot
}

func initStoreFile(fileName string) error {
	storeFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(storeFile, `{
	"authToken": ""
}`)
	if err != nil {
		return err
	}
	return storeFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *snapshot) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil {
		return err
	}

	return nil
}

// New opens the session store backed by fileName, creating an empty
// unauthenticated store when the file does not exist yet.
func New(fileName string) (*Store, error) {
	store := Store{
		fileName: fileName,
		cache:    snapshot{},
	}

	err := parseJSONFile(store.fileName, &store.cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initStoreFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(store.fileName, &store.cache)
		if err != nil {
			return nil, err
		}
	}

	return &store, nil
}

// Token returns the stored bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	return s.cache.AuthToken
}

// CurrentUser returns the persisted login snapshot, or nil when
// unauthenticated.
func (s *Store) CurrentUser() *models.LoginResponse {
	return s.cache.CurrentUser
}

// IsAuthenticated reports whether a token is present in the store.
func (s *Store) IsAuthenticated() bool {
	return s.cache.AuthToken != ""
}

// Save stores the token and login snapshot and persists them immediately.
func (s *Store) Save(login *models.LoginResponse) error {
	s.cache.AuthToken = login.Token
	s.cache.CurrentUser = login

	return writeToJSONFile(s.fileName, s.cache)
}

// Clear removes the session state and persists the empty store.
func (s *Store) Clear() error {
	s.cache = snapshot{}

	return writeToJSONFile(s.fileName, s.cache)
}

// ExpiresAt decodes the unverified exp claim of the stored token for
// informational display. It never triggers a logout and is not a
// server-side validation. The second result is false when no token is
// stored, the token is not a JWT, or it carries no expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	if s.cache.AuthToken == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(s.cache.AuthToken, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}
