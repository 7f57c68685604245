// Package session implements the server side session store.
//
// The store maps the id in the session cookie to the provider issued session
// summary. It is a cache, not a source of truth: whenever the provider is
// reachable its own session check wins.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"

	"github.com/go-jobboard/jobboard/internal/authsvc"
)

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User         authsvc.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session data for the given session ID.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// ErrSessionNotFound is returned when no session data exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// Init initializes the session store with the provided storage backend.
func Init(st storage.Storage) {
	if st == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: st,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewValidator builds the session check used by the gatekeeper. The store
// lookup answers "is there a session at all"; the provider call answers
// whether it is still alive. Provider outages surface as errors so the
// caller can fail open.
func NewValidator(provider authsvc.Provider) func(ctx context.Context, sessionID string) (bool, error) {
	return func(ctx context.Context, sessionID string) (bool, error) {
		if sessionID == "" {
			return false, nil
		}

		data := new(Data)
		if err := data.Read(sessionID); err != nil {
			// unknown session id is an answer, not a failure
			return false, nil
		}

		_, err := provider.GetUser(ctx, data.AccessToken)
		if err != nil {
			if errors.Is(err, authsvc.ErrSessionInvalid) {
				return false, nil
			}

			return false, err
		}

		return true, nil
	}
}

// Current resolves the session data behind a session id, or nil without one.
func Current(sessionID string) *Data {
	if sessionID == "" {
		return nil
	}

	data := new(Data)
	if err := data.Read(sessionID); err != nil {
		return nil
	}

	return data
}
