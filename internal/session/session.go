// Package session derives the active user identity from the persisted
// bearer token. It performs no network calls; the token is decoded
// locally and the server remains the authority on its validity.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/raccoon129/xires-notify/internal/credential"
	"github.com/raccoon129/xires-notify/internal/model"
)

// flexID decodes a JSON value that may arrive as either a number or a
// string into a string.
type flexID string

// UnmarshalJSON implements json.Unmarshaler for flexID.
func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

// sessionClaims is the subset of token claims the client cares about.
type sessionClaims struct {
	UserID      flexID `json:"user_id"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// Resolver projects the persisted token into a model.Identity. The
// credential store is injected so tests can substitute an in-memory
// fake.
type Resolver struct {
	creds credential.Store

	mu      sync.RWMutex
	current model.Identity
}

// NewResolver creates a Resolver over the given credential store.
func NewResolver(creds credential.Store) *Resolver {
	return &Resolver{creds: creds}
}

// Resolve reads the persisted token and derives the current Identity.
// A missing, malformed, or expired token degrades to the anonymous
// Identity; it is never an error to the caller.
func (r *Resolver) Resolve() model.Identity {
	token, err := r.creds.Get(credential.KeyToken)
	if err != nil || token == "" {
		return r.setCurrent(model.Anonymous)
	}
	return r.setCurrent(decodeToken(token))
}

// Current returns the most recently resolved Identity without touching
// the credential store.
func (r *Resolver) Current() model.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Token returns the persisted bearer token, or the empty string when
// no token is stored.
func (r *Resolver) Token() string {
	token, err := r.creds.Get(credential.KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// UpdateAfterLogin persists a freshly issued token and re-resolves the
// Identity synchronously, so dependent components observe the new
// session on their next read.
func (r *Resolver) UpdateAfterLogin(token string) (model.Identity, error) {
	if err := r.creds.Set(credential.KeyToken, token); err != nil {
		return model.Anonymous, fmt.Errorf("persisting session token: %w", err)
	}
	return r.setCurrent(decodeToken(token)), nil
}

// Clear removes the persisted token and resets the Identity to
// anonymous.
func (r *Resolver) Clear() error {
	r.setCurrent(model.Anonymous)
	if err := r.creds.Delete(credential.KeyToken); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	return nil
}

// setCurrent stores and returns the given Identity.
func (r *Resolver) setCurrent(id model.Identity) model.Identity {
	r.mu.Lock()
	r.current = id
	r.mu.Unlock()
	return id
}

// decodeToken extracts an Identity from a bearer token. The token is
// decoded without signature verification: the client never holds the
// signing secret, and every authenticated request is re-validated
// server-side anyway. Any decode failure degrades to anonymous.
func decodeToken(token string) model.Identity {
	claims := &sessionClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		log.Printf("session: discarding undecodable token: %v", err)
		return model.Anonymous
	}

	userID := string(claims.UserID)
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		log.Printf("session: token carries no user id, treating as logged out")
		return model.Anonymous
	}

	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return model.Anonymous
	}

	return model.Identity{
		UserID:        userID,
		DisplayName:   claims.DisplayName,
		Authenticated: true,
	}
}

// DismissBanner records that the user closed the promotional banner.
// The flag shares the credential storage mechanism but lives under its
// own key; it has no effect on the session itself.
func DismissBanner(creds credential.Store) error {
	return creds.Set(credential.KeyBannerDismissed, strconv.FormatBool(true))
}

// BannerDismissed reports whether the promotional banner was dismissed.
func BannerDismissed(creds credential.Store) bool {
	v, err := creds.Get(credential.KeyBannerDismissed)
	if err != nil {
		return false
	}
	dismissed, _ := strconv.ParseBool(v)
	return dismissed
}
