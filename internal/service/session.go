package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
)

// Session is an authenticated account. It owns the vault key and must be
// closed when the user signs out.
type Session struct {
	Email string
	URLs  models.ServerURLs
	Kdf   models.KdfParams

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	key          *crypto.SymmetricKey
}

func newSession(email string, urls models.ServerURLs, kdf models.KdfParams, resp models.TokenResponse, key *crypto.SymmetricKey, now time.Time) *Session {
	return &Session{
		Email:        email,
		URLs:         urls,
		Kdf:          kdf,
		accessToken:  resp.AccessToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    tokenExpiry(resp.ExpiresIn, resp.AccessToken, now),
		key:          key,
	}
}

// tokenExpiry prefers expires_in and falls back to the JWT exp claim.
// A zero time means the expiry is unknown.
func tokenExpiry(expiresIn int, accessToken string, now time.Time) time.Time {
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	exp, err := utils.ParseTokenExpiry(accessToken)
	if err != nil {
		return time.Time{}
	}
	return exp
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Key returns the vault key, or nil once the session is closed.
func (s *Session) Key() *crypto.SymmetricKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// NeedsRefresh reports whether the access token expires within margin of
// now. An unknown expiry never asks for a refresh.
func (s *Session) NeedsRefresh(now time.Time, margin time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.expiresAt.IsZero() {
		return false
	}
	return !now.Add(margin).Before(s.expiresAt)
}

// ApplyRefresh stores the tokens of a refresh grant. The server may omit
// a new refresh token, in which case the old one stays.
func (s *Session) ApplyRefresh(resp models.RefreshResponse, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.refreshToken = resp.RefreshToken
	}
	s.expiresAt = tokenExpiry(resp.ExpiresIn, resp.AccessToken, now)
}

// Close zeroes the vault key and forgets the tokens.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key.Close()
	s.key = nil
	s.accessToken = ""
	s.refreshToken = ""
}
