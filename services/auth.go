package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionNonceLength is the random part of a session token in bytes
	SessionNonceLength = 16
	// DefaultSessionDuration is how long an office session stays valid
	DefaultSessionDuration = 12 * time.Hour
)

var (
	// ErrInvalidSession is returned for malformed or tampered tokens
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired is returned for tokens past their expiry
	ErrSessionExpired = errors.New("session expired")
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SessionSigner issues and verifies office session tokens. A token is
// "<expiry-unix>.<nonce>.<mac>" where mac is HMAC-SHA256 over the first two
// parts, so no server-side session table is needed.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner creates a signer. A zero ttl uses DefaultSessionDuration.
func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &SessionSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Issue creates a new token and returns it with its expiry
func (s *SessionSigner) Issue() (string, time.Time, error) {
	nonce := make([]byte, SessionNonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}
	expires := s.now().Add(s.ttl)
	payload := strconv.FormatInt(expires.Unix(), 10) + "." + hex.EncodeToString(nonce)
	return payload + "." + s.sign(payload), expires, nil
}

// Verify checks the signature and expiry of a token
func (s *SessionSigner) Verify(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidSession
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(payload))) {
		return ErrInvalidSession
	}
	expires, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrInvalidSession
	}
	if !s.now().Before(time.Unix(expires, 0)) {
		return ErrSessionExpired
	}
	return nil
}

func (s *SessionSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
