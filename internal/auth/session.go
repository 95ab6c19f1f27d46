package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
)

const (
	sessionUserKey      = "user"
	sessionTokenKey     = "token"
	sessionTimestampKey = "timestamp"
	flashMessageKey     = "flash_message"
	flashTypeKey        = "flash_type"
)

// SessionManager wraps fiber's session store with the authentication and
// flash-message accessors the handlers need.
type SessionManager struct {
	store *session.Store
}

// NewSessionManager builds the manager. A nil storage keeps sessions in
// process memory; a Redis-backed storage makes them survive restarts.
func NewSessionManager(cfg config.SessionConfig, storage fiber.Storage) *SessionManager {
	conf := session.Config{
		Expiration:     cfg.TTL(),
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieHTTPOnly: true,
	}
	if storage != nil {
		conf.Storage = storage
	}
	return &SessionManager{store: session.New(conf)}
}

// NewSessionToken returns a random 256-bit hex string.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create binds a fresh session to the request: public user view, random
// token, and creation timestamp.
func (m *SessionManager) Create(c *fiber.Ctx, user domain.PublicUser) (*domain.Session, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, err
	}
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	sess.Set(sessionUserKey, string(encoded))
	sess.Set(sessionTokenKey, token)
	sess.Set(sessionTimestampKey, now)
	if err := sess.Save(); err != nil {
		return nil, err
	}
	return &domain.Session{User: user, Token: token, Timestamp: now}, nil
}

// Current returns the authenticated user stored in the session, or nil.
func (m *SessionManager) Current(c *fiber.Ctx) *domain.PublicUser {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil
	}
	encoded, ok := sess.Get(sessionUserKey).(string)
	if !ok || encoded == "" {
		return nil
	}
	var user domain.PublicUser
	if err := json.Unmarshal([]byte(encoded), &user); err != nil {
		return nil
	}
	return &user
}

// Token returns the session token, or empty when absent.
func (m *SessionManager) Token(c *fiber.Ctx) string {
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	token, _ := sess.Get(sessionTokenKey).(string)
	return token
}

// IsAuthenticated is true iff the session holds both a user and a token.
func (m *SessionManager) IsAuthenticated(c *fiber.Ctx) bool {
	return m.Current(c) != nil && m.Token(c) != ""
}

// Destroy clears the session entirely.
func (m *SessionManager) Destroy(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// SetFlash stores a one-shot notice shown on the next rendered page.
func (m *SessionManager) SetFlash(c *fiber.Ctx, message, kind string) {
	sess, err := m.store.Get(c)
	if err != nil {
		return
	}
	sess.Set(flashMessageKey, message)
	sess.Set(flashTypeKey, kind)
	_ = sess.Save()
}

// TakeFlash returns the pending flash message and clears it.
func (m *SessionManager) TakeFlash(c *fiber.Ctx) (message, kind string) {
	sess, err := m.store.Get(c)
	if err != nil {
		return "", "success"
	}
	message, _ = sess.Get(flashMessageKey).(string)
	kind, _ = sess.Get(flashTypeKey).(string)
	if kind == "" {
		kind = "success"
	}
	if message != "" {
		sess.Delete(flashMessageKey)
		sess.Delete(flashTypeKey)
		_ = sess.Save()
	}
	return message, kind
}
