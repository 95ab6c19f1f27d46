package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// Middleware guards routes that require an authenticated user. It accepts
// either the session cookie or an Authorization bearer token.
type Middleware struct {
	sessions *SessionManager
	tokens   *TokenManager
	users    repository.UserRepository
}

// NewMiddleware constructs the guard.
func NewMiddleware(sessions *SessionManager, tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{sessions: sessions, tokens: tokens, users: users}
}

// RequireUser loads the acting user into locals or rejects the request.
// Browser requests are redirected to the login page with a flash notice;
// AJAX and API callers get a 401 JSON body.
func (m *Middleware) RequireUser(c *fiber.Ctx) error {
	user, err := m.resolveUser(c)
	if err != nil {
		if WantsJSON(c) {
			return apperrors.NewUnauthorized("Unauthorized access — please log in")
		}
		m.sessions.SetFlash(c, "Your session has expired — please log in again.", "error")
		return c.Redirect("/login", fiber.StatusFound)
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

func (m *Middleware) resolveUser(c *fiber.Ctx) (*domain.User, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, errors.New("invalid authorization header")
		}
		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			return nil, err
		}
		return m.users.GetByID(c.Context(), claims.UserID)
	}

	current := m.sessions.Current(c)
	if current == nil || m.sessions.Token(c) == "" {
		return nil, errors.New("no session")
	}
	// The session carries only the public view; reload the record so a
	// deleted account cannot keep acting through a stale cookie.
	user, err := m.users.GetByID(c.Context(), current.ID)
	if err != nil {
		return nil, err
	}
	if user.Email != current.Email {
		return nil, errors.New("session user mismatch")
	}
	return user, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// WantsJSON reports whether the caller expects a JSON response instead of a
// rendered page: the classic AJAX header or an explicit JSON accept.
func WantsJSON(c *fiber.Ctx) bool {
	if strings.EqualFold(c.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
