package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthHandler serves login, signup and logout.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewValidationError("invalid payload", nil), "/login")
	}
	if req.Email == "" || req.Password == "" {
		return h.fail(c, apperrors.NewValidationError("Email and password are required", nil), "/login")
	}

	user, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err, "/login")
	}
	return h.establish(c, user, "Welcome back!")
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewValidationError("invalid payload", nil), "/signup")
	}

	var problems []string
	if req.Name == "" {
		problems = append(problems, "Name is required")
	}
	if req.Email == "" {
		problems = append(problems, "Email is required")
	}
	if req.Password == "" {
		problems = append(problems, "Password is required")
	} else if len(req.Password) < 6 {
		problems = append(problems, "Password must be at least 6 characters")
	}
	if len(problems) > 0 {
		return h.fail(c, apperrors.NewValidationError(strings.Join(problems, ", "), nil), "/signup")
	}

	user, err := h.auth.Signup(c.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return h.fail(c, err, "/signup")
	}
	return h.establish(c, user, "Account created successfully!")
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_ = h.sessions.Destroy(c)
	if auth.WantsJSON(c) {
		return c.JSON(fiber.Map{"success": true, "redirect": "/"})
	}
	return c.Redirect("/", fiber.StatusFound)
}

// establish creates the session and answers per content negotiation: JSON
// with the session and a bearer token for AJAX callers, flash plus redirect
// for plain form posts.
func (h *AuthHandler) establish(c *fiber.Ctx, user *domain.User, message string) error {
	sess, err := h.sessions.Create(c, user.Public())
	if err != nil {
		return err
	}

	if auth.WantsJSON(c) {
		token, exp, err := h.auth.IssueToken(user)
		if err != nil {
			return err
		}
		return c.JSON(dto.AuthResponse{
			Success:  true,
			Message:  message,
			Session:  *sess,
			Token:    token,
			Expires:  exp,
			Redirect: "/dashboard",
		})
	}
	h.sessions.SetFlash(c, message, "success")
	return c.Redirect("/dashboard", fiber.StatusFound)
}

func (h *AuthHandler) fail(c *fiber.Ctx, err error, backTo string) error {
	if auth.WantsJSON(c) {
		return err
	}
	domainErr := apperrors.ToDomainError(err)
	h.sessions.SetFlash(c, domainErr.Message, "error")
	return c.Redirect(backTo, fiber.StatusFound)
}
