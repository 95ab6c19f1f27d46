package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
)

// PagesHandler renders the server-side HTML pages.
type PagesHandler struct {
	sessions *auth.SessionManager
	tickets  *service.TicketService
}

// NewPagesHandler constructs handler.
func NewPagesHandler(sessions *auth.SessionManager, ticketService *service.TicketService) *PagesHandler {
	return &PagesHandler{sessions: sessions, tickets: ticketService}
}

// Home renders GET /.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	return c.Render("pages/home", h.viewData(c))
}

// LoginPage renders GET /login; authenticated users go to the dashboard.
func (h *PagesHandler) LoginPage(c *fiber.Ctx) error {
	if h.sessions.IsAuthenticated(c) {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.Render("pages/login", h.viewData(c))
}

// SignupPage renders GET /signup; authenticated users go to the dashboard.
func (h *PagesHandler) SignupPage(c *fiber.Ctx) error {
	if h.sessions.IsAuthenticated(c) {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.Render("pages/signup", h.viewData(c))
}

// Dashboard renders GET /dashboard with the acting user's ticket stats.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	stats, err := h.tickets.Stats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	data := h.viewData(c)
	data["stats"] = stats
	return c.Render("pages/dashboard", data)
}

// TicketsPage renders GET /tickets with the acting user's ticket list.
func (h *PagesHandler) TicketsPage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	tickets, err := h.tickets.List(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	data := h.viewData(c)
	data["tickets"] = tickets
	return c.Render("pages/tickets", data)
}

// NotFound is the catch-all route.
func (h *PagesHandler) NotFound(c *fiber.Ctx) error {
	if auth.WantsJSON(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "page not found"})
	}
	return c.Status(fiber.StatusNotFound).Render("pages/404", h.viewData(c))
}

func (h *PagesHandler) viewData(c *fiber.Ctx) fiber.Map {
	message, kind := h.sessions.TakeFlash(c)
	return fiber.Map{
		"is_authenticated": h.sessions.IsAuthenticated(c),
		"user":             h.sessions.Current(c),
		"current_page":     currentPage(c.Path()),
		"flash_message":    message,
		"flash_type":       kind,
	}
}

func currentPage(path string) string {
	switch {
	case strings.HasPrefix(path, "/dashboard"):
		return "dashboard"
	case strings.HasPrefix(path, "/tickets"):
		return "tickets"
	}
	return "home"
}
