package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for the acting user.
type TicketsHandler struct {
	service  *service.TicketService
	sessions *auth.SessionManager
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, sessions *auth.SessionManager) *TicketsHandler {
	return &TicketsHandler{service: ticketService, sessions: sessions}
}

// Create handles POST /tickets/create.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewValidationError("invalid payload", nil))
	}

	ticket, err := h.service.Create(c.Context(), principal.User.ID, ticketInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, "Ticket created successfully", dto.TicketResponse{Success: true, Message: "Ticket created successfully", Ticket: ticket})
}

// Update handles POST /tickets/update.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewValidationError("invalid payload", nil))
	}

	ticket, err := h.service.Update(c.Context(), principal.User.ID, req.TicketID, ticketInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, "Ticket updated successfully", dto.TicketResponse{Success: true, Message: "Ticket updated successfully", Ticket: ticket})
}

// Delete handles POST /tickets/delete.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DeleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewValidationError("invalid payload", nil))
	}

	deleted, err := h.service.Delete(c.Context(), principal.User.ID, req.TicketID)
	if err != nil {
		return h.fail(c, err)
	}
	if !deleted {
		return h.fail(c, apperrors.NewNotFound("ticket", nil))
	}
	return h.ok(c, "Ticket deleted successfully", dto.TicketResponse{Success: true, Message: "Ticket deleted successfully"})
}

// Get handles GET /tickets/get/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.service.Get(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketResponse{Success: true, Ticket: ticket})
}

// Stats handles GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.service.Stats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Search handles GET /tickets/search?q=.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tickets, err := h.service.Search(c.Context(), principal.User.ID, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketListResponse{Success: true, Tickets: tickets})
}

func (h *TicketsHandler) ok(c *fiber.Ctx, message string, body dto.TicketResponse) error {
	if auth.WantsJSON(c) {
		return c.JSON(body)
	}
	h.sessions.SetFlash(c, message, "success")
	return c.Redirect("/tickets", fiber.StatusFound)
}

func (h *TicketsHandler) fail(c *fiber.Ctx, err error) error {
	if auth.WantsJSON(c) {
		return err
	}
	h.sessions.SetFlash(c, apperrors.ToDomainError(err).Message, "error")
	return c.Redirect("/tickets", fiber.StatusFound)
}

func ticketInput(req dto.TicketRequest) service.TicketInput {
	return service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
}
