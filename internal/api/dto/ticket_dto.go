package dto

import "github.com/spec-kit/helpdesk/internal/domain"

// TicketRequest payload for create and update, accepted as form fields or JSON.
type TicketRequest struct {
	TicketID    string `json:"ticketId" form:"ticketId"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Status      string `json:"status" form:"status"`
	Priority    string `json:"priority" form:"priority"`
}

// DeleteTicketRequest payload.
type DeleteTicketRequest struct {
	TicketID string `json:"ticketId" form:"ticketId"`
}

// TicketResponse is the JSON body for successful ticket mutations.
type TicketResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Ticket  *domain.Ticket `json:"ticket,omitempty"`
}

// TicketListResponse wraps list and search results.
type TicketListResponse struct {
	Success bool            `json:"success"`
	Tickets []domain.Ticket `json:"tickets"`
}
