package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const maxDescriptionLength = 500

// TicketInput describes the mutable fields accepted on create and update.
type TicketInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// TicketService coordinates ticket workflows scoped to an owner.
type TicketService struct {
	tickets repository.TicketRepository
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// Create validates the input and persists a new ticket for the owner.
// Priority defaults to medium; createdAt and updatedAt start equal.
func (s *TicketService) Create(ctx context.Context, ownerID string, input TicketInput) (*domain.Ticket, error) {
	fields, err := validateTicketInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		Title:       fields.title,
		Description: fields.description,
		Status:      fields.status,
		Priority:    fields.priority,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get fetches a ticket by id. An owner mismatch is indistinguishable from an
// unknown id.
func (s *TicketService) Get(ctx context.Context, ownerID, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if ticket.OwnerID != ownerID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// List returns the owner's tickets in storage insertion order.
func (s *TicketService) List(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// Update overwrites the mutable fields of an owned ticket and bumps
// updatedAt. An absent id or owner mismatch fails as not found.
func (s *TicketService) Update(ctx context.Context, ownerID, id string, input TicketInput) (*domain.Ticket, error) {
	fields, err := validateTicketInput(input)
	if err != nil {
		return nil, err
	}

	ticket, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	ticket.Title = fields.title
	ticket.Description = fields.description
	ticket.Status = fields.status
	ticket.Priority = fields.priority
	ticket.UpdatedAt = time.Now().UTC()

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	return ticket, nil
}

// Delete removes an owned ticket and reports whether a removal occurred.
func (s *TicketService) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if ticket.OwnerID != ownerID {
		return false, nil
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stats counts the owner's tickets by status.
func (s *TicketService) Stats(ctx context.Context, ownerID string) (domain.TicketStats, error) {
	tickets, err := s.List(ctx, ownerID)
	if err != nil {
		return domain.TicketStats{}, err
	}

	stats := domain.TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

// Search matches the query case-insensitively against title, description and
// status. An empty query returns all of the owner's tickets.
func (s *TicketService) Search(ctx context.Context, ownerID, query string) ([]domain.Ticket, error) {
	tickets, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return tickets, nil
	}

	query = strings.ToLower(query)
	matched := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Description), query) ||
			strings.Contains(strings.ToLower(string(t.Status)), query) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

type ticketFields struct {
	title       string
	description string
	status      domain.TicketStatus
	priority    domain.TicketPriority
}

func validateTicketInput(input TicketInput) (ticketFields, error) {
	var problems []string

	title := strings.TrimSpace(input.Title)
	if title == "" {
		problems = append(problems, "Title is required")
	}

	status := domain.TicketStatus(input.Status)
	if input.Status == "" {
		problems = append(problems, "Status is required")
	} else if !status.Valid() {
		problems = append(problems, "Status must be one of: open, in_progress, closed")
	}

	description := strings.TrimSpace(input.Description)
	if len(description) > maxDescriptionLength {
		problems = append(problems, "Description must not exceed 500 characters")
	}

	priority := domain.TicketPriority(input.Priority)
	if input.Priority == "" {
		priority = domain.TicketPriorityMedium
	} else if !priority.Valid() {
		problems = append(problems, "Priority must be one of: low, medium, high, urgent")
	}

	if len(problems) > 0 {
		return ticketFields{}, apperrors.NewValidationError(strings.Join(problems, ". "), nil)
	}
	return ticketFields{title: title, description: description, status: status, priority: priority}, nil
}
