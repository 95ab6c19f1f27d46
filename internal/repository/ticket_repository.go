package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketRepository encapsulates ticket persistence. Records keep file
// insertion order; every mutation rewrites the backing file.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	store *persistence.JSONStore
}

// NewTicketRepository instantiates a repository over the given JSON store.
func NewTicketRepository(store *persistence.JSONStore) TicketRepository {
	return &ticketRepository{store: store}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tickets, err := r.load()
	if err != nil {
		return err
	}
	if ticket.ID == "" {
		ticket.ID = "ticket_" + uuid.NewString()
	}
	tickets = append(tickets, *ticket)
	return r.store.Persist(tickets)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	tickets, err := r.load()
	if err != nil {
		return err
	}
	for i := range tickets {
		if tickets[i].ID == ticket.ID {
			tickets[i] = *ticket
			return r.store.Persist(tickets)
		}
	}
	return ErrNotFound
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	tickets, err := r.load()
	if err != nil {
		return err
	}
	for i := range tickets {
		if tickets[i].ID == id {
			tickets = append(tickets[:i], tickets[i+1:]...)
			return r.store.Persist(tickets)
		}
	}
	return ErrNotFound
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	tickets, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].ID == id {
			return &tickets[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.load()
}

func (r *ticketRepository) load() ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	if err := r.store.Load(&tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
