package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// UserRepository encapsulates user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	store *persistence.JSONStore
}

// NewUserRepository instantiates a repository over the given JSON store.
func NewUserRepository(store *persistence.JSONStore) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	users, err := r.load()
	if err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = "user_" + uuid.NewString()
	}
	users = append(users, *user)
	return r.store.Persist(users)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	// Exact, case-sensitive match against the stored record.
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load()
}

func (r *userRepository) load() ([]domain.User, error) {
	users := []domain.User{}
	if err := r.store.Load(&users); err != nil {
		return nil, err
	}
	return users, nil
}
