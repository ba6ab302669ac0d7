package repository

import (
	"context"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ExistsByEmailOrUsername backs the duplicate check at registration.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}
