package repository

import (
	"context"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
)

// ProfileRepository covers both profile flavors. Get* return ErrNotFound
// when no row exists; the service layer turns that into a lazy create.
type ProfileRepository interface {
	GetUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	CreateUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	UpdateUserProfile(ctx context.Context, userID string, patch *entity.UserProfilePatch) (*entity.UserProfile, error)
	DeleteUserProfile(ctx context.Context, userID string) error

	GetOwnerProfile(ctx context.Context, userID string) (*entity.OwnerProfile, error)
	CreateOwnerProfile(ctx context.Context, userID string) (*entity.OwnerProfile, error)
	UpdateOwnerProfile(ctx context.Context, userID string, patch *entity.OwnerProfilePatch) (*entity.OwnerProfile, error)
	DeleteOwnerProfile(ctx context.Context, userID string) error
}
