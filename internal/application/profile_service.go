package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

const imageKindAvatar = "avatar"

// ProfileService implements attendee and owner profiles with
// get-or-lazily-create semantics: fetching a profile that does not exist
// yet creates an empty one instead of returning not-found.
type ProfileService struct {
	Repo   repository.ProfileRepository
	Images ImageStore
	Logger *logrus.Logger
}

func NewProfileService(repo repository.ProfileRepository, images ImageStore, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Repo: repo, Images: images, Logger: logger}
}

func (s *ProfileService) GetUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	p, err := s.Repo.GetUserProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.Repo.CreateUserProfile(ctx, userID)
	}
	return p, err
}

// UpdateUserProfile applies a partial patch; an uploaded avatar replaces
// the old blob (delete is best-effort) before the row is written.
func (s *ProfileService) UpdateUserProfile(ctx context.Context, userID string, patch *entity.UserProfilePatch, avatar *ImageUpload) (*entity.UserProfile, error) {
	existing, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if avatar != nil {
		url, err := s.Images.Replace(ctx, avatar.Reader, avatar.Filename, existing.Avatar, imageKindAvatar, userID)
		if err != nil {
			return nil, err
		}
		if url != "" {
			patch.Avatar = &url
		}
	}

	if patch.Empty() {
		return existing, nil
	}
	return s.Repo.UpdateUserProfile(ctx, userID, patch)
}

// DeleteUserProfile removes the profile row but keeps the account. Deleting
// a profile that never existed succeeds.
func (s *ProfileService) DeleteUserProfile(ctx context.Context, userID string) error {
	p, err := s.Repo.GetUserProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Avatar != "" {
		if err := s.Images.Delete(ctx, p.Avatar); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("avatar delete failed")
		}
	}
	return s.Repo.DeleteUserProfile(ctx, userID)
}

func (s *ProfileService) GetOwnerProfile(ctx context.Context, userID string) (*entity.OwnerProfile, error) {
	p, err := s.Repo.GetOwnerProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.Repo.CreateOwnerProfile(ctx, userID)
	}
	return p, err
}

func (s *ProfileService) UpdateOwnerProfile(ctx context.Context, userID string, patch *entity.OwnerProfilePatch, avatar *ImageUpload) (*entity.OwnerProfile, error) {
	existing, err := s.GetOwnerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if avatar != nil {
		url, err := s.Images.Replace(ctx, avatar.Reader, avatar.Filename, existing.Avatar, imageKindAvatar, userID)
		if err != nil {
			return nil, err
		}
		if url != "" {
			patch.Avatar = &url
		}
	}

	if patch.Empty() {
		return existing, nil
	}
	return s.Repo.UpdateOwnerProfile(ctx, userID, patch)
}

func (s *ProfileService) DeleteOwnerProfile(ctx context.Context, userID string) error {
	p, err := s.Repo.GetOwnerProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Avatar != "" {
		if err := s.Images.Delete(ctx, p.Avatar); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("avatar delete failed")
		}
	}
	return s.Repo.DeleteOwnerProfile(ctx, userID)
}
