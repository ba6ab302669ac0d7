package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
	"github.com/eventsphere/eventsphere-api/pkg/helpers"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService owns registration and login. Sessions are stateless JWTs, so
// there is nothing to do server-side on logout.
type AuthService struct {
	Repo   repository.UserRepository
	Logger *logrus.Logger
}

func NewAuthService(repo repository.UserRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: repo, Logger: logger}
}

// Register creates the account. Email and username must both be free.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*entity.User, error) {
	if !entity.ValidRole(role) {
		return nil, ErrRoleMismatch
	}
	exists, err := s.Repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Login validates credentials and the requested role. The stored role must
// match the one supplied at login; it gates which side of the app the
// session is for, not what the account can ever do.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if u.Role != role {
		return nil, ErrRoleMismatch
	}
	return u, nil
}

// GetUser resolves the user behind a session token; used by the auth
// middleware so deleted accounts stop authenticating immediately.
func (s *AuthService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
