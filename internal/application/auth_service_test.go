package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

type fakeUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	if _, ok := r.byEmail[email]; ok {
		return true, nil
	}
	for _, u := range r.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func TestRegister(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testLogger())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret-password", entity.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "secret-password", u.Password, "password must be stored hashed")

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "secret-password", entity.RoleUser)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret-password", entity.RoleUser)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, "bob", "bob@example.com", "secret-password", "admin")
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret-password", entity.RoleUser)
	require.NoError(t, err)

	u, err := svc.Login(ctx, "alice@example.com", "secret-password", entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password", entity.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown email reads the same as a bad password
	_, err = svc.Login(ctx, "ghost@example.com", "secret-password", entity.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// valid credentials for the wrong side of the app
	_, err = svc.Login(ctx, "alice@example.com", "secret-password", entity.RoleOwner)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestGetUser(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testLogger())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret-password", entity.RoleUser)
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
