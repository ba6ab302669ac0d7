package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

type fakeProfileRepo struct {
	users  map[string]*entity.UserProfile
	owners map[string]*entity.OwnerProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		users:  map[string]*entity.UserProfile{},
		owners: map[string]*entity.OwnerProfile{},
	}
}

func (r *fakeProfileRepo) GetUserProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	p, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) CreateUserProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	if p, ok := r.users[userID]; ok {
		cp := *p
		return &cp, nil
	}
	p := &entity.UserProfile{
		UserID:      userID,
		Username:    "u-" + userID,
		Email:       userID + "@example.com",
		Interests:   []string{},
		SocialLinks: map[string]string{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.users[userID] = p
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateUserProfile(_ context.Context, userID string, patch *entity.UserProfilePatch) (*entity.UserProfile, error) {
	p, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.DateOfBirth != nil {
		dob := *patch.DateOfBirth
		p.DateOfBirth = &dob
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Interests != nil {
		p.Interests = *patch.Interests
	}
	if patch.SocialLinks != nil {
		p.SocialLinks = *patch.SocialLinks
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) DeleteUserProfile(_ context.Context, userID string) error {
	delete(r.users, userID)
	return nil
}

func (r *fakeProfileRepo) GetOwnerProfile(_ context.Context, userID string) (*entity.OwnerProfile, error) {
	p, ok := r.owners[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) CreateOwnerProfile(_ context.Context, userID string) (*entity.OwnerProfile, error) {
	if p, ok := r.owners[userID]; ok {
		cp := *p
		return &cp, nil
	}
	p := &entity.OwnerProfile{
		UserID:             userID,
		Username:           "u-" + userID,
		Email:              userID + "@example.com",
		SocialLinks:        map[string]string{},
		VerificationStatus: entity.VerificationPending,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	r.owners[userID] = p
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateOwnerProfile(_ context.Context, userID string, patch *entity.OwnerProfilePatch) (*entity.OwnerProfile, error) {
	p, ok := r.owners[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.CompanyName != nil {
		p.CompanyName = *patch.CompanyName
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Website != nil {
		p.Website = *patch.Website
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.BusinessType != nil {
		p.BusinessType = *patch.BusinessType
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.SocialLinks != nil {
		p.SocialLinks = *patch.SocialLinks
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) DeleteOwnerProfile(_ context.Context, userID string) error {
	delete(r.owners, userID)
	return nil
}

func newProfileFixture() (*ProfileService, *fakeProfileRepo, *fakeImageStore) {
	repo := newFakeProfileRepo()
	images := &fakeImageStore{}
	return NewProfileService(repo, images, testLogger()), repo, images
}

func TestGetUserProfileLazyCreate(t *testing.T) {
	svc, repo, _ := newProfileFixture()
	ctx := context.Background()

	p, err := svc.GetUserProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
	assert.NotNil(t, repo.users["alice"], "first fetch must create the row")

	// second fetch returns the same row, not a fresh one
	again, err := svc.GetUserProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt, again.CreatedAt)
}

func TestUpdateUserProfilePatchSemantics(t *testing.T) {
	svc, _, _ := newProfileFixture()
	ctx := context.Background()

	bio := "gopher"
	interests := []string{"go", "music"}
	p, err := svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{Bio: &bio, Interests: &interests}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gopher", p.Bio)
	assert.Equal(t, interests, p.Interests)

	// an untouched field survives the next patch
	phone := "+62-812"
	p, err = svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{Phone: &phone}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gopher", p.Bio)
	assert.Equal(t, "+62-812", p.Phone)

	// empty patch with no avatar is a no-op, not an error
	p, err = svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gopher", p.Bio)
}

func TestUpdateUserProfileAvatarReplace(t *testing.T) {
	svc, _, images := newProfileFixture()
	ctx := context.Background()

	p, err := svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{}, &ImageUpload{Reader: strReader("img"), Filename: "me.png"})
	require.NoError(t, err)
	require.Len(t, images.uploads, 1)
	assert.Equal(t, images.uploads[0], p.Avatar)
	assert.Contains(t, p.Avatar, "/avatar/alice/")

	first := p.Avatar
	p, err = svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{}, &ImageUpload{Reader: strReader("img2"), Filename: "me2.png"})
	require.NoError(t, err)
	assert.NotEqual(t, first, p.Avatar)
	assert.Equal(t, []string{first}, images.deletes, "old avatar blob gets deleted")
}

func TestDeleteUserProfile(t *testing.T) {
	svc, repo, images := newProfileFixture()
	ctx := context.Background()

	// deleting a profile that never existed succeeds
	require.NoError(t, svc.DeleteUserProfile(ctx, "ghost"))

	_, err := svc.UpdateUserProfile(ctx, "alice", &entity.UserProfilePatch{}, &ImageUpload{Reader: strReader("img"), Filename: "me.png"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserProfile(ctx, "alice"))
	assert.Nil(t, repo.users["alice"])
	assert.Len(t, images.deletes, 1)
}

func TestOwnerProfileLifecycle(t *testing.T) {
	svc, _, _ := newProfileFixture()
	ctx := context.Background()

	p, err := svc.GetOwnerProfile(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, entity.VerificationPending, p.VerificationStatus)

	company := "Acme Events"
	website := "https://acme.example.com"
	p, err = svc.UpdateOwnerProfile(ctx, "owner-1", &entity.OwnerProfilePatch{CompanyName: &company, Website: &website}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Events", p.CompanyName)
	assert.Equal(t, website, p.Website)

	require.NoError(t, svc.DeleteOwnerProfile(ctx, "owner-1"))
	require.NoError(t, svc.DeleteOwnerProfile(ctx, "owner-1"))
}
