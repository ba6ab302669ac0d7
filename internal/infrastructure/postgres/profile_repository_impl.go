package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const userProfileSelect = `
	SELECT p.user_id, u.username, u.email, p.bio, p.phone, p.date_of_birth,
		p.avatar, p.location, p.interests, p.social_links,
		p.created_at, p.updated_at
	FROM user_profiles p
	JOIN users u ON u.id = p.user_id
	WHERE p.user_id = $1
`

func (r *ProfileRepository) GetUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	p := &entity.UserProfile{}
	var interests, socialLinks []byte

	row := r.pool.QueryRow(ctx, userProfileSelect, userID)
	if err := row.Scan(&p.UserID, &p.Username, &p.Email, &p.Bio, &p.Phone,
		&p.DateOfBirth, &p.Avatar, &p.Location, &interests, &socialLinks,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(interests, &p.Interests); err != nil {
		return nil, fmt.Errorf("decode interests: %w", err)
	}
	if err := json.Unmarshal(socialLinks, &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) CreateUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}
	return r.GetUserProfile(ctx, userID)
}

func (r *ProfileRepository) UpdateUserProfile(ctx context.Context, userID string, patch *entity.UserProfilePatch) (*entity.UserProfile, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.DateOfBirth != nil {
		add("date_of_birth", *patch.DateOfBirth)
	}
	if patch.Avatar != nil {
		add("avatar", *patch.Avatar)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Interests != nil {
		b, err := json.Marshal(*patch.Interests)
		if err != nil {
			return nil, err
		}
		add("interests", b)
	}
	if patch.SocialLinks != nil {
		b, err := json.Marshal(*patch.SocialLinks)
		if err != nil {
			return nil, err
		}
		add("social_links", b)
	}
	if len(sets) == 0 {
		return r.GetUserProfile(ctx, userID)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, userID)
	q := fmt.Sprintf("UPDATE user_profiles SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetUserProfile(ctx, userID)
}

// DeleteUserProfile is idempotent: deleting a missing profile is a no-op.
func (r *ProfileRepository) DeleteUserProfile(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	return err
}

const ownerProfileSelect = `
	SELECT p.user_id, u.username, u.email, p.company_name, p.bio, p.phone,
		p.website, p.avatar, p.business_type, p.location, p.social_links,
		p.verification_status, p.total_events, p.created_at, p.updated_at
	FROM owner_profiles p
	JOIN users u ON u.id = p.user_id
	WHERE p.user_id = $1
`

func (r *ProfileRepository) GetOwnerProfile(ctx context.Context, userID string) (*entity.OwnerProfile, error) {
	p := &entity.OwnerProfile{}
	var socialLinks []byte

	row := r.pool.QueryRow(ctx, ownerProfileSelect, userID)
	if err := row.Scan(&p.UserID, &p.Username, &p.Email, &p.CompanyName, &p.Bio,
		&p.Phone, &p.Website, &p.Avatar, &p.BusinessType, &p.Location,
		&socialLinks, &p.VerificationStatus, &p.TotalEvents,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(socialLinks, &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	return p, nil
}

// CreateOwnerProfile inserts an empty profile and seeds total_events from
// the events table, so owners who created events before their profile row
// existed start with the right count.
func (r *ProfileRepository) CreateOwnerProfile(ctx context.Context, userID string) (*entity.OwnerProfile, error) {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO owner_profiles (user_id, total_events)
		VALUES ($1, (SELECT COUNT(*) FROM events WHERE owner_id = $1))
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}
	return r.GetOwnerProfile(ctx, userID)
}

func (r *ProfileRepository) UpdateOwnerProfile(ctx context.Context, userID string, patch *entity.OwnerProfilePatch) (*entity.OwnerProfile, error) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 9)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.CompanyName != nil {
		add("company_name", *patch.CompanyName)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Website != nil {
		add("website", *patch.Website)
	}
	if patch.Avatar != nil {
		add("avatar", *patch.Avatar)
	}
	if patch.BusinessType != nil {
		add("business_type", *patch.BusinessType)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.SocialLinks != nil {
		b, err := json.Marshal(*patch.SocialLinks)
		if err != nil {
			return nil, err
		}
		add("social_links", b)
	}
	if len(sets) == 0 {
		return r.GetOwnerProfile(ctx, userID)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, userID)
	q := fmt.Sprintf("UPDATE owner_profiles SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetOwnerProfile(ctx, userID)
}

func (r *ProfileRepository) DeleteOwnerProfile(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM owner_profiles WHERE user_id = $1`, userID)
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
