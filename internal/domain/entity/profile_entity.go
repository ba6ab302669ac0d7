package entity

import (
	"time"
)

// UserProfile is the attendee-side profile, created lazily on first fetch.
// Interests and SocialLinks are stored as JSONB columns.
type UserProfile struct {
	UserID      string
	Username    string
	Email       string
	Bio         string
	Phone       string
	DateOfBirth *time.Time
	Avatar      string
	Location    string
	Interests   []string
	SocialLinks map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Owner profile verification states.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// OwnerProfile is the organizer-side profile. TotalEvents is a denormalized
// counter maintained inside the same transaction as event insert/delete.
type OwnerProfile struct {
	UserID             string
	Username           string
	Email              string
	CompanyName        string
	Bio                string
	Phone              string
	Website            string
	Avatar             string
	BusinessType       string
	Location           string
	SocialLinks        map[string]string
	VerificationStatus string
	TotalEvents        int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserProfilePatch mirrors EventPatch: nil leaves a field untouched.
type UserProfilePatch struct {
	Bio         *string
	Phone       *string
	DateOfBirth *time.Time
	Avatar      *string
	Location    *string
	Interests   *[]string
	SocialLinks *map[string]string
}

func (p *UserProfilePatch) Empty() bool {
	return p.Bio == nil && p.Phone == nil && p.DateOfBirth == nil &&
		p.Avatar == nil && p.Location == nil && p.Interests == nil &&
		p.SocialLinks == nil
}

type OwnerProfilePatch struct {
	CompanyName  *string
	Bio          *string
	Phone        *string
	Website      *string
	Avatar       *string
	BusinessType *string
	Location     *string
	SocialLinks  *map[string]string
}

func (p *OwnerProfilePatch) Empty() bool {
	return p.CompanyName == nil && p.Bio == nil && p.Phone == nil &&
		p.Website == nil && p.Avatar == nil && p.BusinessType == nil &&
		p.Location == nil && p.SocialLinks == nil
}
