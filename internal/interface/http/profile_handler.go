package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/pkg/response"
)

type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type userProfileResponse struct {
	UserID      string            `json:"userId"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Bio         string            `json:"bio,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	DateOfBirth *string           `json:"dateOfBirth,omitempty"`
	Avatar      string            `json:"avatar,omitempty"`
	Location    string            `json:"location,omitempty"`
	Interests   []string          `json:"interests"`
	SocialLinks map[string]string `json:"socialLinks"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ownerProfileResponse struct {
	UserID             string            `json:"userId"`
	Username           string            `json:"username"`
	Email              string            `json:"email"`
	CompanyName        string            `json:"companyName,omitempty"`
	Bio                string            `json:"bio,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	Website            string            `json:"website,omitempty"`
	Avatar             string            `json:"avatar,omitempty"`
	BusinessType       string            `json:"businessType,omitempty"`
	Location           string            `json:"location,omitempty"`
	SocialLinks        map[string]string `json:"socialLinks"`
	VerificationStatus string            `json:"verificationStatus"`
	TotalEvents        int               `json:"totalEvents"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func toUserProfileResponse(p *entity.UserProfile) userProfileResponse {
	out := userProfileResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		Email:       p.Email,
		Bio:         p.Bio,
		Phone:       p.Phone,
		Avatar:      p.Avatar,
		Location:    p.Location,
		Interests:   p.Interests,
		SocialLinks: p.SocialLinks,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if out.Interests == nil {
		out.Interests = []string{}
	}
	if out.SocialLinks == nil {
		out.SocialLinks = map[string]string{}
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format("2006-01-02")
		out.DateOfBirth = &dob
	}
	return out
}

func toOwnerProfileResponse(p *entity.OwnerProfile) ownerProfileResponse {
	out := ownerProfileResponse{
		UserID:             p.UserID,
		Username:           p.Username,
		Email:              p.Email,
		CompanyName:        p.CompanyName,
		Bio:                p.Bio,
		Phone:              p.Phone,
		Website:            p.Website,
		Avatar:             p.Avatar,
		BusinessType:       p.BusinessType,
		Location:           p.Location,
		SocialLinks:        p.SocialLinks,
		VerificationStatus: p.VerificationStatus,
		TotalEvents:        p.TotalEvents,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if out.SocialLinks == nil {
		out.SocialLinks = map[string]string{}
	}
	return out
}

// GetUser GET /api/profile/user
func (h *ProfileHandler) GetUser(c *gin.Context) {
	u := currentUser(c)
	p, err := h.Svc.GetUserProfile(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("get user profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load profile", nil)
		return
	}
	response.Success(c, http.StatusOK, toUserProfileResponse(p), "profile", nil)
}

// UpdateUser PUT /api/profile/user: multipart form with optional avatar.
func (h *ProfileHandler) UpdateUser(c *gin.Context) {
	u := currentUser(c)

	patch := &entity.UserProfilePatch{}
	if v, ok := c.GetPostForm("bio"); ok {
		patch.Bio = &v
	}
	if v, ok := c.GetPostForm("phone"); ok {
		patch.Phone = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		patch.Location = &v
	}
	if v, ok := c.GetPostForm("dateOfBirth"); ok {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid dateOfBirth, expected YYYY-MM-DD", nil)
			return
		}
		patch.DateOfBirth = &t
	}
	if v, ok := c.GetPostForm("interests"); ok {
		interests := application.ParseInterests(v)
		patch.Interests = &interests
	}
	if v, ok := c.GetPostForm("socialLinks"); ok {
		links, err := application.ParseSocialLinks(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid socialLinks", nil)
			return
		}
		patch.SocialLinks = &links
	}

	avatar, closeAvatar, err := formImage(c, "avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid avatar upload", nil)
		return
	}
	defer closeAvatar()

	p, err := h.Svc.UpdateUserProfile(c.Request.Context(), u.ID, patch, avatar)
	if err != nil {
		h.Logger.WithError(err).Error("update user profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, toUserProfileResponse(p), "profile updated", nil)
}

// DeleteUser DELETE /api/profile/user: clears the profile, keeps the account.
func (h *ProfileHandler) DeleteUser(c *gin.Context) {
	u := currentUser(c)
	if err := h.Svc.DeleteUserProfile(c.Request.Context(), u.ID); err != nil {
		h.Logger.WithError(err).Error("delete user profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not delete profile", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "profile deleted", nil)
}

// GetOwner GET /api/profile/owner
func (h *ProfileHandler) GetOwner(c *gin.Context) {
	u := currentUser(c)
	p, err := h.Svc.GetOwnerProfile(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("get owner profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load profile", nil)
		return
	}
	response.Success(c, http.StatusOK, toOwnerProfileResponse(p), "profile", nil)
}

// UpdateOwner PUT /api/profile/owner
func (h *ProfileHandler) UpdateOwner(c *gin.Context) {
	u := currentUser(c)

	patch := &entity.OwnerProfilePatch{}
	if v, ok := c.GetPostForm("companyName"); ok {
		patch.CompanyName = &v
	}
	if v, ok := c.GetPostForm("bio"); ok {
		patch.Bio = &v
	}
	if v, ok := c.GetPostForm("phone"); ok {
		patch.Phone = &v
	}
	if v, ok := c.GetPostForm("website"); ok {
		patch.Website = &v
	}
	if v, ok := c.GetPostForm("businessType"); ok {
		patch.BusinessType = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		patch.Location = &v
	}
	if v, ok := c.GetPostForm("socialLinks"); ok {
		links, err := application.ParseSocialLinks(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid socialLinks", nil)
			return
		}
		patch.SocialLinks = &links
	}

	avatar, closeAvatar, err := formImage(c, "avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid avatar upload", nil)
		return
	}
	defer closeAvatar()

	p, err := h.Svc.UpdateOwnerProfile(c.Request.Context(), u.ID, patch, avatar)
	if err != nil {
		h.Logger.WithError(err).Error("update owner profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, toOwnerProfileResponse(p), "profile updated", nil)
}

// DeleteOwner DELETE /api/profile/owner
func (h *ProfileHandler) DeleteOwner(c *gin.Context) {
	u := currentUser(c)
	if err := h.Svc.DeleteOwnerProfile(c.Request.Context(), u.ID); err != nil {
		h.Logger.WithError(err).Error("delete owner profile failed")
		response.Error[any](c, http.StatusInternalServerError, "could not delete profile", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "profile deleted", nil)
}
