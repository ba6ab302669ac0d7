package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/pkg/helpers"
	"github.com/eventsphere/eventsphere-api/pkg/response"
	"github.com/eventsphere/eventsphere-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,role"`
}

func userIdentity(u *entity.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserExists):
			response.Error[any](c, http.StatusConflict, "user already exists", nil)
		case errors.Is(err, application.ErrRoleMismatch):
			response.Error[any](c, http.StatusBadRequest, "invalid role", nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	h.issueSession(c, u)
	response.Success(c, http.StatusCreated, userIdentity(u), "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrRoleMismatch):
			response.Error[any](c, http.StatusUnauthorized, "access denied for this role", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	h.issueSession(c, u)
	response.Success(c, http.StatusOK, userIdentity(u), "login successful", nil)
}

// Logout POST /api/auth/logout
// Clears the cookie only; an already-issued token stays valid until its
// natural expiry (stateless sessions).
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Test GET /api/auth/test: session-gated identity echo.
func (h *AuthHandler) Test(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	response.Success(c, http.StatusOK, userIdentity(u), "authenticated", nil)
}

func (h *AuthHandler) issueSession(c *gin.Context, u *entity.User) {
	token, exp, err := h.JWT.Generate(u.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		return
	}
	h.Cookies.Set(c, token, exp)
}
