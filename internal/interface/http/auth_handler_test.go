package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
	"github.com/eventsphere/eventsphere-api/internal/interface/middleware"
	"github.com/eventsphere/eventsphere-api/pkg/helpers"
	"github.com/eventsphere/eventsphere-api/pkg/validation"
)

type memUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
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

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := application.NewAuthService(newMemUserRepo(), logger)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	h := NewAuthHandler(svc, jwt, logger, "localhost", false)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("/", middleware.Auth(svc, jwt))
	authed.GET("/auth/test", h.Test)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "user",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.NotEmpty(t, c.Value)

	// duplicate email
	w = postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "user",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	r := newAuthRouter(t)

	// short password
	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "short",
		"role":     "user",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// bad role
	w = postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// bad email
	w = postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "not-an-email",
		"password": "secret-password",
		"role":     "user",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "user",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "user",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sessionCookie(t, w)

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
		"role":     "user",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// right credentials, wrong side of the app
	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "owner",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionGateAndLogout(t *testing.T) {
	r := newAuthRouter(t)

	// no cookie
	req := httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	reg := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-password",
		"role":     "user",
	})
	require.Equal(t, http.StatusCreated, reg.Code)
	cookie := sessionCookie(t, reg)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// logout clears the cookie
	out := postJSON(t, r, "/api/auth/logout", gin.H{}, cookie)
	require.Equal(t, http.StatusOK, out.Code)
	cleared := sessionCookie(t, out)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestSessionRejectsGarbageToken(t *testing.T) {
	r := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
