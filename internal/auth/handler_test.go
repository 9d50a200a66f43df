package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/redmonkez12/auth-api/internal/logging"
)

func newTestRouter(t *testing.T) (*chi.Mux, *fakeUserRepo, *emailRecorder) {
	t.Helper()

	repo := newFakeUserRepo()
	emails := newEmailRecorder()
	logger := logging.NewLogger(true)
	svc := NewService(repo, emails, logger, testClientURL)

	jwtService, err := NewJWTService(testSecret)
	require.NoError(t, err)

	handler := NewHandler(svc, jwtService, logger, false, 24*time.Hour)
	mw := NewMiddleware(jwtService)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", handler.Signup)
		r.Post("/verify-email", handler.VerifyEmail)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.Post("/forgot-password", handler.ForgotPassword)
		r.Post("/reset-password/{token}", handler.ResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Get("/check-auth", handler.CheckAuth)
		})
	})

	return r, repo, emails
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSignupHandler(t *testing.T) {
	t.Parallel()
	router, _, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)

	// Password hash is stripped from the payload
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "Secret123")

	var resp struct {
		Message string `json:"message"`
		User    struct {
			Email      string `json:"email"`
			Username   string `json:"username"`
			IsVerified bool   `json:"isVerified"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.False(t, resp.User.IsVerified)

	// Session cookie is issued on signup
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 86400, cookie.MaxAge)

	// Duplicate signup is a 400, not a second record
	rec = doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Other456", "username": "b",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestSignupHandler_MissingFields(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required")
}

func TestLoginHandler_EnumerationBitIdentical(t *testing.T) {
	t.Parallel()
	router, _, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "whatever",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginHandler_Success(t *testing.T) {
	t.Parallel()
	router, _, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	sessionCookie(t, rec)
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestVerifyEmailHandler(t *testing.T) {
	t.Parallel()
	router, _, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	code := emails.wait(t).payload

	rec = doJSON(t, router, http.MethodPost, "/api/auth/verify-email", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isVerified":true`)
	emails.wait(t) // welcome

	// Replay fails: the token was cleared on consumption
	rec = doJSON(t, router, http.MethodPost, "/api/auth/verify-email", map[string]string{"code": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}

func TestVerifyEmailHandler_Expired(t *testing.T) {
	t.Parallel()
	router, repo, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	code := emails.wait(t).payload

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	repo.expireVerificationToken(u.ID)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/verify-email", map[string]string{"code": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")

	u, err = repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
}

func TestForgotPasswordHandler(t *testing.T) {
	t.Parallel()
	router, repo, emails := newTestRouter(t)

	// Unknown email discloses absence; this endpoint's documented behavior
	rec := doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "nobody@x.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")

	rec = doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	e := emails.wait(t)
	assert.Equal(t, "password_reset", e.kind)
	assert.True(t, strings.HasPrefix(e.payload, testClientURL+"/reset-password?token="))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.ResetPasswordToken)
}

func TestResetPasswordHandler(t *testing.T) {
	t.Parallel()
	router, repo, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	emails.wait(t)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	token := *u.ResetPasswordToken

	rec = doJSON(t, router, http.MethodPost, "/api/auth/reset-password/"+token, map[string]string{
		"newPassword": "NewSecret456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	emails.wait(t)

	// Old password rejected, new accepted
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "NewSecret456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Token is single-use
	rec = doJSON(t, router, http.MethodPost, "/api/auth/reset-password/"+token, map[string]string{
		"newPassword": "Another789",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}

func TestCheckAuthHandler(t *testing.T) {
	t.Parallel()
	router, _, emails := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Secret123", "username": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	emails.wait(t)
	cookie := sessionCookie(t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/check-auth", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCheckAuthHandler_NoSession(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/check-auth", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckAuthHandler_UserGone(t *testing.T) {
	t.Parallel()
	router, _, _ := newTestRouter(t)

	// Valid token for a user that does not exist in the store
	jwtService, err := NewJWTService(testSecret)
	require.NoError(t, err)
	token, err := jwtService.CreateToken(primitive.NewObjectID().Hex(), time.Hour)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/check-auth", nil, &http.Cookie{
		Name: SessionCookieName, Value: token,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}
