package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/auth-api/internal/httputil"
	"github.com/redmonkez12/auth-api/internal/logging"
	"github.com/redmonkez12/auth-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service       *Service
	tokenService  TokenService
	logger        *logging.Logger
	isProduction  bool
	tokenDuration time.Duration
}

func NewHandler(service *Service, tokenService TokenService, logger *logging.Logger, isProduction bool, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       service,
		tokenService:  tokenService,
		logger:        logger,
		isProduction:  isProduction,
		tokenDuration: tokenDuration,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest represents the email verification request
type VerifyEmailRequest struct {
	Code string `json:"code"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// UserResponse wraps a user payload with a human-readable message.
// The user's password hash is excluded by its JSON tags.
type UserResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

// MessageResponse is an acknowledgment-only response
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup handles user registration
// @Summary      Register a new user
// @Description  Create a new account. Sends a verification email and issues a session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Registration fields"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or email already registered"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		if errors.Is(err, ErrAllFieldsRequired) {
			logger.Warn("signup failed: missing fields")
			respondError(w, "All fields are required", httputil.CodeFieldsRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("signup failed: email already exists")
			respondError(w, "User already exists", httputil.CodeUserAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID.Hex())

	// Session cookie is issued before the response; the verification email
	// is already in flight and does not gate success.
	h.issueSession(w, logger, newUser.ID.Hex())

	respondJSON(w, UserResponse{
		Message: "User created successfully",
		User:    newUser,
	}, http.StatusCreated)
}

// VerifyEmail handles email verification
// @Summary      Verify email address
// @Description  Consume the 6-digit code sent by email. Wrong and expired codes are not distinguished.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Verification code"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing, invalid or expired code"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/auth/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	verifiedUser, err := h.service.VerifyEmail(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, ErrCodeRequired) {
			logger.Warn("email verification failed: code missing")
			respondError(w, "verification token is required", httputil.CodeFieldsRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			logger.Warn("email verification failed: invalid or expired token")
			respondError(w, "Invalid or expired token", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}
		logger.Error("email verification failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("email verified successfully", "user_id", verifiedUser.ID.Hex())

	respondJSON(w, UserResponse{
		Message: "Email verified successfully",
		User:    verifiedUser,
	}, http.StatusOK)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive a session cookie. Unknown email and wrong password return identical responses.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	loggedInUser, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			respondError(w, "Invalid email or password", httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", loggedInUser.ID.Hex())

	h.issueSession(w, logger, loggedInUser.ID.Hex())

	respondJSON(w, UserResponse{
		Message: "User logged in successfully",
		User:    loggedInUser,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Clear the session cookie. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ClearSessionCookie(w)

	logger.Info("user logged out successfully")

	respondJSON(w, MessageResponse{Message: "User logged out successfully"}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Email a reset link valid for one hour. Unlike login, this endpoint reports whether the account exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Email missing"
// @Failure      404 {object} httputil.ErrorResponse "No account with that email"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrEmailRequired) {
			logger.Warn("forgot password failed: email missing")
			respondError(w, "Email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("forgot password failed: user not found")
			respondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("forgot password failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset link sent")

	respondJSON(w, MessageResponse{Message: "Password reset link sent to your email"}, http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Description  Replace the password using the token from the reset link. The token is single-use.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token path string true "Reset token"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or invalid/expired token"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/auth/reset-password/{token} [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.ResetPassword(r.Context(), token, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrTokenAndPasswordRequired) {
			logger.Warn("password reset failed: missing fields")
			respondError(w, "Token and new password are required", httputil.CodeFieldsRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			logger.Warn("password reset failed: invalid or expired token")
			respondError(w, "Invalid or expired token", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset successfully")

	respondJSON(w, MessageResponse{Message: "Password reset successfully"}, http.StatusOK)
}

// CheckAuth returns the authenticated user
// @Summary      Check authentication
// @Description  Return the user identified by the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid session"
// @Failure      404 {object} httputil.ErrorResponse "User no longer exists"
// @Router       /api/auth/check-auth [get]
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	currentUser, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("check auth failed: user not found", "user_id", userID.Hex())
			respondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("check auth failed: internal error", "error", err.Error())
		respondError(w, err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	respondJSON(w, UserResponse{
		Message: "User is authenticated",
		User:    currentUser,
	}, http.StatusOK)
}

// issueSession signs a session token and attaches it as a cookie. A signing
// failure is logged but does not fail the request; the state mutation that
// preceded it is already durable.
func (h *Handler) issueSession(w http.ResponseWriter, logger *logging.Logger, userID string) {
	token, err := h.tokenService.CreateToken(userID, h.tokenDuration)
	if err != nil {
		logger.Error("failed to create session token", "error", err.Error())
		return
	}
	SetSessionCookie(w, token, h.isProduction, h.tokenDuration)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
