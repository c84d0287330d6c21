package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/auth"
	"cloud-drive/internal/database"
	"cloud-drive/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"jan@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...."`
	RefreshToken string `json:"refresh_token" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

type sessionCreator interface {
	CreateSession(ctx context.Context, arg database.CreateSessionParams) error
}

// issueTokens signs an access token and records a new refresh session through q,
// which is either the store or a transaction.
func (s *Server) issueTokens(ctx context.Context, q sessionCreator, user *models.User, r *http.Request) (*TokenResponse, error) {
	accessToken, err := auth.GenerateJWT(user, s.config.JWT.Secret, s.config.JWT.AccessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	err = q.CreateSession(ctx, database.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    s.now().Add(s.config.JWT.RefreshTTL),
	})
	if err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// @Summary      Logs a user in
// @Description  Authenticates a user and returns a short-lived access token and a long-lived refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest   body      LoginRequest  true  "Login Credentials"
// @Success      200            {object}  TokenResponse
// @Failure      400            {object}  ErrorResponse
// @Failure      401            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		HandleError(w, r, apperror.Internal("Internal server error", err))
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		HandleError(w, r, apperror.Unauthenticated("Invalid email or password"))
		return
	}

	tokens, err := s.issueTokens(r.Context(), s.store, user, r)
	if err != nil {
		HandleError(w, r, apperror.Internal("Failed to process login session", err))
		return
	}

	WriteJSON(w, http.StatusOK, tokens)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

// @Summary      Refresh access token
// @Description  Exchanges a valid refresh token for a new access token and a new refresh token. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refreshTokenRequest   body      RefreshTokenRequest  true  "Refresh Token"
// @Success      200                   {object}  TokenResponse
// @Failure      400                   {object}  ErrorResponse
// @Failure      401                   {object}  ErrorResponse
// @Failure      500                   {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	var tokens *TokenResponse
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		user, err := q.GetUserByRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return err
		}

		if err := q.DeleteSessionByRefreshToken(r.Context(), req.RefreshToken); err != nil {
			return err
		}

		tokens, err = s.issueTokens(r.Context(), q, user, r)
		return err
	})

	if txErr != nil {
		if errors.Is(txErr, database.ErrSessionNotFound) {
			HandleError(w, r, apperror.Unauthenticated("Invalid or expired refresh token"))
			return
		}
		HandleError(w, r, apperror.Internal("Failed to refresh token", txErr))
		return
	}

	WriteJSON(w, http.StatusOK, tokens)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"Jan Kowalski"`
	Email    string `json:"email" validate:"required,email" example:"jan@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type RegisterResponse struct {
	Message string             `json:"message" example:"User created"`
	User    models.UserSummary `json:"user"`
}

// @Summary      Register a new account
// @Description  Creates a USER account with the default storage quota and provisions its root folder.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "New account"
// @Success      201              {object}  RegisterResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	user, err := s.createAccount(r.Context(), database.CreateUserParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Role:         models.RoleUser,
		StorageQuota: s.config.Storage.DefaultQuota,
	}, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, RegisterResponse{Message: "User created", User: user.Summary()})
}

// createAccount hashes the password, stores the user and provisions the drive
// root. A provisioning failure is logged and leaves the account without a root.
func (s *Server) createAccount(ctx context.Context, params database.CreateUserParams, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Wrap(apperror.KindInvalidArgument, "Password is too long", err)
		}
		return nil, apperror.Internal("Failed to create user", err)
	}
	params.PasswordHash = hash

	user, err := s.store.CreateUser(ctx, params)
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Internal("Failed to create user", err)
	}

	if _, err := s.drive.ProvisionRoot(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to provision drive root",
			"user_id", user.ID,
			"error", err,
		)
	}

	return user, nil
}
