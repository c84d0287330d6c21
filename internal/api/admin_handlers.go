package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/database"
	"cloud-drive/internal/models"

	"github.com/jaevor/go-nanoid"
)

const (
	invitationAlphabet = "0123456789ABCDEF"
	invitationCodeLen  = 8
	maxCodeAttempts    = 3
)

var newInvitationCode = mustCodeGenerator()

func mustCodeGenerator() func() string {
	gen, err := nanoid.CustomASCII(invitationAlphabet, invitationCodeLen)
	if err != nil {
		panic(err)
	}
	return gen
}

// @Summary      List users
// @Description  Lists every account, newest first. Admin only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.UserSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/users [get]
func (s *Server) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		HandleError(w, r, apperror.Internal("Failed to list users", err))
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

type CreateUserRequest struct {
	Name         string      `json:"name" validate:"required" example:"Anna Nowak"`
	Email        string      `json:"email" validate:"required,email" example:"anna@example.com"`
	Password     string      `json:"password" validate:"required" example:"password123"`
	Role         models.Role `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN" example:"USER"`
	StorageQuota *int64      `json:"storageQuota,omitempty" validate:"omitempty,gt=0" example:"5368709120"`
}

// @Summary      Create a user
// @Description  Creates an account with an optional role and quota and provisions its root folder. Admin only.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createUserRequest  body      CreateUserRequest  true  "New account"
// @Success      201                {object}  models.UserSummary
// @Failure      400                {object}  ErrorResponse
// @Failure      401                {object}  ErrorResponse
// @Failure      403                {object}  ErrorResponse
// @Failure      409                {object}  ErrorResponse
// @Failure      500                {object}  ErrorResponse
// @Router       /admin/users [post]
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	params := database.CreateUserParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Role:         models.RoleUser,
		StorageQuota: s.config.Storage.DefaultQuota,
	}
	if req.Role != "" {
		params.Role = req.Role
	}
	if req.StorageQuota != nil {
		params.StorageQuota = *req.StorageQuota
	}

	user, err := s.createAccount(r.Context(), params, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, user.Summary())
}

// @Summary      List invitations
// @Description  Lists every invitation, newest first. Admin only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Invitation
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/invitations [get]
func (s *Server) ListInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	invitations, err := s.store.ListInvitations(r.Context())
	if err != nil {
		HandleError(w, r, apperror.Internal("Failed to list invitations", err))
		return
	}
	WriteJSON(w, http.StatusOK, invitations)
}

type CreateInvitationRequest struct {
	Validity string `json:"validity" validate:"required" example:"week" enums:"day,week,month,lifetime"`
}

// @Summary      Create an invitation
// @Description  Creates an invitation code valid for a day, a week, a calendar month or a lifetime. Admin only.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createInvitationRequest  body      CreateInvitationRequest  true  "Validity period"
// @Success      201                      {object}  models.Invitation
// @Failure      400                      {object}  ErrorResponse
// @Failure      401                      {object}  ErrorResponse
// @Failure      403                      {object}  ErrorResponse
// @Failure      500                      {object}  ErrorResponse
// @Router       /admin/invitations [post]
func (s *Server) CreateInvitationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	// Postgres keeps microseconds; anything coarser ties invitations created within the same tick.
	now := s.now().UTC().Truncate(time.Microsecond)
	expiresAt, err := models.InvitationExpiry(req.Validity, now)
	if err != nil {
		HandleError(w, r, apperror.Wrap(apperror.KindInvalidArgument, "Invalid validity period", err))
		return
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		invitation, err := s.store.CreateInvitation(r.Context(), database.CreateInvitationParams{
			Code:      newInvitationCode(),
			ExpiresAt: expiresAt,
			CreatedAt: now,
		})
		if errors.Is(err, database.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			HandleError(w, r, apperror.Internal("Failed to create invitation", err))
			return
		}

		WriteJSON(w, http.StatusCreated, invitation)
		return
	}

	HandleError(w, r, apperror.Internal("Failed to create invitation", database.ErrDuplicateCode))
}
