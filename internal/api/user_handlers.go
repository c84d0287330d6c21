package api

import (
	"errors"
	"net/http"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/database"
	"cloud-drive/internal/models"
)

func (s *Server) currentUser(r *http.Request) (*models.User, error) {
	session := SessionFromContext(r.Context())
	if session == nil {
		return nil, apperror.Unauthenticated("Unauthorized")
	}

	user, err := s.store.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, apperror.Unauthenticated("User no longer exists")
		}
		return nil, apperror.Internal("Failed to retrieve user data", err)
	}
	return user, nil
}

// @Summary      Get current user info
// @Description  Retrieves the authenticated user's account as stored, including role, quota and drive root.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type StorageUsageResponse struct {
	UsedBytes  int64 `json:"used_bytes" example:"1048576"`
	QuotaBytes int64 `json:"quota_bytes" example:"5368709120"`
}

// @Summary      Get storage usage
// @Description  Retrieves the current storage usage and quota for the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StorageUsageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /me/storage [get]
func (s *Server) GetStorageUsageHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, StorageUsageResponse{
		UsedBytes:  user.StorageUsed,
		QuotaBytes: user.StorageQuota,
	})
}
