package auth

import (
	"errors"
	"fmt"

	"cloud-drive/internal/models"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

var ErrInvalidSession = errors.New("invalid session claims")

// Session is the authenticated caller. ID and Role are always set; the
// storage fields are a snapshot taken when the token was issued and may be absent.
type Session struct {
	UserID       uuid.UUID
	Role         models.Role
	StorageUsed  *int64
	StorageQuota *int64
	DriveRootID  *string
}

func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// SessionFromClaims validates verified token claims into a Session.
func SessionFromClaims(claims *AppClaims) (*Session, error) {
	if claims == nil {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id: %v", ErrInvalidSession, err)
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidSession, claims.Role)
	}

	return &Session{
		UserID:       id,
		Role:         role,
		StorageUsed:  claims.StorageUsed,
		StorageQuota: claims.StorageQuota,
		DriveRootID:  claims.DriveRootID,
	}, nil
}

// NewRefreshToken returns an opaque 40 character refresh token.
func NewRefreshToken() (string, error) {
	generateID, err := nanoid.Standard(40)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return generateID(), nil
}
