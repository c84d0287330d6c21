package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	StorageUsed  int64     `json:"storage_used" db:"storage_used"`
	StorageQuota int64     `json:"storage_quota" db:"storage_quota"`
	DriveRootID  *string   `json:"drive_root_id,omitempty" db:"drive_root_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// HasDriveRoot reports whether a root folder was provisioned in the storage provider.
func (u *User) HasDriveRoot() bool {
	return u.DriveRootID != nil && *u.DriveRootID != ""
}

// UserSummary is the account projection returned by the admin listing.
type UserSummary struct {
	ID           uuid.UUID `json:"id" example:"9b2f6c1e-8f0a-4a53-9d1e-3f2f1d7c4b10"`
	Name         string    `json:"name" example:"Jan Kowalski"`
	Email        string    `json:"email" example:"jan@example.com"`
	Role         Role      `json:"role" example:"USER"`
	StorageUsed  int64     `json:"storage_used" example:"1048576"`
	StorageQuota int64     `json:"storage_quota" example:"5368709120"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		StorageUsed:  u.StorageUsed,
		StorageQuota: u.StorageQuota,
		CreatedAt:    u.CreatedAt,
	}
}
