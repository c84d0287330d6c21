package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidValidity = errors.New("invalid validity period")

// Validity selectors accepted when creating an invitation.
const (
	ValidityDay      = "day"
	ValidityWeek     = "week"
	ValidityMonth    = "month"
	ValidityLifetime = "lifetime"
)

type Invitation struct {
	ID        uuid.UUID  `json:"id" example:"5c1d1b0e-2f7e-4d9b-8a55-0b1c3f6f9e21"`
	Code      string     `json:"code" example:"9F3A61C2"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used" example:"false"`
	UsedBy    *uuid.UUID `json:"used_by"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// InvitationExpiry maps a validity selector to an expiry time relative to now.
// A month is a calendar month; lifetime is a hundred years.
func InvitationExpiry(validity string, now time.Time) (time.Time, error) {
	switch validity {
	case ValidityDay:
		return now.AddDate(0, 0, 1), nil
	case ValidityWeek:
		return now.AddDate(0, 0, 7), nil
	case ValidityMonth:
		return now.AddDate(0, 1, 0), nil
	case ValidityLifetime:
		return now.AddDate(100, 0, 0), nil
	default:
		return time.Time{}, ErrInvalidValidity
	}
}
