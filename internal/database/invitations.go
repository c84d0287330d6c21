package database

import (
	"context"
	"time"

	"cloud-drive/internal/models"
)

type CreateInvitationParams struct {
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (q *Queries) CreateInvitation(ctx context.Context, arg CreateInvitationParams) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (code, expires_at, created_at)
		VALUES ($1, $2, COALESCE($3, NOW()))
		RETURNING id, code, expires_at, used, used_by, created_at
	`
	var createdAt *time.Time
	if !arg.CreatedAt.IsZero() {
		createdAt = &arg.CreatedAt
	}

	var inv models.Invitation
	err := q.db.QueryRow(ctx, query, arg.Code, arg.ExpiresAt, createdAt).Scan(
		&inv.ID,
		&inv.Code,
		&inv.ExpiresAt,
		&inv.Used,
		&inv.UsedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	return &inv, nil
}

func (q *Queries) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	query := `
		SELECT id, code, expires_at, used, used_by, created_at
		FROM invitations
		ORDER BY created_at DESC
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.ID,
			&inv.Code,
			&inv.ExpiresAt,
			&inv.Used,
			&inv.UsedBy,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if invitations == nil {
		return []models.Invitation{}, nil
	}

	return invitations, nil
}
