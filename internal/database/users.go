package database

import (
	"context"
	"errors"
	"fmt"

	"cloud-drive/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, role, storage_used, storage_quota, drive_root_id, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.StorageUsed,
		&user.StorageQuota,
		&user.DriveRootID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         models.Role
	StorageQuota int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	role := arg.Role
	if role == "" {
		role = models.RoleUser
	}

	query := `
		INSERT INTO users (name, email, password_hash, role, storage_quota)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(q.db.QueryRow(ctx, query, arg.Name, arg.Email, arg.PasswordHash, role, arg.StorageQuota))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *Queries) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	query := `
		SELECT id, name, email, role, storage_used, storage_quota, created_at
		FROM users
		ORDER BY created_at DESC
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.StorageUsed,
			&u.StorageQuota,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if users == nil {
		return []models.UserSummary{}, nil
	}

	return users, nil
}

func (q *Queries) SetDriveRoot(ctx context.Context, id uuid.UUID, rootID string) error {
	res, err := q.db.Exec(ctx, `UPDATE users SET drive_root_id = $1 WHERE id = $2`, rootID, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (q *Queries) SetUserRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	query := `UPDATE users SET role = $1 WHERE email = $2 RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query, role, email))
}

// IncrementStorageUsed adds delta bytes to the user's usage only if the result
// stays within the quota, and returns the new usage. The check and the write are
// a single statement, so concurrent uploads cannot push usage past the quota.
func (q *Queries) IncrementStorageUsed(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("negative storage delta %d", delta)
	}

	query := `
		UPDATE users
		SET storage_used = storage_used + $1
		WHERE id = $2 AND storage_used + $1 <= storage_quota
		RETURNING storage_used
	`
	var used int64
	err := q.db.QueryRow(ctx, query, delta, id).Scan(&used)
	if err == nil {
		return used, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUserNotFound
	}
	return 0, ErrQuotaExceeded
}
