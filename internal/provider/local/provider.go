// Package local is a self-hosted storage provider: the folder tree lives in a
// SQLite index and file bytes in a storage.BlobStore.
package local

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"
	"cloud-drive/internal/storage"

	"github.com/jaevor/go-nanoid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrParentNotFound = drive.ErrParentNotFound
)

type Provider struct {
	db        *sql.DB
	blobs     storage.BlobStore
	publicURL string
	newID     func() string
}

var _ drive.Provider = (*Provider)(nil)

// New opens (and migrates) the SQLite index at indexPath.
func New(ctx context.Context, indexPath string, blobs storage.BlobStore, publicURL string) (*Provider, error) {
	if dir := filepath.Dir(indexPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}

	dsn := "file:" + indexPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	generateID, err := nanoid.Standard(21)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	return &Provider{
		db:        db,
		blobs:     blobs,
		publicURL: strings.TrimRight(publicURL, "/"),
		newID:     generateID,
	}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (p *Provider) Close() error {
	return p.db.Close()
}

func nullable(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func (p *Provider) List(ctx context.Context, parentID string) ([]models.StorageNode, error) {
	query := `
		SELECT id, parent_id, name, mime_type, size, modified_at
		FROM nodes
		WHERE parent_id IS ? AND trashed = 0
		ORDER BY mime_type = ? DESC, name
	`
	rows, err := p.db.QueryContext(ctx, query, nullable(parentID), models.FolderMimeType)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	nodes := []models.StorageNode{}
	for rows.Next() {
		var (
			n          models.StorageNode
			parent     sql.NullString
			size       sql.NullInt64
			modifiedAt string
		)
		if err := rows.Scan(&n.ID, &parent, &n.Name, &n.MimeType, &size, &modifiedAt); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		n.ParentID = parent.String
		if size.Valid {
			n.Size = &size.Int64
		}
		if t, err := time.Parse(time.RFC3339Nano, modifiedAt); err == nil {
			n.ModifiedAt = &t
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return nodes, nil
}

func (p *Provider) Create(ctx context.Context, req drive.CreateRequest) (string, error) {
	if req.ParentID != "" {
		var mimeType string
		err := p.db.QueryRowContext(ctx, `SELECT mime_type FROM nodes WHERE id = ? AND trashed = 0`, req.ParentID).Scan(&mimeType)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && mimeType != models.FolderMimeType) {
			return "", ErrParentNotFound
		}
		if err != nil {
			return "", fmt.Errorf("create: %w", err)
		}
	}

	id := p.newID()
	isFolder := req.MimeType == models.FolderMimeType

	var size sql.NullInt64
	if !isFolder {
		content := req.Content
		if content == nil {
			content = strings.NewReader("")
		}
		written, err := p.blobs.Save(ctx, id, content)
		if err != nil {
			return "", fmt.Errorf("create: save blob: %w", err)
		}
		size = sql.NullInt64{Int64: written, Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO nodes (id, parent_id, name, mime_type, size, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nullable(req.ParentID), req.Name, req.MimeType, size, now, now,
	)
	if err != nil {
		if !isFolder {
			_ = p.blobs.Delete(ctx, id)
		}
		return "", fmt.Errorf("create: %w", err)
	}

	return id, nil
}

// Delete removes a node and everything below it.
func (p *Provider) Delete(ctx context.Context, id string) error {
	query := `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM nodes WHERE id = ?
			UNION
			SELECT n.id FROM nodes n JOIN subtree s ON n.parent_id = s.id
		)
		SELECT n.id FROM nodes n JOIN subtree s ON n.id = s.id WHERE n.mime_type != ?
	`
	rows, err := p.db.QueryContext(ctx, query, id, models.FolderMimeType)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	var fileIDs []string
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			rows.Close()
			return fmt.Errorf("delete: %w", err)
		}
		fileIDs = append(fileIDs, fileID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	res, err := p.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}

	var errs []error
	for _, fileID := range fileIDs {
		if err := p.blobs.Delete(ctx, fileID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Provider) GrantPublicRead(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE nodes SET public = 1, modified_at = ? WHERE id = ? AND trashed = 0`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("grant public read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}
	return nil
}

func (p *Provider) ShareLink(ctx context.Context, id string) (string, error) {
	var public bool
	err := p.db.QueryRowContext(ctx, `SELECT public FROM nodes WHERE id = ? AND trashed = 0`, id).Scan(&public)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNodeNotFound
		}
		return "", fmt.Errorf("share link: %w", err)
	}
	if !public {
		return "", fmt.Errorf("share link: node %s is not public", id)
	}
	return p.publicURL + "/public/" + id, nil
}

func (p *Provider) Contains(ctx context.Context, ancestorID, id string) (bool, error) {
	query := `
		WITH RECURSIVE ancestors(id, parent_id) AS (
			SELECT id, parent_id FROM nodes WHERE id = ? AND trashed = 0
			UNION
			SELECT n.id, n.parent_id FROM nodes n JOIN ancestors a ON n.id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = ?)
	`
	var found bool
	if err := p.db.QueryRowContext(ctx, query, id, ancestorID).Scan(&found); err != nil {
		return false, fmt.Errorf("contains: %w", err)
	}
	return found, nil
}

// OpenPublic streams a file that was shared with GrantPublicRead. Private
// nodes and folders are reported as ErrNodeNotFound.
func (p *Provider) OpenPublic(ctx context.Context, id string) (*models.StorageNode, io.ReadCloser, error) {
	var (
		n    models.StorageNode
		size sql.NullInt64
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, mime_type, size FROM nodes
		WHERE id = ? AND public = 1 AND trashed = 0 AND mime_type != ?`,
		id, models.FolderMimeType,
	).Scan(&n.ID, &n.Name, &n.MimeType, &size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNodeNotFound
		}
		return nil, nil, fmt.Errorf("open public: %w", err)
	}
	if size.Valid {
		n.Size = &size.Int64
	}

	rc, err := p.blobs.Open(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("open public: %w", err)
	}
	return &n, rc, nil
}
