package drive

import (
	"context"
	"errors"
	"io"

	"cloud-drive/internal/models"

	"github.com/google/uuid"
)

// ErrParentNotFound is returned by Provider.Create when the parent is missing or is not a folder.
var ErrParentNotFound = errors.New("parent folder not found")

// CreateRequest describes a new node. Content is nil for folders.
type CreateRequest struct {
	ParentID string
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Provider is the object storage backend holding the folder tree and file bytes.
type Provider interface {
	List(ctx context.Context, parentID string) ([]models.StorageNode, error)
	Create(ctx context.Context, req CreateRequest) (string, error)
	Delete(ctx context.Context, id string) error
	GrantPublicRead(ctx context.Context, id string) error
	ShareLink(ctx context.Context, id string) (string, error)
	// Contains reports whether id is ancestorID itself or lies somewhere below it.
	Contains(ctx context.Context, ancestorID, id string) (bool, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	IncrementStorageUsed(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
	SetDriveRoot(ctx context.Context, id uuid.UUID, rootID string) error
}

const (
	EventFileUploaded  = "file_uploaded"
	EventFolderCreated = "folder_created"
	EventFileShared    = "file_shared"
)

type Notifier interface {
	Notify(userID uuid.UUID, eventType string, payload any)
}
