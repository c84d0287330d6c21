package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/auth"
	"cloud-drive/internal/database"
	"cloud-drive/internal/models"

	"github.com/google/uuid"
)

const defaultMimeType = "application/octet-stream"

type Options struct {
	// RootParentID is the provider folder under which per-user roots are created.
	RootParentID string
	Order        Order
	Notifier     Notifier
	Now          func() time.Time
}

type Service struct {
	users        UserStore
	provider     Provider
	notifier     Notifier
	order        Order
	rootParentID string
	now          func() time.Time
}

func NewService(users UserStore, provider Provider, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:        users,
		provider:     provider,
		notifier:     opts.Notifier,
		order:        opts.Order,
		rootParentID: opts.RootParentID,
		now:          now,
	}
}

type UploadInput struct {
	ParentID string
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

type UploadResult struct {
	FileID      string `json:"fileId"`
	StorageUsed int64  `json:"storageUsed"`
}

// loadUser resolves the caller's account and the folder the operation targets.
// An empty parentID means the drive root; any other id must lie inside it.
func (s *Service) loadUser(ctx context.Context, session *auth.Session, parentID string) (*models.User, string, error) {
	if session == nil {
		return nil, "", apperror.Unauthenticated("Unauthorized")
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, "", apperror.Unauthenticated("Unauthorized")
		}
		return nil, "", apperror.Internal("Failed to load user", err)
	}

	if !user.HasDriveRoot() {
		return nil, "", apperror.NotFound("User drive folder not found")
	}
	root := *user.DriveRootID

	if parentID == "" || parentID == root {
		return user, root, nil
	}

	if err := s.ensureInside(ctx, root, parentID, "Folder not found"); err != nil {
		return nil, "", err
	}
	return user, parentID, nil
}

func (s *Service) ensureInside(ctx context.Context, root, id, notFound string) error {
	ok, err := s.provider.Contains(ctx, root, id)
	if err != nil {
		return apperror.Upstream("Failed to resolve node", err)
	}
	if !ok {
		return apperror.NotFound(notFound)
	}
	return nil
}

func (s *Service) ListFolder(ctx context.Context, session *auth.Session, parentID string) ([]models.StorageNode, error) {
	_, parent, err := s.loadUser(ctx, session, parentID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.provider.List(ctx, parent)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch files", err)
	}
	if nodes == nil {
		nodes = []models.StorageNode{}
	}

	SortNodes(nodes, s.order)
	return nodes, nil
}

// Upload stores a file below parentID after checking the caller's quota. Usage
// is credited with a conditional increment after the provider accepted the file;
// if a concurrent upload consumed the space in between, the new file is removed
// again and the upload fails with QuotaExceeded.
func (s *Service) Upload(ctx context.Context, session *auth.Session, in UploadInput) (*UploadResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.InvalidArgument("File name is required")
	}
	if in.Size < 0 || in.Content == nil {
		return nil, apperror.InvalidArgument("No file uploaded")
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	if mimeType == models.FolderMimeType {
		return nil, apperror.InvalidArgument("Invalid content type")
	}

	user, parent, err := s.loadUser(ctx, session, in.ParentID)
	if err != nil {
		return nil, err
	}

	if user.StorageUsed+in.Size > user.StorageQuota {
		return nil, apperror.QuotaExceeded("Insufficient storage space")
	}

	fileID, err := s.provider.Create(ctx, CreateRequest{
		ParentID: parent,
		Name:     name,
		MimeType: mimeType,
		Size:     in.Size,
		Content:  in.Content,
	})
	if err != nil {
		if errors.Is(err, ErrParentNotFound) {
			return nil, apperror.NotFound("Folder not found")
		}
		return nil, apperror.Upstream("Failed to upload file", err)
	}

	used, err := s.users.IncrementStorageUsed(ctx, user.ID, in.Size)
	if err != nil {
		s.discard(ctx, user.ID, fileID)
		if errors.Is(err, database.ErrQuotaExceeded) {
			return nil, apperror.QuotaExceeded("Insufficient storage space")
		}
		return nil, apperror.Internal("Failed to update storage usage", err)
	}

	s.notify(user.ID, EventFileUploaded, map[string]any{
		"fileId":   fileID,
		"parentId": parent,
		"name":     name,
		"size":     in.Size,
	})

	return &UploadResult{FileID: fileID, StorageUsed: used}, nil
}

func (s *Service) discard(ctx context.Context, userID uuid.UUID, fileID string) {
	// The request may already be cancelled; the orphan must still go.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.provider.Delete(cleanupCtx, fileID); err != nil {
		slog.ErrorContext(ctx, "failed to remove uncredited upload",
			"user_id", userID,
			"file_id", fileID,
			"error", err,
		)
	}
}

func (s *Service) CreateFolder(ctx context.Context, session *auth.Session, parentID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.InvalidArgument("Folder name is required")
	}

	user, parent, err := s.loadUser(ctx, session, parentID)
	if err != nil {
		return "", err
	}

	folderID, err := s.provider.Create(ctx, CreateRequest{
		ParentID: parent,
		Name:     name,
		MimeType: models.FolderMimeType,
	})
	if err != nil {
		if errors.Is(err, ErrParentNotFound) {
			return "", apperror.NotFound("Folder not found")
		}
		return "", apperror.Upstream("Failed to create folder", err)
	}

	s.notify(user.ID, EventFolderCreated, map[string]any{
		"folderId": folderID,
		"parentId": parent,
		"name":     name,
	})

	return folderID, nil
}

// Share makes a file readable by anyone holding the returned link.
func (s *Service) Share(ctx context.Context, session *auth.Session, fileID string) (string, error) {
	if strings.TrimSpace(fileID) == "" {
		return "", apperror.InvalidArgument("File ID is required")
	}

	user, root, err := s.loadUser(ctx, session, "")
	if err != nil {
		return "", err
	}
	if fileID == root {
		return "", apperror.InvalidArgument("The drive root cannot be shared")
	}
	if err := s.ensureInside(ctx, root, fileID, "File not found"); err != nil {
		return "", err
	}

	if err := s.provider.GrantPublicRead(ctx, fileID); err != nil {
		return "", apperror.Upstream("Failed to share file", err)
	}

	link, err := s.provider.ShareLink(ctx, fileID)
	if err != nil {
		return "", apperror.Upstream("Failed to share file", err)
	}

	s.notify(user.ID, EventFileShared, map[string]any{
		"fileId":    fileID,
		"shareLink": link,
	})

	return link, nil
}

// ProvisionRoot creates the user's personal root folder and records it on the account.
func (s *Service) ProvisionRoot(ctx context.Context, user *models.User) (string, error) {
	if user.HasDriveRoot() {
		return *user.DriveRootID, nil
	}

	name := fmt.Sprintf("user-folder-%s-%d", user.Name, s.now().UnixMilli())
	rootID, err := s.provider.Create(ctx, CreateRequest{
		ParentID: s.rootParentID,
		Name:     name,
		MimeType: models.FolderMimeType,
	})
	if err != nil {
		return "", apperror.Upstream("Failed to create user folder", err)
	}

	if err := s.users.SetDriveRoot(ctx, user.ID, rootID); err != nil {
		s.discard(ctx, user.ID, rootID)
		return "", apperror.Internal("Failed to save user folder", err)
	}

	user.DriveRootID = &rootID
	return rootID, nil
}

func (s *Service) notify(userID uuid.UUID, eventType string, payload any) {
	if s.notifier != nil {
		s.notifier.Notify(userID, eventType, payload)
	}
}
