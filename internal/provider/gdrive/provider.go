// Package gdrive stores the drive tree in Google Drive through a service account.
package gdrive

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	listFields = "nextPageToken, files(id, name, mimeType, size, modifiedTime, parents)"
	// maxDepth bounds the parent walk in Contains.
	maxDepth = 64
)

var ErrNodeNotFound = errors.New("drive file not found")

type Provider struct {
	srv *gdrive.Service
}

var _ drive.Provider = (*Provider)(nil)

// New builds a provider from base64 encoded service account JSON credentials.
func New(ctx context.Context, serviceAccountBase64 string, opts ...option.ClientOption) (*Provider, error) {
	creds, err := base64.StdEncoding.DecodeString(strings.TrimSpace(serviceAccountBase64))
	if err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}

	opts = append([]option.ClientOption{
		option.WithCredentialsJSON(creds),
		option.WithScopes(gdrive.DriveScope),
	}, opts...)

	srv, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewFromService(srv), nil
}

func NewFromService(srv *gdrive.Service) *Provider {
	return &Provider{srv: srv}
}

func quote(id string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(id, `\`, `\\`), "'", `\'`) + "'"
}

func (p *Provider) List(ctx context.Context, parentID string) ([]models.StorageNode, error) {
	call := p.srv.Files.List().
		Q(fmt.Sprintf("%s in parents and trashed = false", quote(parentID))).
		Fields(listFields).
		OrderBy("folder,name").
		PageSize(1000)

	nodes := []models.StorageNode{}
	err := call.Pages(ctx, func(page *gdrive.FileList) error {
		for _, f := range page.Files {
			nodes = append(nodes, toNode(f, parentID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return nodes, nil
}

func toNode(f *gdrive.File, parentID string) models.StorageNode {
	n := models.StorageNode{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		ParentID: parentID,
	}
	if f.MimeType != models.FolderMimeType {
		size := f.Size
		n.Size = &size
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		n.ModifiedAt = &t
	}
	return n
}

func (p *Provider) Create(ctx context.Context, req drive.CreateRequest) (string, error) {
	file := &gdrive.File{
		Name:     req.Name,
		MimeType: req.MimeType,
	}
	if req.ParentID != "" {
		file.Parents = []string{req.ParentID}
	}

	call := p.srv.Files.Create(file).Fields("id").Context(ctx)
	if req.Content != nil && req.MimeType != models.FolderMimeType {
		call = call.Media(req.Content, googleapi.ContentType(req.MimeType))
	}

	created, err := call.Do()
	if err != nil {
		if req.ParentID != "" && isNotFound(err) {
			return "", drive.ErrParentNotFound
		}
		return "", fmt.Errorf("create file: %w", err)
	}
	return created.Id, nil
}

func (p *Provider) Delete(ctx context.Context, id string) error {
	if err := p.srv.Files.Delete(id).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return ErrNodeNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (p *Provider) GrantPublicRead(ctx context.Context, id string) error {
	_, err := p.srv.Permissions.Create(id, &gdrive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ErrNodeNotFound
		}
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (p *Provider) ShareLink(ctx context.Context, id string) (string, error) {
	f, err := p.srv.Files.Get(id).Fields("webViewLink").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return "", ErrNodeNotFound
		}
		return "", fmt.Errorf("get file: %w", err)
	}
	if f.WebViewLink == "" {
		return "", fmt.Errorf("file %s has no view link", id)
	}
	return f.WebViewLink, nil
}

// Contains walks up the parents chain of id looking for ancestorID.
func (p *Provider) Contains(ctx context.Context, ancestorID, id string) (bool, error) {
	cur := id
	for depth := 0; depth < maxDepth; depth++ {
		if cur == ancestorID {
			return true, nil
		}

		f, err := p.srv.Files.Get(cur).Fields("id, parents, trashed").Context(ctx).Do()
		if err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("get file: %w", err)
		}
		if f.Trashed || len(f.Parents) == 0 {
			return false, nil
		}
		cur = f.Parents[0]
	}
	return false, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
