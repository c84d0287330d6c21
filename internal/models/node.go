package models

import "time"

// FolderMimeType marks a storage node as a folder. Every other MIME type is a file.
const FolderMimeType = "application/vnd.google-apps.folder"

type StorageNode struct {
	ID         string     `json:"id" example:"1AbCdEfGhIjKlMnOpQrStU"`
	Name       string     `json:"name" example:"Dokumenty"`
	MimeType   string     `json:"mime_type" example:"application/vnd.google-apps.folder"`
	Size       *int64     `json:"size,omitempty" example:"2048"`
	ParentID   string     `json:"parent_id,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

func (n StorageNode) IsFolder() bool {
	return n.MimeType == FolderMimeType
}
