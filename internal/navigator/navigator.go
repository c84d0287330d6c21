// Package navigator tracks a breadcrumb position in a folder tree and the
// listing of the current folder.
package navigator

import (
	"context"
	"errors"
	"strings"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"
)

var (
	ErrNotInitialized  = errors.New("navigator is not initialized")
	ErrNotAFolder      = errors.New("node is not a folder")
	ErrIndexOutOfRange = errors.New("breadcrumb index out of range")
)

type Lister interface {
	List(ctx context.Context, parentID string) ([]models.StorageNode, error)
}

type Crumb struct {
	ID   string
	Name string
}

// Navigator is not safe for concurrent use.
type Navigator struct {
	lister  Lister
	order   drive.Order
	crumbs  []Crumb
	entries []models.StorageNode
}

func New(lister Lister, order drive.Order) *Navigator {
	return &Navigator{lister: lister, order: order}
}

// fetch lists the folder of the last crumb and, only on success, replaces the state.
func (n *Navigator) fetch(ctx context.Context, crumbs []Crumb) error {
	entries, err := n.lister.List(ctx, crumbs[len(crumbs)-1].ID)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.StorageNode{}
	}
	drive.SortNodes(entries, n.order)

	n.crumbs = crumbs
	n.entries = entries
	return nil
}

func (n *Navigator) Init(ctx context.Context, rootID, rootLabel string) error {
	return n.fetch(ctx, []Crumb{{ID: rootID, Name: rootLabel}})
}

func (n *Navigator) Enter(ctx context.Context, folder models.StorageNode) error {
	if len(n.crumbs) == 0 {
		return ErrNotInitialized
	}
	if !folder.IsFolder() {
		return ErrNotAFolder
	}

	next := make([]Crumb, len(n.crumbs), len(n.crumbs)+1)
	copy(next, n.crumbs)
	next = append(next, Crumb{ID: folder.ID, Name: folder.Name})
	return n.fetch(ctx, next)
}

// JumpTo truncates the trail so crumb i becomes the current folder.
func (n *Navigator) JumpTo(ctx context.Context, i int) error {
	if len(n.crumbs) == 0 {
		return ErrNotInitialized
	}
	if i < 0 || i >= len(n.crumbs) {
		return ErrIndexOutOfRange
	}

	next := make([]Crumb, i+1)
	copy(next, n.crumbs[:i+1])
	return n.fetch(ctx, next)
}

func (n *Navigator) Refresh(ctx context.Context) error {
	if len(n.crumbs) == 0 {
		return ErrNotInitialized
	}
	return n.fetch(ctx, n.crumbs)
}

func (n *Navigator) Breadcrumbs() []Crumb {
	out := make([]Crumb, len(n.crumbs))
	copy(out, n.crumbs)
	return out
}

func (n *Navigator) Current() (Crumb, bool) {
	if len(n.crumbs) == 0 {
		return Crumb{}, false
	}
	return n.crumbs[len(n.crumbs)-1], true
}

func (n *Navigator) Entries() []models.StorageNode {
	out := make([]models.StorageNode, len(n.entries))
	copy(out, n.entries)
	return out
}

func (n *Navigator) Path() string {
	names := make([]string, len(n.crumbs))
	for i, c := range n.crumbs {
		names[i] = c.Name
	}
	return strings.Join(names, " / ")
}
