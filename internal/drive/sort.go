package drive

import (
	"fmt"
	"slices"
	"strings"

	"cloud-drive/internal/models"
)

type Order int

const (
	FoldersFirst Order = iota
	FilesFirst
)

func (o Order) String() string {
	if o == FilesFirst {
		return "files"
	}
	return "folders"
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "folders", "folders-first":
		return FoldersFirst, nil
	case "files", "files-first":
		return FilesFirst, nil
	default:
		return FoldersFirst, fmt.Errorf("unknown listing order %q", s)
	}
}

// SortNodes orders nodes in place: one kind before the other according to order,
// then by name ignoring case, then by raw name so the result is deterministic.
func SortNodes(nodes []models.StorageNode, order Order) {
	rank := func(n models.StorageNode) int {
		if n.IsFolder() == (order == FoldersFirst) {
			return 0
		}
		return 1
	}

	slices.SortStableFunc(nodes, func(a, b models.StorageNode) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
