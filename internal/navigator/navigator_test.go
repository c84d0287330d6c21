package navigator

import (
	"context"
	"errors"
	"testing"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	tree  map[string][]models.StorageNode
	calls []string
	fail  map[string]bool
}

func (f *fakeLister) List(ctx context.Context, parentID string) ([]models.StorageNode, error) {
	f.calls = append(f.calls, parentID)
	if f.fail[parentID] {
		return nil, errors.New("upstream down")
	}
	return append([]models.StorageNode(nil), f.tree[parentID]...), nil
}

func folder(id, name string) models.StorageNode {
	return models.StorageNode{ID: id, Name: name, MimeType: models.FolderMimeType}
}

func file(id, name string) models.StorageNode {
	return models.StorageNode{ID: id, Name: name, MimeType: "text/plain"}
}

func newLister() *fakeLister {
	return &fakeLister{
		tree: map[string][]models.StorageNode{
			"root": {file("f1", "b.txt"), folder("docs", "Docs"), file("f2", "a.txt")},
			"docs": {folder("2024", "2024")},
			"2024": nil,
		},
		fail: map[string]bool{},
	}
}

func TestInit(t *testing.T) {
	l := newLister()
	nav := New(l, drive.FoldersFirst)

	require.NoError(t, nav.Init(context.Background(), "root", "My Drive"))
	require.Equal(t, []Crumb{{ID: "root", Name: "My Drive"}}, nav.Breadcrumbs())
	require.Equal(t, []string{"root"}, l.calls)

	entries := nav.Entries()
	require.Equal(t, "docs", entries[0].ID)
	require.Equal(t, "f2", entries[1].ID)
	require.Equal(t, "f1", entries[2].ID)
}

func TestFilesFirst(t *testing.T) {
	nav := New(newLister(), drive.FilesFirst)
	require.NoError(t, nav.Init(context.Background(), "root", "My Drive"))
	require.Equal(t, "docs", nav.Entries()[2].ID)
}

func TestEnterThenJumpToRoot(t *testing.T) {
	ctx := context.Background()
	l := newLister()
	nav := New(l, drive.FoldersFirst)
	require.NoError(t, nav.Init(ctx, "root", "My Drive"))

	require.NoError(t, nav.Enter(ctx, folder("docs", "Docs")))
	require.NoError(t, nav.Enter(ctx, folder("2024", "2024")))
	require.Equal(t, "My Drive / Docs / 2024", nav.Path())
	require.Empty(t, nav.Entries())
	require.NotNil(t, nav.Entries())

	require.NoError(t, nav.JumpTo(ctx, 0))
	require.Equal(t, []Crumb{{ID: "root", Name: "My Drive"}}, nav.Breadcrumbs())
	require.Equal(t, []string{"root", "docs", "2024", "root"}, l.calls, "jumping re-fetches the target")
	require.Len(t, nav.Entries(), 3)

	cur, ok := nav.Current()
	require.True(t, ok)
	require.Equal(t, "root", cur.ID)
}

func TestJumpToMiddle(t *testing.T) {
	ctx := context.Background()
	nav := New(newLister(), drive.FoldersFirst)
	require.NoError(t, nav.Init(ctx, "root", "My Drive"))
	require.NoError(t, nav.Enter(ctx, folder("docs", "Docs")))
	require.NoError(t, nav.Enter(ctx, folder("2024", "2024")))

	require.NoError(t, nav.JumpTo(ctx, 1))
	require.Len(t, nav.Breadcrumbs(), 2)
	require.Equal(t, "2024", nav.Entries()[0].ID)

	require.ErrorIs(t, nav.JumpTo(ctx, 2), ErrIndexOutOfRange)
	require.ErrorIs(t, nav.JumpTo(ctx, -1), ErrIndexOutOfRange)
}

func TestFailedFetchKeepsState(t *testing.T) {
	ctx := context.Background()
	l := newLister()
	nav := New(l, drive.FoldersFirst)
	require.NoError(t, nav.Init(ctx, "root", "My Drive"))

	l.fail["docs"] = true
	require.Error(t, nav.Enter(ctx, folder("docs", "Docs")))
	require.Equal(t, "My Drive", nav.Path())
	require.Len(t, nav.Entries(), 3)

	l.fail["root"] = true
	require.Error(t, nav.Refresh(ctx))
	require.Len(t, nav.Entries(), 3)
}

func TestGuards(t *testing.T) {
	ctx := context.Background()
	nav := New(newLister(), drive.FoldersFirst)

	require.ErrorIs(t, nav.Enter(ctx, folder("docs", "Docs")), ErrNotInitialized)
	require.ErrorIs(t, nav.JumpTo(ctx, 0), ErrNotInitialized)
	require.ErrorIs(t, nav.Refresh(ctx), ErrNotInitialized)
	_, ok := nav.Current()
	require.False(t, ok)

	require.NoError(t, nav.Init(ctx, "root", "My Drive"))
	require.ErrorIs(t, nav.Enter(ctx, file("f1", "b.txt")), ErrNotAFolder)
}

func TestBreadcrumbsAreCopies(t *testing.T) {
	nav := New(newLister(), drive.FoldersFirst)
	require.NoError(t, nav.Init(context.Background(), "root", "My Drive"))

	crumbs := nav.Breadcrumbs()
	crumbs[0].Name = "changed"
	require.Equal(t, "My Drive", nav.Path())
}
