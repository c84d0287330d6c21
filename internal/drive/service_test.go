package drive

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/auth"
	"cloud-drive/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const rootID = "root"

type fixture struct {
	svc      *Service
	provider *fakeProvider
	users    *fakeUsers
	notifier *fakeNotifier
	user     *models.User
	session  *auth.Session
}

func newFixture(t *testing.T, used, quota int64) *fixture {
	t.Helper()

	root := rootID
	user := &models.User{
		ID:           uuid.New(),
		Name:         "alice",
		Role:         models.RoleUser,
		StorageUsed:  used,
		StorageQuota: quota,
		DriveRootID:  &root,
	}

	provider := newFakeProvider()
	provider.add(rootID, "", "user-folder-alice", models.FolderMimeType)

	users := newFakeUsers(user)
	notifier := &fakeNotifier{}

	return &fixture{
		svc:      NewService(users, provider, Options{RootParentID: "parent", Notifier: notifier}),
		provider: provider,
		users:    users,
		notifier: notifier,
		user:     user,
		session:  &auth.Session{UserID: user.ID, Role: models.RoleUser},
	}
}

func upload(size int) UploadInput {
	return UploadInput{
		Name:     "report.pdf",
		MimeType: "application/pdf",
		Size:     int64(size),
		Content:  strings.NewReader(strings.Repeat("x", size)),
	}
}

func TestUpload_IncreasesStorageUsedBySize(t *testing.T) {
	f := newFixture(t, 100, 1000)
	before := f.users.get(f.user.ID)

	res, err := f.svc.Upload(context.Background(), f.session, upload(250))
	require.NoError(t, err)
	require.NotEmpty(t, res.FileID)
	require.Equal(t, int64(350), res.StorageUsed)

	after := f.users.get(f.user.ID)
	require.Equal(t, before.StorageUsed+250, after.StorageUsed)

	after.StorageUsed = before.StorageUsed
	require.Equal(t, before, after, "only storage_used may change")

	node := f.provider.nodes[res.FileID]
	require.Equal(t, rootID, node.ParentID, "parent defaults to the drive root")
	require.Equal(t, "application/pdf", node.MimeType)
	require.Len(t, f.notifier.events, 1)
	require.Equal(t, EventFileUploaded, f.notifier.events[0].eventType)
}

func TestUpload_QuotaExceeded(t *testing.T) {
	f := newFixture(t, 900, 1000)

	_, err := f.svc.Upload(context.Background(), f.session, upload(101))
	require.Equal(t, apperror.KindQuotaExceeded, apperror.KindOf(err))
	require.Equal(t, int64(900), f.users.get(f.user.ID).StorageUsed)
	require.Len(t, f.provider.nodes, 1, "nothing reaches the provider")
}

func TestUpload_ExactlyFillsQuota(t *testing.T) {
	f := newFixture(t, 900, 1000)

	_, err := f.svc.Upload(context.Background(), f.session, upload(100))
	require.NoError(t, err)
	require.Equal(t, int64(1000), f.users.get(f.user.ID).StorageUsed)
}

func TestUpload_ProviderFailureLeavesUsageUnchanged(t *testing.T) {
	f := newFixture(t, 100, 1000)
	f.provider.failOn["create"] = true

	_, err := f.svc.Upload(context.Background(), f.session, upload(10))
	require.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	require.ErrorIs(t, err, errUpstream)
	require.Equal(t, int64(100), f.users.get(f.user.ID).StorageUsed)
	require.Empty(t, f.notifier.events)
}

func TestUpload_ConcurrentQuotaRaceRemovesFile(t *testing.T) {
	f := newFixture(t, 0, 1000)
	f.users.beforeIncrement = func(u *models.User) {
		u.StorageUsed = 950
	}

	_, err := f.svc.Upload(context.Background(), f.session, upload(100))
	require.Equal(t, apperror.KindQuotaExceeded, apperror.KindOf(err))
	require.Equal(t, int64(950), f.users.get(f.user.ID).StorageUsed)
	require.Len(t, f.provider.deleted, 1)
	require.NotContains(t, f.provider.nodes, f.provider.deleted[0])
}

func TestUpload_Validation(t *testing.T) {
	f := newFixture(t, 0, 1000)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, nil, upload(1))
	require.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	in := upload(1)
	in.Name = "  "
	_, err = f.svc.Upload(ctx, f.session, in)
	require.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))

	in = upload(1)
	in.MimeType = models.FolderMimeType
	_, err = f.svc.Upload(ctx, f.session, in)
	require.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))

	in = upload(1)
	in.MimeType = ""
	res, err := f.svc.Upload(ctx, f.session, in)
	require.NoError(t, err)
	require.Equal(t, defaultMimeType, f.provider.nodes[res.FileID].MimeType)
}

func TestUpload_NoDriveRoot(t *testing.T) {
	f := newFixture(t, 0, 1000)
	f.users.users[f.user.ID].DriveRootID = nil

	_, err := f.svc.Upload(context.Background(), f.session, upload(1))
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.Equal(t, "User drive folder not found", apperror.Message(err))
}

func TestUpload_ForeignParentIsNotFound(t *testing.T) {
	f := newFixture(t, 0, 1000)
	f.provider.add("other-root", "", "user-folder-bob", models.FolderMimeType)

	in := upload(1)
	in.ParentID = "other-root"
	_, err := f.svc.Upload(context.Background(), f.session, in)
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.Equal(t, int64(0), f.users.get(f.user.ID).StorageUsed)
}

func TestUpload_FileAsParentIsNotFound(t *testing.T) {
	f := newFixture(t, 0, 1000)
	f.provider.add("doc", rootID, "notes.txt", "text/plain")

	in := upload(1)
	in.ParentID = "doc"
	_, err := f.svc.Upload(context.Background(), f.session, in)
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.Equal(t, "Folder not found", apperror.Message(err))
	require.Equal(t, int64(0), f.users.get(f.user.ID).StorageUsed)
	require.Empty(t, f.notifier.events)

	_, err = f.svc.CreateFolder(context.Background(), f.session, "doc", "Inside")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t, 1000, 1000)
	ctx := context.Background()

	id, err := f.svc.CreateFolder(ctx, f.session, "", "Photos")
	require.NoError(t, err, "folders are not subject to the quota")
	require.True(t, f.provider.nodes[id].IsFolder())
	require.Equal(t, rootID, f.provider.nodes[id].ParentID)

	child, err := f.svc.CreateFolder(ctx, f.session, id, "2024")
	require.NoError(t, err)
	require.Equal(t, id, f.provider.nodes[child].ParentID)
	require.Equal(t, int64(1000), f.users.get(f.user.ID).StorageUsed)

	_, err = f.svc.CreateFolder(ctx, f.session, "", "")
	require.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))

	f.provider.failOn["create"] = true
	_, err = f.svc.CreateFolder(ctx, f.session, "", "x")
	require.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}

func TestListFolder(t *testing.T) {
	f := newFixture(t, 0, 1000)
	ctx := context.Background()

	nodes, err := f.svc.ListFolder(ctx, f.session, "")
	require.NoError(t, err)
	require.NotNil(t, nodes)
	require.Empty(t, nodes, "an empty folder is an empty listing")

	f.provider.add("b", rootID, "beta.txt", "text/plain")
	f.provider.add("a", rootID, "Alpha.txt", "text/plain")
	f.provider.add("z", rootID, "zeta", models.FolderMimeType)

	nodes, err = f.svc.ListFolder(ctx, f.session, rootID)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "b"}, ids(nodes))

	_, err = f.svc.ListFolder(ctx, f.session, "missing")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	f.provider.failOn["list"] = true
	_, err = f.svc.ListFolder(ctx, f.session, "")
	require.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}

func TestListFolder_UnknownUser(t *testing.T) {
	f := newFixture(t, 0, 1000)

	_, err := f.svc.ListFolder(context.Background(), &auth.Session{UserID: uuid.New(), Role: models.RoleUser}, "")
	require.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestShare(t *testing.T) {
	f := newFixture(t, 0, 1000)
	ctx := context.Background()
	f.provider.add("file", rootID, "a.txt", "text/plain")
	f.provider.add("foreign", "", "b.txt", "text/plain")

	link, err := f.svc.Share(ctx, f.session, "file")
	require.NoError(t, err)
	require.Equal(t, "https://drive.example.com/view/file", link)
	require.True(t, f.provider.public["file"])

	_, err = f.svc.Share(ctx, f.session, "foreign")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.False(t, f.provider.public["foreign"])

	_, err = f.svc.Share(ctx, f.session, "")
	require.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))

	_, err = f.svc.Share(ctx, f.session, rootID)
	require.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))

	f.provider.failOn["grant"] = true
	_, err = f.svc.Share(ctx, f.session, "file")
	require.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}

func TestProvisionRoot(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "bob", StorageQuota: 10}
	provider := newFakeProvider()
	users := newFakeUsers(user)
	now := time.UnixMilli(1700000000123)
	svc := NewService(users, provider, Options{RootParentID: "parent", Now: func() time.Time { return now }})

	id, err := svc.ProvisionRoot(context.Background(), user)
	require.NoError(t, err)

	node := provider.nodes[id]
	require.Equal(t, "user-folder-bob-1700000000123", node.Name)
	require.Equal(t, "parent", node.ParentID)
	require.True(t, node.IsFolder())
	require.Equal(t, id, *users.get(user.ID).DriveRootID)
	require.Equal(t, id, *user.DriveRootID)

	again, err := svc.ProvisionRoot(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Len(t, provider.nodes, 1)
}

func ids(nodes []models.StorageNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
