package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud-drive/internal/database"
	"cloud-drive/internal/models"

	"github.com/google/uuid"
)

var errUpstream = errors.New("provider unavailable")

type fakeProvider struct {
	mu        sync.Mutex
	nodes     map[string]models.StorageNode
	contents  map[string][]byte
	public    map[string]bool
	seq       int
	failOn    map[string]bool
	deleted   []string
	listCalls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		nodes:    map[string]models.StorageNode{},
		contents: map[string][]byte{},
		public:   map[string]bool{},
		failOn:   map[string]bool{},
	}
}

func (p *fakeProvider) add(id, parentID, name, mimeType string) {
	p.nodes[id] = models.StorageNode{ID: id, ParentID: parentID, Name: name, MimeType: mimeType}
}

func (p *fakeProvider) List(ctx context.Context, parentID string) ([]models.StorageNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listCalls = append(p.listCalls, parentID)
	if p.failOn["list"] {
		return nil, errUpstream
	}
	var out []models.StorageNode
	for _, n := range p.nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (p *fakeProvider) Create(ctx context.Context, req CreateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn["create"] {
		return "", errUpstream
	}
	if parent, ok := p.nodes[req.ParentID]; ok && !parent.IsFolder() {
		return "", ErrParentNotFound
	}
	p.seq++
	id := fmt.Sprintf("node-%d", p.seq)
	node := models.StorageNode{ID: id, ParentID: req.ParentID, Name: req.Name, MimeType: req.MimeType}
	if req.Content != nil {
		data, err := io.ReadAll(req.Content)
		if err != nil {
			return "", err
		}
		p.contents[id] = data
		size := int64(len(data))
		node.Size = &size
	}
	p.nodes[id] = node
	return id, nil
}

func (p *fakeProvider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	delete(p.nodes, id)
	delete(p.contents, id)
	return nil
}

func (p *fakeProvider) GrantPublicRead(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn["grant"] {
		return errUpstream
	}
	p.public[id] = true
	return nil
}

func (p *fakeProvider) ShareLink(ctx context.Context, id string) (string, error) {
	return "https://drive.example.com/view/" + id, nil
}

func (p *fakeProvider) Contains(ctx context.Context, ancestorID, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for cur := id; cur != ""; {
		if cur == ancestorID {
			return true, nil
		}
		n, ok := p.nodes[cur]
		if !ok {
			return false, nil
		}
		cur = n.ParentID
	}
	return false, nil
}

type fakeUsers struct {
	mu sync.Mutex
	// beforeIncrement runs inside IncrementStorageUsed and lets a test simulate
	// a concurrent writer.
	beforeIncrement func(u *models.User)
	users           map[uuid.UUID]*models.User
	failIncrement   error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) get(id uuid.UUID) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) IncrementStorageUsed(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, database.ErrUserNotFound
	}
	if f.beforeIncrement != nil {
		f.beforeIncrement(u)
	}
	if f.failIncrement != nil {
		return 0, f.failIncrement
	}
	if u.StorageUsed+delta > u.StorageQuota {
		return 0, database.ErrQuotaExceeded
	}
	u.StorageUsed += delta
	return u.StorageUsed, nil
}

func (f *fakeUsers) SetDriveRoot(ctx context.Context, id uuid.UUID, rootID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.DriveRootID = &rootID
	return nil
}

type recordedEvent struct {
	userID    uuid.UUID
	eventType string
}

type fakeNotifier struct {
	events []recordedEvent
}

func (n *fakeNotifier) Notify(userID uuid.UUID, eventType string, payload any) {
	n.events = append(n.events, recordedEvent{userID: userID, eventType: eventType})
}
