package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"
	"cloud-drive/internal/websocket"

	"github.com/google/uuid"
)

// Store is the persistence the HTTP layer needs. *database.Store satisfies it.
type Store interface {
	ExecTx(ctx context.Context, fn func(*database.Queries) error) error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, arg database.CreateUserParams) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)

	CreateInvitation(ctx context.Context, arg database.CreateInvitationParams) (*models.Invitation, error)
	ListInvitations(ctx context.Context) ([]models.Invitation, error)

	CreateSession(ctx context.Context, arg database.CreateSessionParams) error
	ListSessionsForUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	DeleteAllSessionsForUser(ctx context.Context, userID uuid.UUID) error
}

// PublicFiles serves files that were shared publicly. Only the self-hosted
// provider implements it; Google Drive links point at Google directly.
type PublicFiles interface {
	OpenPublic(ctx context.Context, id string) (*models.StorageNode, io.ReadCloser, error)
}

type Server struct {
	config      *config.Config
	store       Store
	drive       *drive.Service
	wsHub       *websocket.Hub
	publicFiles PublicFiles
	now         func() time.Time
}

func NewServer(cfg *config.Config, store Store, driveService *drive.Service, wsHub *websocket.Hub) *Server {
	return &Server{
		config: cfg,
		store:  store,
		drive:  driveService,
		wsHub:  wsHub,
		now:    time.Now,
	}
}

func (s *Server) SetPublicFiles(files PublicFiles) {
	s.publicFiles = files
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// @Summary      Health check
// @Description  Reports whether the server can reach its database.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Database unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
