package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/drive"
	"cloud-drive/internal/provider/local"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testPublicURL = "http://drive.test"
	testQuota     = 1000
)

var (
	testServer  *Server
	testStore   *database.Store
	testHub     *websocket.Hub
	testHandler http.Handler
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Could not apply migrations: %s", err)
	}

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}

	blobs, err := storage.NewLocalStorage(filepath.Join(tempDir, "blobs"))
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	provider, err := local.New(ctx, filepath.Join(tempDir, "index.db"), blobs, testPublicURL)
	if err != nil {
		log.Fatalf("Could not open local provider: %s", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	testHub = websocket.NewHub()
	go testHub.Run(hubCtx)

	cfg := &config.Config{
		Server: config.ServerConfig{PublicURL: testPublicURL, MaxUploadBytes: 1 << 20},
		JWT: config.JWTConfig{
			Secret:     "api_test_secret_0123456789",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Storage: config.StorageConfig{DefaultQuota: testQuota, Provider: config.ProviderLocal},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	testStore = database.NewStore(pool)
	driveService := drive.NewService(testStore, provider, drive.Options{
		Order:    drive.FoldersFirst,
		Notifier: testHub,
	})
	testServer = NewServer(cfg, testStore, driveService, testHub)
	testServer.SetPublicFiles(provider)
	testHandler = testServer.Routes()

	code := m.Run()

	stopHub()
	provider.Close()
	pool.Close()
	os.RemoveAll(tempDir)
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("Could not terminate postgres: %s", err)
	}

	os.Exit(code)
}
