package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cloud-drive/internal/api"
	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/drive"
	"cloud-drive/internal/provider/gdrive"
	"cloud-drive/internal/provider/local"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	provider, publicFiles, closeProvider, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	rootParentID := ""
	if cfg.Storage.Provider == config.ProviderGDrive {
		rootParentID = cfg.Storage.GDrive.ParentFolderID
	}

	store := database.NewStore(pool)
	driveService := drive.NewService(store, provider, drive.Options{
		RootParentID: rootParentID,
		Order:        drive.FoldersFirst,
		Notifier:     wsHub,
	})

	server := api.NewServer(cfg, store, driveService, wsHub)
	if publicFiles != nil {
		server.SetPublicFiles(publicFiles)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr, "provider", cfg.Storage.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openProvider builds the configured object storage provider. publicFiles is
// nil for providers that serve shared links themselves.
func openProvider(ctx context.Context, cfg *config.Config) (drive.Provider, api.PublicFiles, func(), error) {
	switch cfg.Storage.Provider {
	case config.ProviderGDrive:
		p, err := gdrive.New(ctx, cfg.Storage.GDrive.ServiceAccountBase64)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("using google drive storage", "parent_folder_id", cfg.Storage.GDrive.ParentFolderID)
		return p, nil, func() {}, nil

	default:
		blobs, err := openBlobStore(ctx, cfg.Storage.Local)
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := local.New(ctx, cfg.Storage.Local.IndexPath, blobs, cfg.Server.PublicURL)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("using local storage", "index", cfg.Storage.Local.IndexPath, "blob", cfg.Storage.Local.Blob)
		return p, p, func() {
			if err := p.Close(); err != nil {
				slog.Warn("failed to close local index", "error", err)
			}
		}, nil
	}
}

func openBlobStore(ctx context.Context, lc config.LocalConfig) (storage.BlobStore, error) {
	if lc.Blob == config.BlobS3 {
		return storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:     lc.S3.Endpoint,
			Region:       lc.S3.Region,
			Bucket:       lc.S3.Bucket,
			AccessKey:    lc.S3.AccessKey,
			SecretKey:    lc.S3.SecretKey,
			UsePathStyle: lc.S3.UsePathStyle,
			Prefix:       "blobs/",
		})
	}
	return storage.NewLocalStorage(filepath.Clean(lc.Path))
}
