package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"cloud-drive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-access-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"unauthenticated","message":"Invalid or expired token"}`)
			return false
		}
		return true
	}

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"unauthenticated","message":"Invalid email or password"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(Tokens{AccessToken: testToken, RefreshToken: "refresh"})
	})

	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		root := "root-1"
		_ = json.NewEncoder(w).Encode(models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleUser, DriveRootID: &root})
	})

	mux.HandleFunc("GET /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		nodes := []models.StorageNode{}
		if r.URL.Query().Get("parentId") == "docs" {
			nodes = append(nodes, models.StorageNode{ID: "f1", Name: "a.txt", MimeType: "text/plain"})
		}
		_ = json.NewEncoder(w).Encode(nodes)
	})

	mux.HandleFunc("POST /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "folderId": "folder-" + req["name"]})
			return
		}

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)

		if r.FormValue("parentId") == "full" {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = io.WriteString(w, `{"error":"quota_exceeded","message":"Insufficient storage space"}`)
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"fileId":      "id-" + header.Filename,
			"storageUsed": len(data),
		})
	})

	mux.HandleFunc("POST /api/v1/share", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]string{"shareLink": "http://drive.test/public/" + req["fileId"]})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresToken(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL + "/")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(context.Background(), "ann@example.com", "wrong")
	require.ErrorIs(t, err, &APIError{StatusCode: http.StatusUnauthorized})

	tokens, err := c.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, testToken, tokens.AccessToken)
	require.Equal(t, testToken, c.Token())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ann", me.Name)
	require.Equal(t, "root-1", *me.DriveRootID)
}

func TestListAndCreateFolder(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithToken(testToken))

	nodes, err := c.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, nodes)

	nodes, err = c.List(context.Background(), "docs")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "a.txt", nodes[0].Name)

	id, err := c.CreateFolder(context.Background(), "", "Photos")
	require.NoError(t, err)
	require.Equal(t, "folder-Photos", id)
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithToken(testToken))

	result, err := c.Upload(context.Background(), "", "notes.txt", strings.NewReader("hello world"))
	require.NoError(t, err)
	require.Equal(t, "id-notes.txt", result.FileID)
	require.EqualValues(t, 11, result.StorageUsed)

	_, err = c.Upload(context.Background(), "full", "big.bin", strings.NewReader("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
	assert.Equal(t, "quota_exceeded", apiErr.Code)
	assert.Equal(t, "Insufficient storage space", apiErr.Message)
}

func TestShare(t *testing.T) {
	srv := newTestServer(t)

	link, err := New(srv.URL, WithToken(testToken)).Share(context.Background(), "f1")
	require.NoError(t, err)
	require.Equal(t, "http://drive.test/public/f1", link)

	_, err = New(srv.URL, WithToken("stale")).Share(context.Background(), "f1")
	require.ErrorIs(t, err, &APIError{StatusCode: http.StatusUnauthorized})
}

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, DefaultServer, creds.Server)
	require.Empty(t, creds.AccessToken)

	creds.Server = "https://drive.example.com"
	creds.Email = "ann@example.com"
	creds.AccessToken = testToken
	require.NoError(t, creds.Save(path))

	loaded, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, creds, loaded)
}
