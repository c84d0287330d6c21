package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	reached := false
	handler := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		session *auth.Session
		want    int
	}{
		{"no session", nil, http.StatusUnauthorized},
		{"user", &auth.Session{UserID: uuid.New(), Role: models.RoleUser}, http.StatusForbidden},
		{"admin", &auth.Session{UserID: uuid.New(), Role: models.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.session != nil {
				req = req.WithContext(withSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.want, rr.Code)
			require.Equal(t, tt.want == http.StatusOK, reached)
		})
	}
}

func TestAuthMiddlewareStoresSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleUser, StorageQuota: 10}
	token, err := auth.GenerateJWT(user, testServer.config.JWT.Secret, testServer.config.JWT.AccessTTL)
	require.NoError(t, err)

	var got *auth.Session
	handler := testServer.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	require.Equal(t, user.ID, got.UserID)
	require.Equal(t, models.RoleUser, got.Role)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
