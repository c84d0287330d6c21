package api

import (
	"context"
	"net/http"
	"strings"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/auth"
	"cloud-drive/internal/models"
)

type contextKey string

const sessionContextKey = contextKey("session")

// AuthMiddleware verifies the bearer token and stores the resulting
// *auth.Session in the request context.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			HandleError(w, r, apperror.Unauthenticated("Authorization header required"))
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			HandleError(w, r, apperror.Unauthenticated("Invalid Authorization header format"))
			return
		}

		session, err := s.sessionFromToken(headerParts[1])
		if err != nil {
			HandleError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

func (s *Server) sessionFromToken(token string) (*auth.Session, error) {
	claims, err := auth.VerifyJWT(token, s.config.JWT.Secret)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnauthenticated, "Invalid or expired token", err)
	}
	session, err := auth.SessionFromClaims(claims)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnauthenticated, "Invalid or expired token", err)
	}
	return session, nil
}

// RequireRole rejects sessions without the given role before the handler runs,
// so nothing about the resource is read or returned.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				HandleError(w, r, apperror.Unauthenticated("Unauthorized"))
				return
			}
			if session.Role != role {
				HandleError(w, r, apperror.Forbidden("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) *auth.Session {
	if session, ok := ctx.Value(sessionContextKey).(*auth.Session); ok {
		return session
	}
	return nil
}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
