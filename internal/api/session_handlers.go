package api

import (
	"net/http"

	"cloud-drive/internal/apperror"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	_ "cloud-drive/internal/models"
)

// @Summary      List active sessions
// @Description  Gets a list of all active sessions for the currently authenticated user, which can be displayed to allow them to manage devices.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Session
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions [get]
func (s *Server) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	sessions, err := s.store.ListSessionsForUser(r.Context(), session.UserID)
	if err != nil {
		HandleError(w, r, apperror.Internal("Failed to retrieve sessions", err))
		return
	}

	WriteJSON(w, http.StatusOK, sessions)
}

// @Summary      Terminate a specific session
// @Description  Terminates (logs out) a specific session by its ID. A user can only terminate their own sessions.
// @Tags         sessions
// @Security     BearerAuth
// @Param        sessionId  path      string  true  "ID of the session to terminate" format(uuid)
// @Success      204        {null}    nil     "No Content"
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /sessions/{sessionId} [delete]
func (s *Server) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		HandleError(w, r, apperror.InvalidArgument("Invalid session ID format"))
		return
	}

	deleted, err := s.store.DeleteSessionByID(r.Context(), sessionID, session.UserID)
	if err != nil {
		HandleError(w, r, apperror.Internal("Failed to delete session", err))
		return
	}
	if !deleted {
		HandleError(w, r, apperror.NotFound("Session not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Terminate all sessions (Log out everywhere)
// @Description  Terminates all active sessions for the currently authenticated user, effectively logging them out from all other devices.
// @Tags         sessions
// @Security     BearerAuth
// @Success      204  {null}    nil "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions/terminate_all [post]
func (s *Server) TerminateAllSessionsHandler(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	if err := s.store.DeleteAllSessionsForUser(r.Context(), session.UserID); err != nil {
		HandleError(w, r, apperror.Internal("Failed to terminate all sessions", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
