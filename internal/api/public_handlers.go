package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/provider/local"

	"github.com/go-chi/chi/v5"
)

// @Summary      Download a shared file
// @Description  Streams a file that was shared publicly. Only available with the self-hosted storage provider.
// @Tags         public
// @Produce      octet-stream
// @Param        nodeId  path      string  true  "ID of the shared file"
// @Success      200     {file}    file
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /public/{nodeId} [get]
func (s *Server) PublicDownloadHandler(w http.ResponseWriter, r *http.Request) {
	if s.publicFiles == nil {
		HandleError(w, r, apperror.NotFound("File not found"))
		return
	}

	node, body, err := s.publicFiles.OpenPublic(r.Context(), chi.URLParam(r, "nodeId"))
	if err != nil {
		if errors.Is(err, local.ErrNodeNotFound) {
			HandleError(w, r, apperror.NotFound("File not found"))
			return
		}
		HandleError(w, r, apperror.Internal("Failed to open file", err))
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", node.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": node.Name}))
	if node.Size != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*node.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "public download interrupted",
			"node_id", node.ID,
			"error", err,
		)
	}
}
