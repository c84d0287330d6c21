package api

import (
	"errors"
	"mime"
	"net/http"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/drive"

	_ "cloud-drive/internal/models"
)

const multipartMemory = 32 << 20

// @Summary      List a folder
// @Description  Lists the non-trashed children of a folder, folders first and then by name. Without parentId the drive root is listed.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        parentId  query     string  false  "ID of the folder to list"
// @Success      200       {array}   models.StorageNode
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.drive.ListFolder(r.Context(), SessionFromContext(r.Context()), r.URL.Query().Get("parentId"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, nodes)
}

type UploadResponse struct {
	Success     bool   `json:"success" example:"true"`
	FileID      string `json:"fileId" example:"V1StGXR8_Z5jdHi6B-myT"`
	StorageUsed int64  `json:"storageUsed" example:"1048576"`
}

type CreateFolderRequest struct {
	Name     string `json:"name" validate:"required" example:"Documents"`
	ParentID string `json:"parentId" example:"V1StGXR8_Z5jdHi6B-myT"`
}

type CreateFolderResponse struct {
	Success  bool   `json:"success" example:"true"`
	FolderID string `json:"folderId" example:"V1StGXR8_Z5jdHi6B-myT"`
}

// @Summary      Upload a file or create a folder
// @Description  A multipart/form-data body with a "file" field uploads a file into "parentId" (or the drive root) after a quota check.
// @Description  A JSON body {name, parentId} creates a folder instead.
// @Tags         files
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        file      formData  file                 false  "File to upload"
// @Param        parentId  formData  string               false  "Target folder ID"
// @Param        folder    body      CreateFolderRequest  false  "Folder to create"
// @Success      201       {object}  UploadResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      413       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /files [post]
func (s *Server) CreateFileHandler(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		HandleError(w, r, apperror.InvalidArgument("Unsupported content type"))
		return
	}

	switch mediaType {
	case "multipart/form-data":
		s.uploadFile(w, r)
	case "application/json":
		s.createFolder(w, r)
	default:
		HandleError(w, r, apperror.InvalidArgument("Unsupported content type"))
	}
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is too large")
			return
		}
		HandleError(w, r, apperror.Wrap(apperror.KindInvalidArgument, "Invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		HandleError(w, r, apperror.Wrap(apperror.KindInvalidArgument, "No file uploaded", err))
		return
	}
	defer file.Close()

	result, err := s.drive.Upload(r.Context(), SessionFromContext(r.Context()), drive.UploadInput{
		ParentID: r.FormValue("parentId"),
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	uploadedBytes.Add(float64(header.Size))
	WriteJSON(w, http.StatusCreated, UploadResponse{
		Success:     true,
		FileID:      result.FileID,
		StorageUsed: result.StorageUsed,
	})
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	folderID, err := s.drive.CreateFolder(r.Context(), SessionFromContext(r.Context()), req.ParentID, req.Name)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, CreateFolderResponse{Success: true, FolderID: folderID})
}

type ShareRequest struct {
	FileID string `json:"fileId" validate:"required" example:"V1StGXR8_Z5jdHi6B-myT"`
}

type ShareResponse struct {
	ShareLink string `json:"shareLink" example:"http://localhost:8080/public/V1StGXR8_Z5jdHi6B-myT"`
}

// @Summary      Share a file publicly
// @Description  Grants anonymous read access to a file in the caller's drive and returns its public link. Shares cannot be revoked.
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        shareRequest  body      ShareRequest  true  "File to share"
// @Success      200           {object}  ShareResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Failure      500           {object}  ErrorResponse
// @Router       /share [post]
func (s *Server) ShareFileHandler(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	link, err := s.drive.Share(r.Context(), SessionFromContext(r.Context()), req.FileID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, ShareResponse{ShareLink: link})
}

