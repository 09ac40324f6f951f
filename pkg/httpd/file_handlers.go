package httpd

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/files"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// handleCreateFile uploads a file, image or folder.
//
// POST /files (X-Token) -> 201 file view
//
// The request body carries content as base64 in "data"; folders carry none.
//
// Failures:
//   - 400 with the first failed validation rule ("Missing name",
//     "Missing type", "Missing data", "Parent not found",
//     "Parent is not a folder")
func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		ParentID string `json:"parentId"`
		IsPublic bool   `json:"isPublic"`
		Data     string `json:"data"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	// Content bytes that don't decode are no content at all.
	data, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		data = nil
	}

	record, err := s.files.Create(r.Context(), callerFromContext(r.Context()), files.UploadParams{
		Name:     body.Name,
		Kind:     body.Type,
		ParentID: metadata.FileID(body.ParentID),
		Public:   body.IsPublic,
		Data:     data,
	})
	if err != nil {
		var validationErr *files.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		logger.Error("failed to create file: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusCreated, newFileView(record))
}

// handleGetFile returns a file record owned by the caller.
//
// GET /files/{id} (X-Token) -> 200 file view, 404 "Not found"
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := metadata.FileID(chi.URLParam(r, "id"))

	record, err := s.files.Get(r.Context(), callerFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		logger.Error("failed to get file %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, newFileView(record))
}

// handleListFiles returns one page of the caller's records under a parent.
//
// GET /files?parentId=...&page=N (X-Token) -> 200 [file view]
//
// parentId defaults to the root; page defaults to 0 and non-numeric values
// are treated as 0. An unknown or non-folder parent yields an empty page.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	parent := metadata.FileID(r.URL.Query().Get("parentId"))
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 0
	}

	records, err := s.files.List(r.Context(), callerFromContext(r.Context()), parent, page)
	if err != nil {
		logger.Error("failed to list files: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	views := make([]fileView, 0, len(records))
	for _, record := range records {
		views = append(views, newFileView(record))
	}
	writeJSON(w, http.StatusOK, views)
}

// handlePublish returns a handler toggling a record's public flag.
//
// PUT /files/{id}/publish   (X-Token) -> 200 file view
// PUT /files/{id}/unpublish (X-Token) -> 200 file view
func (s *Server) handlePublish(public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := metadata.FileID(chi.URLParam(r, "id"))

		record, err := s.files.SetPublic(r.Context(), callerFromContext(r.Context()), id, public)
		if err != nil {
			if errors.Is(err, files.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Not found")
				return
			}
			logger.Error("failed to update file %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Internal error")
			return
		}

		writeJSON(w, http.StatusOK, newFileView(record))
	}
}

// handleGetFileData serves raw file content.
//
// GET /files/{id}/data?size=W -> 200 bytes
//
// No session is required: public files are readable anonymously, and an
// invalid token simply degrades to the anonymous caller. Private files the
// caller doesn't own answer 404 "Not found", identical to a missing record.
// size selects a derived thumbnail width; a width that was never generated
// is also 404.
func (s *Server) handleGetFileData(w http.ResponseWriter, r *http.Request) {
	id := metadata.FileID(chi.URLParam(r, "id"))
	caller := s.resolveOptionalCaller(r)

	width, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || width < 0 {
		width = 0
	}

	data, record, err := s.files.GetContent(r.Context(), id, width, caller)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrNotFound):
			writeError(w, http.StatusNotFound, "Not found")
		case errors.Is(err, files.ErrNoContentForFolder):
			writeError(w, http.StatusBadRequest, "A folder doesn't have content")
		default:
			logger.Error("failed to read content of file %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(record.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write content response: %v", err)
	}
}
