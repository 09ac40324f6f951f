package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// userView is the JSON shape of a user. The password hash never leaves the
// server.
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// fileView is the JSON shape of a file record.
type fileView struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func newUserView(user *metadata.User) userView {
	return userView{ID: string(user.ID), Email: user.Email}
}

func newFileView(record *metadata.FileRecord) fileView {
	return fileView{
		ID:       string(record.ID),
		UserID:   string(record.OwnerID),
		Name:     record.Name,
		Type:     string(record.Kind),
		IsPublic: record.Public,
		ParentID: string(record.ParentID),
	}
}

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to encode response body: %v", err)
	}
}

// writeError writes a JSON error body of the form {"error": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
