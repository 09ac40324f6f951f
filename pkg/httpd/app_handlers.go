package httpd

import (
	"net/http"

	"github.com/marmos91/dittodrive/internal/logger"
)

// handleStatus reports liveness of the session cache and the metadata store.
//
// GET /status -> 200 {"redis": bool, "db": bool}
//
// The keys keep their historical names regardless of the configured backend
// so that existing monitoring keeps working.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheAlive := s.sessions.Ping(ctx) == nil
	dbAlive := s.meta.Ping(ctx) == nil

	writeJSON(w, http.StatusOK, map[string]bool{
		"redis": cacheAlive,
		"db":    dbAlive,
	})
}

// handleStats reports user and file counts.
//
// GET /stats -> 200 {"users": n, "files": n}
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, fileCount, err := s.files.Counts(r.Context())
	if err != nil {
		logger.Error("failed to collect stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint64{
		"users": users,
		"files": fileCount,
	})
}
