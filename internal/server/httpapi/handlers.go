package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/gorilla/mux"
)

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "failed to write response", "err", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	s.writeJSON(w, r, code, api.ErrorResponse{Error: msg})
}

func (s *HTTPServer) status(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, api.NewStatusResponse(s.now()))
}

func (s *HTTPServer) syncNotes(w http.ResponseWriter, r *http.Request) {
	req, err := api.DecodeSyncRequest(r.Body)
	if err != nil {
		s.logger.Warn(r.Context(), "rejected sync request", "err", err)
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	outcomes, err := s.notes.Sync(r.Context(), req.Notes)
	if err != nil {
		s.logger.Error(r.Context(), "sync failed", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "Failed to sync notes")
		return
	}

	s.writeJSON(w, r, http.StatusOK, api.NewSyncResponse(outcomes))
}

func (s *HTTPServer) listNotes(w http.ResponseWriter, r *http.Request) {
	all, err := s.notes.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list failed", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "Failed to list notes")
		return
	}

	s.writeJSON(w, r, http.StatusOK, api.ListResponse{Notes: all})
}

func (s *HTTPServer) getNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	n, err := s.notes.Get(r.Context(), id)
	if errors.Is(err, common.ErrorNotFound) {
		s.writeError(w, r, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "get failed", "id", id, "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "Failed to get note")
		return
	}

	s.writeJSON(w, r, http.StatusOK, api.NoteResponse{Note: n})
}

func (s *HTTPServer) takeSnapshot(w http.ResponseWriter, r *http.Request) {
	res, err := s.snapshots.Take(r.Context())
	if errors.Is(err, common.ErrSnapshotsDisabled) {
		s.writeError(w, r, http.StatusNotImplemented, "Snapshots are not configured")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "snapshot failed", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "Failed to take snapshot")
		return
	}

	s.writeJSON(w, r, http.StatusOK, api.SnapshotResponse{Key: res.Key, URL: res.URL})
}
