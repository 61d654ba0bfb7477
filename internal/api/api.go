// Package api defines the JSON shapes exchanged by the server transports
// and the client. HTTP bodies and gRPC structpb messages carry the same
// documents.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/models"
)

const ServerName = "notes-backend"

// Result types on the wire. Created and Updated both travel as accepted.
const (
	ResultAccepted = "accepted"
	ResultConflict = "conflict"
)

type SyncRequest struct {
	Notes []models.Note `json:"notes"`
}

type SyncResponse struct {
	Results []Result `json:"results"`
}

// Result is one element of SyncResponse.Results. Note is set for accepted
// results, ClientNote and ServerNote for conflicts.
type Result struct {
	Type       string       `json:"type"`
	Note       *models.Note `json:"note,omitempty"`
	ClientNote *models.Note `json:"clientNote,omitempty"`
	ServerNote *models.Note `json:"serverNote,omitempty"`
}

func (r Result) Accepted() bool { return r.Type == ResultAccepted }

type ListResponse struct {
	Notes []*models.Note `json:"notes"`
}

type NoteResponse struct {
	Note *models.Note `json:"note"`
}

type SnapshotResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Server    string `json:"server"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewStatusResponse stamps the reply with t in unix milliseconds.
func NewStatusResponse(t time.Time) StatusResponse {
	return StatusResponse{
		Status:    "ok",
		Server:    ServerName,
		Timestamp: t.UnixMilli(),
	}
}

// DecodeSyncRequest reads and validates a sync body. A body that is not
// JSON, lacks a notes array, or holds any invalid note is rejected as a
// whole with common.ErrInvalidPayload.
func DecodeSyncRequest(r io.Reader) (*SyncRequest, error) {
	var raw struct {
		Notes *[]models.Note `json:"notes"`
	}

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	if raw.Notes == nil {
		return nil, fmt.Errorf("%w: notes array is required", common.ErrInvalidPayload)
	}

	req := &SyncRequest{Notes: *raw.Notes}
	if req.Notes == nil {
		req.Notes = []models.Note{}
	}

	for i := range req.Notes {
		if err := req.Notes[i].Validate(); err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
	}

	return req, nil
}

// ResultFromOutcome maps a reconciliation outcome to its wire shape.
func ResultFromOutcome(o models.Outcome) Result {
	switch v := o.(type) {
	case models.Created:
		n := v.Note
		return Result{Type: ResultAccepted, Note: &n}
	case models.Updated:
		n := v.Note
		return Result{Type: ResultAccepted, Note: &n}
	case models.Conflict:
		c, s := v.ClientNote, v.ServerNote
		return Result{Type: ResultConflict, ClientNote: &c, ServerNote: &s}
	default:
		panic(fmt.Sprintf("unknown outcome %T", o))
	}
}

func NewSyncResponse(outcomes []models.Outcome) SyncResponse {
	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, ResultFromOutcome(o))
	}
	return SyncResponse{Results: results}
}
