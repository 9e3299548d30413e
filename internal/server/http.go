// Package server exposes the dispatch pipeline over HTTP: submit, status,
// cancel and retry. This is only the dispatch surface; the editing UI lives
// elsewhere and talks to the same orchestrator in-process.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"card-dispatch/internal/canvas"
	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/composer"
	"card-dispatch/internal/dispatch"
	"card-dispatch/internal/gallery"
	"card-dispatch/internal/guests"
)

// GuestSource supplies the guest list of an event for event-based submits.
type GuestSource interface {
	GuestsForEvent(ctx context.Context, eventID string) ([]guests.Guest, error)
}

// Gallery is the template store behind the gallery endpoints.
type Gallery interface {
	Save(ctx context.Context, name string, t canvas.Template) (string, error)
	Load(ctx context.Context, id string) (gallery.Entry, error)
	List(ctx context.Context) ([]gallery.Entry, error)
	Delete(ctx context.Context, id string) error
}

// Server wires HTTP routes to the orchestrator and stores.
type Server struct {
	orch    *dispatch.Orchestrator
	guests  GuestSource
	gallery Gallery
	log     logger.Logger
}

func New(orch *dispatch.Orchestrator, guestSource GuestSource, store Gallery, log logger.Logger) *Server {
	return &Server{
		orch:    orch,
		guests:  guestSource,
		gallery: store,
		log:     log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes returns the dispatch API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/dispatch", s.handleSubmit)
	mux.HandleFunc("POST /api/dispatch/event", s.handleSubmitEvent)
	mux.HandleFunc("GET /api/dispatch/{id}", s.handleStatus)
	mux.HandleFunc("POST /api/dispatch/{id}/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/dispatch/{id}/retry", s.handleRetry)
	mux.HandleFunc("POST /api/gallery", s.handleGallerySave)
	mux.HandleFunc("GET /api/gallery", s.handleGalleryList)
	mux.HandleFunc("GET /api/gallery/{id}", s.handleGalleryLoad)
	mux.HandleFunc("DELETE /api/gallery/{id}", s.handleGalleryDelete)
	return mux
}

type submitRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type submitRequest struct {
	Channel    string            `json:"channel"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body,omitempty"`
	HTML       string            `json:"html,omitempty"`
	Recipients []submitRecipient `json:"recipients"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	MessageID string    `json:"message_id,omitempty"`
}

type dispatchResponse struct {
	JobID           string            `json:"job_id"`
	TotalRecipients int               `json:"total_recipients"`
	SentCount       int               `json:"sent_count"`
	FailedCount     int               `json:"failed_count"`
	PendingCount    int               `json:"pending_count"`
	CancelledCount  int               `json:"cancelled_count"`
	PartialDelivery bool              `json:"partial_delivery,omitempty"`
	Messages        []messageResponse `json:"messages"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "unreadable request body"})
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON"})
		return
	}
	if err := validateSubmitPayload(payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}

	var req submitRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON"})
		return
	}

	channel := guests.Channel(req.Channel)
	list := make([]guests.Guest, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		list = append(list, guests.Guest{
			ID:    uuid.New().String(),
			Name:  rec.Name,
			Email: rec.Email,
			Phone: rec.Phone,
			Valid: true,
		})
	}

	resolved, err := guests.ResolveValidRecipients(list, channel)
	if err != nil {
		s.writeError(w, err)
		return
	}

	jobID, err := s.orch.Submit(r.Context(), composer.Request{
		Channel: channel,
		Mode:    composer.ModeGroup,
		Subject: req.Subject,
		Body:    req.Body,
		RawHTML: req.HTML,
	}, resolved)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := s.orch.Status(jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, toResponse(summary))
}

type submitEventRequest struct {
	EventID string `json:"event_id"`
	Channel string `json:"channel"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// handleSubmitEvent dispatches to an event's stored guest list instead of an
// inline recipient array.
func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req submitEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON"})
		return
	}
	if req.EventID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "event_id is required"})
		return
	}

	list, err := s.guests.GuestsForEvent(r.Context(), req.EventID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	channel := guests.Channel(req.Channel)
	resolved, err := guests.ResolveValidRecipients(list, channel)
	if err != nil {
		s.writeError(w, err)
		return
	}

	jobID, err := s.orch.Submit(r.Context(), composer.Request{
		Channel: channel,
		Mode:    composer.ModeGroup,
		Subject: req.Subject,
		Body:    req.Body,
		RawHTML: req.HTML,
	}, resolved)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := s.orch.Status(jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, toResponse(summary))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.Status(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(summary))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.Cancel(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(summary))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	newJobID, err := s.orch.RetryFailed(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := s.orch.Status(newJobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, toResponse(summary))
}

type gallerySaveRequest struct {
	Name     string          `json:"name"`
	Template canvas.Template `json:"template"`
}

func (s *Server) handleGallerySave(w http.ResponseWriter, r *http.Request) {
	var req gallerySaveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON"})
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "name is required"})
		return
	}

	id, err := s.gallery.Save(r.Context(), req.Name, req.Template)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.gallery.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGalleryLoad(w http.ResponseWriter, r *http.Request) {
	entry, err := s.gallery.Load(r.Context(), r.PathValue("id"))
	if errors.Is(err, gallery.ErrTemplateNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "template not found"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	err := s.gallery.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, gallery.ErrTemplateNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "template not found"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResponse(s dispatch.Summary) dispatchResponse {
	resp := dispatchResponse{
		JobID:           s.JobID,
		TotalRecipients: s.Total,
		SentCount:       s.Sent,
		FailedCount:     s.Failed,
		PendingCount:    s.Pending,
		CancelledCount:  s.Cancelled,
		PartialDelivery: s.PartialDelivery,
		Messages:        make([]messageResponse, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:        m.ID,
			Recipient: m.To,
			Channel:   string(m.Channel),
			Status:    string(m.Status),
			Error:     m.Error,
			Timestamp: m.UpdatedAt,
			MessageID: m.ProviderMessageID,
		})
	}
	return resp
}

// writeError maps StandardError codes onto HTTP statuses. Unknown errors are
// opaque 500s.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		s.log.Error("request failed", map[string]interface{}{"error": err})
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(stdErr) || apperrors.IsTemplate(stdErr):
		status = http.StatusBadRequest
	case stdErr.Code == apperrors.ErrCodeJobNotFound:
		status = http.StatusNotFound
	}

	s.writeJSON(w, status, errorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encoding failed", map[string]interface{}{"error": err})
	}
}
