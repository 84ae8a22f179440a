package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/teemow/recap/internal/logging"
	"github.com/teemow/recap/internal/zoom"
)

// Zoom webhook event names the server acts on.
const (
	eventURLValidation      = "endpoint.url_validation"
	eventRecordingCompleted = "recording.completed"
)

// readWebhook authenticates and decodes a webhook delivery. It answers
// url_validation challenges inline and returns (nil, false) for any
// request that has already been responded to.
func (s *Server) readWebhook(w http.ResponseWriter, r *http.Request) (*zoom.WebhookEvent, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.metrics.RecordWebhookEvent(r.Context(), "unknown", "rejected")
		writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return nil, false
	}

	timestamp := r.Header.Get("x-zm-request-timestamp")
	signature := r.Header.Get("x-zm-signature")
	if !zoom.VerifySignature(s.webhookSecret, timestamp, body, signature) {
		s.logger.Warn("webhook signature verification failed", "path", r.URL.Path)
		s.metrics.RecordWebhookEvent(r.Context(), "unknown", "unauthorized")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return nil, false
	}

	var event zoom.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.metrics.RecordWebhookEvent(r.Context(), "unknown", "rejected")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}

	// Zoom sends the validation challenge to every webhook endpoint.
	if event.Event == eventURLValidation {
		s.metrics.RecordWebhookEvent(r.Context(), eventURLValidation, "accepted")
		writeJSON(w, http.StatusOK, zoom.Validate(s.webhookSecret, event.Payload.PlainToken))
		return nil, false
	}

	return &event, true
}

// handleRecordingCompleted serves POST /webhooks/recording-completed. A
// recording.completed event spawns a background job running the full
// pipeline; the response returns the job ID immediately.
func (s *Server) handleRecordingCompleted(w http.ResponseWriter, r *http.Request) {
	event, ok := s.readWebhook(w, r)
	if !ok {
		return
	}
	if event.Event != eventRecordingCompleted || event.Payload.Object == nil || event.Payload.Object.UUID == "" {
		s.metrics.RecordWebhookEvent(r.Context(), event.Event, "ignored")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	meetingUUID := event.Payload.Object.UUID
	jobID := s.sc.StartJob(meetingUUID)
	s.metrics.RecordWebhookEvent(r.Context(), eventRecordingCompleted, "accepted")
	s.logger.Info("recording job accepted",
		logging.Job(jobID),
		logging.Meeting(meetingUUID),
		slog.String("topic", event.Payload.Object.Topic),
		logging.UserHash(event.Payload.Object.HostEmail))

	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "accepted",
		"job_id":       jobID,
		"meeting_uuid": meetingUUID,
	})
}

// handleDeauthorization serves POST /webhooks/deauthorization. The event
// is acknowledged and logged; there is no per-user state to purge.
func (s *Server) handleDeauthorization(w http.ResponseWriter, r *http.Request) {
	event, ok := s.readWebhook(w, r)
	if !ok {
		return
	}

	s.metrics.RecordWebhookEvent(r.Context(), event.Event, "accepted")
	s.logger.Info("app deauthorized",
		"event", event.Event,
		"account_id", event.Payload.AccountID,
		"user_id", event.Payload.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

// handleMeetingDeleted serves POST /webhooks/meeting-deleted. Archived
// artifacts are deliberately kept; the deletion is only logged.
func (s *Server) handleMeetingDeleted(w http.ResponseWriter, r *http.Request) {
	event, ok := s.readWebhook(w, r)
	if !ok {
		return
	}

	attrs := []any{"event", event.Event}
	if event.Payload.Object != nil {
		attrs = append(attrs,
			logging.Meeting(event.Payload.Object.UUID),
			slog.String("topic", event.Payload.Object.Topic),
			logging.Domain(event.Payload.Object.HostEmail))
	}
	s.metrics.RecordWebhookEvent(r.Context(), event.Event, "accepted")
	s.logger.Info("meeting deleted", attrs...)
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
