package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/vtt"
)

const (
	// DefaultAddr is the default address for the webhook server.
	DefaultAddr = ":8080"

	// maxWebhookBody caps request bodies. Zoom webhook deliveries are
	// small; anything past this is not a legitimate event.
	maxWebhookBody = 1 << 20
)

// Metrics receives webhook observability events. instrumentation.Metrics
// implements it.
type Metrics interface {
	RecordWebhookEvent(ctx context.Context, event, status string)
}

type noopMetrics struct{}

func (noopMetrics) RecordWebhookEvent(context.Context, string, string) {}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address. Defaults to DefaultAddr.
func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithServerMetrics sets the server's metrics recorder.
func WithServerMetrics(metrics Metrics) ServerOption {
	return func(s *Server) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithServerLogger sets the server's logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server is the webhook and jobs API HTTP server. Webhook deliveries are
// authenticated with the Zoom HMAC signature; recording events spawn
// background jobs tracked by the ServerContext's JobTracker.
type Server struct {
	addr          string
	webhookSecret string
	sc            *ServerContext
	health        *HealthChecker
	metrics       Metrics
	logger        *slog.Logger

	httpServer *http.Server
}

// NewServer creates a Server around sc. webhookSecret is the Zoom app's
// webhook secret token used for signature verification and url_validation
// challenges.
func NewServer(sc *ServerContext, webhookSecret string, opts ...ServerOption) *Server {
	s := &Server{
		addr:          DefaultAddr,
		webhookSecret: webhookSecret,
		sc:            sc,
		health:        NewHealthChecker(sc),
		metrics:       noopMetrics{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health returns the server's health checker, so the composition root can
// flip readiness during startup and shutdown.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler builds the full route table wrapped in OpenTelemetry HTTP
// instrumentation.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhooks/recording-completed", s.handleRecordingCompleted)
	mux.HandleFunc("POST /webhooks/deauthorization", s.handleDeauthorization)
	mux.HandleFunc("POST /webhooks/meeting-deleted", s.handleMeetingDeleted)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.health.RegisterHealthEndpoints(mux)

	return otelhttp.NewHandler(mux, "recap.http")
}

// Start runs the HTTP server until it is shut down. It blocks; run it in
// a goroutine for non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("starting webhook server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server. The ServerContext is
// shut down separately so in-flight jobs can be drained first or not at
// the caller's discretion.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		s.logger.Info("shutting down webhook server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleJobStatus serves GET /api/v1/jobs/{id}.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.sc.Tracker().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// analyzeRequest is the body of POST /api/v1/analyze.
type analyzeRequest struct {
	Transcript    string            `json:"transcript"`
	ChatLog       string            `json:"chat_log,omitempty"`
	Kinds         []string          `json:"kinds,omitempty"`
	SchoolMapping map[string]string `json:"school_mapping,omitempty"`
}

// analyzeResponse is the body of a successful analyze call.
type analyzeResponse struct {
	ExecutiveSummary    string         `json:"executive_summary,omitempty"`
	PedagogicalAnalysis string         `json:"pedagogical_analysis,omitempty"`
	AhaMoments          string         `json:"aha_moments,omitempty"`
	EngagementMetrics   map[string]any `json:"engagement_metrics,omitempty"`
}

// handleAnalyze serves POST /api/v1/analyze: parse the submitted VTT
// transcript and run the requested analyses synchronously. No artifacts
// are archived; the documents come back in the response body.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analyzer := s.sc.Analyzer()
	if analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	kinds := make([]analysis.Kind, 0, len(req.Kinds))
	for _, name := range req.Kinds {
		kind, ok := analysis.ParseKind(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown analysis kind: "+name)
			return
		}
		kinds = append(kinds, kind)
	}

	segments, err := vtt.Parse(strings.NewReader(req.Transcript))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid VTT transcript: "+err.Error())
		return
	}
	dialogue := vtt.FormatDialogue(vtt.MergeConsecutive(segments))
	if dialogue == "" {
		writeError(w, http.StatusBadRequest, "transcript contains no dialogue")
		return
	}

	result, err := analyzer.Generate(r.Context(), analysis.Request{
		Dialogue:      dialogue,
		ChatLog:       req.ChatLog,
		Kinds:         kinds,
		SchoolMapping: req.SchoolMapping,
	})
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "analysis failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		ExecutiveSummary:    result.ExecutiveSummary,
		PedagogicalAnalysis: result.PedagogicalAnalysis,
		AhaMoments:          result.AhaMoments,
		EngagementMetrics:   result.EngagementMetrics,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
