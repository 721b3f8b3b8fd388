package webhook

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/mattjoyce/taskbridge/internal/bridge"
	"github.com/mattjoyce/taskbridge/internal/events"
	"github.com/mattjoyce/taskbridge/internal/github"
	"github.com/mattjoyce/taskbridge/internal/journal"
)

// Server is the inbound webhook HTTP server.
type Server struct {
	config    Config
	syncer    Syncer
	journal   Journal // nil when journaling is disabled
	hub       *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a webhook server instance, applying endpoint defaults.
func New(config Config, syncer Syncer, jrnl Journal, hub *events.Hub, logger *slog.Logger) *Server {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.SignatureHeader == "" {
		config.SignatureHeader = DefaultSignatureHeader
	}
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if hub == nil {
		hub = events.NewHub(256)
	}
	return &Server{
		config:    config,
		syncer:    syncer,
		journal:   jrnl,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleDelivery)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/events", s.handleEvents)

	return r
}

// loggingMiddleware logs HTTP requests (no body content).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleDelivery processes one GitHub pull_request delivery end to end.
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	logger := s.logger.With("delivery_id", deliveryID)

	sum := blake3.Sum256(body)
	fingerprint := hex.EncodeToString(sum[:])

	entry := journal.Entry{
		DeliveryID:  deliveryID,
		ReceivedAt:  time.Now().UTC(),
		Fingerprint: fingerprint,
	}

	// Signature first; nothing is parsed from an unsigned body.
	signature := r.Header.Get(s.config.SignatureHeader)
	if err := verifySignature(body, signature, s.config.Secret); err != nil {
		logger.Warn("webhook signature verification failed", "header", s.config.SignatureHeader)
		entry.Outcome = bridge.KindAuthentication.String()
		entry.Error = err.Error()
		s.finishDelivery(ctx, logger, entry, events.TypeDeliveryRejected)
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var event github.PullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("malformed webhook payload", "error", err)
		entry.Outcome = "malformed"
		entry.Error = err.Error()
		s.finishDelivery(ctx, logger, entry, events.TypeDeliveryRejected)
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if s.config.DebugEvents {
		logger.Debug("webhook event body", "event", json.RawMessage(body))
	}

	entry.Action = event.Action
	entry.PRURL = event.PullRequest.HTMLURL

	outcome, err := s.syncer.Sync(ctx, &event)
	if err != nil {
		kind := bridge.KindOf(err)
		logger.Error("delivery failed", "kind", kind.String(), "error", err)
		entry.Outcome = kind.String()
		entry.Error = err.Error()
		s.finishDelivery(ctx, logger, entry, events.TypeDeliveryRejected)
		s.respondError(w, statusForKind(kind), err.Error())
		return
	}

	entry.Outcome = string(outcome.Result)
	entry.TaskGID = outcome.TaskGID
	entry.ProjectGID = outcome.ProjectGID
	s.finishDelivery(ctx, logger, entry, events.TypeDeliveryProcessed)

	logger.Info("delivery processed",
		"action", event.Action,
		"result", string(outcome.Result),
		"task", outcome.TaskGID,
		"section", outcome.SectionGID,
	)

	s.respondJSON(w, http.StatusAccepted, AcceptedResponse{
		DeliveryID: deliveryID,
		Result:     string(outcome.Result),
	})
}

// finishDelivery records the journal entry and publishes the hub event.
// Journal failures are logged, never surfaced to the sender.
func (s *Server) finishDelivery(ctx context.Context, logger *slog.Logger, entry journal.Entry, eventType string) {
	if s.journal != nil {
		if err := s.journal.Record(ctx, entry); err != nil {
			logger.Warn("journal record failed", "error", err)
		}
	}
	s.hub.Publish(eventType, entry)
}

// statusForKind maps a sync failure kind onto an HTTP status.
func statusForKind(kind bridge.Kind) int {
	switch kind {
	case bridge.KindAuthentication:
		return http.StatusForbidden
	case bridge.KindMissingReference:
		return http.StatusUnprocessableEntity
	case bridge.KindPolicy:
		return http.StatusConflict
	case bridge.KindUpstream, bridge.KindTransition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.journal != nil {
		depth, err := s.journal.Depth(r.Context())
		if err != nil {
			s.logger.Error("failed to compute journal depth", "error", err)
			s.respondError(w, http.StatusInternalServerError, "failed to compute journal depth")
			return
		}
		resp.Deliveries = depth
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleEvents streams delivery lifecycle events over SSE.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	lastID := parseLastEventID(r.Header.Get("Last-Event-ID"))
	for _, ev := range s.hub.SnapshotSince(lastID) {
		if err := writeSSE(w, ev); err != nil {
			return
		}
	}
	flusher.Flush()

	ch, cancel := s.hub.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func parseLastEventID(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeSSE(w http.ResponseWriter, ev events.Event) error {
	if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
		return err
	}
	if ev.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", ev.Type); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", ev.Data); err != nil {
		return err
	}
	return nil
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
