package webhook

import (
	"context"

	"github.com/mattjoyce/taskbridge/internal/bridge"
	"github.com/mattjoyce/taskbridge/internal/github"
	"github.com/mattjoyce/taskbridge/internal/journal"
)

// Config holds webhook server configuration.
type Config struct {
	Listen          string
	Path            string
	Secret          string
	SignatureHeader string
	MaxBodySize     int64
	// DebugEvents logs full webhook payloads at debug level.
	DebugEvents bool
}

// Syncer runs the PR → board sync pipeline for one event.
type Syncer interface {
	Sync(ctx context.Context, event *github.PullRequestEvent) (bridge.Outcome, error)
}

// Journal records processed deliveries. May be backed by sqlite or absent.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
	Depth(ctx context.Context) (int, error)
}

// AcceptedResponse is the JSON response for a processed delivery.
type AcceptedResponse struct {
	DeliveryID string `json:"delivery_id"`
	Result     string `json:"result"`
}

// ErrorResponse is the JSON response for rejected deliveries.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is the JSON response for GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Deliveries    int    `json:"deliveries"`
}

// Default values
const (
	DefaultMaxBodySize     = 1048576 // 1 MB
	DefaultPath            = "/webhook/github"
	DefaultSignatureHeader = "X-Hub-Signature"
)
