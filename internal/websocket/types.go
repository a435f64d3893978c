package websocket

import (
	"time"

	"github.com/marketguard/listing-sentinel/internal/compliance"
)

// EventType represents the type of WebSocket event.
type EventType string

const (
	// EventTypeEvaluation is emitted for every listing evaluation.
	EventTypeEvaluation EventType = "evaluation"
	// EventTypeSystemStatus carries periodic system status.
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection reports dashboard client connects/disconnects.
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// EvaluationEvent describes one completed listing evaluation. The original
// text is deliberately absent; only the findings and scores leave the
// service.
type EvaluationEvent struct {
	RequestID    string               `json:"request_id"`
	SellerID     string               `json:"seller_id,omitempty"`
	GroupName    string               `json:"group_name,omitempty"`
	RiskScore    int                  `json:"risk_score"`
	Findings     []compliance.Finding `json:"findings"`
	Fingerprint  string               `json:"fingerprint"`
	Duplicate    bool                 `json:"duplicate"`
	RateAllowed  *bool                `json:"rate_allowed,omitempty"`
	ProcessingMS float64              `json:"processing_ms"`
}

// SystemStatusEvent carries coarse service health for the dashboard.
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalEvaluations int64  `json:"total_evaluations"`
	TotalFindings    int64  `json:"total_findings"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent reports dashboard connection changes.
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected" or "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}
