package model

// HealthStatus is the body of GET /health. EventStreams is the number of
// clients attached to /api/events and is omitted when streaming is disabled.
type HealthStatus struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Version      string `json:"version"`
	EventStreams *int   `json:"event_streams,omitempty"`
}
