package api

import "time"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// EndpointDoc describes one route in the service index.
type EndpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Status         string            `json:"status"`
	Message        string            `json:"message"`
	Endpoints      []EndpointDoc     `json:"endpoints"`
	FilterExamples map[string]string `json:"filter_examples"`
}
