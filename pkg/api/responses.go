package api

import "github.com/codeready-toolchain/ragstore/pkg/store"

// Response is the uniform envelope every endpoint returns. Metadata
// carries the correlation id and the store-reported cost/latency for
// observability.
type Response struct {
	Success  bool            `json:"success"`
	Data     any             `json:"data,omitempty"`
	Error    *ErrorDetail    `json:"error,omitempty"`
	Metadata *store.Metadata `json:"metadata,omitempty"`
}

// ErrorDetail names the error kind and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(data any, md store.Metadata) Response {
	return Response{Success: true, Data: data, Metadata: &md}
}

func fail(code, message string, md store.Metadata) Response {
	return Response{
		Success:  false,
		Error:    &ErrorDetail{Code: code, Message: message},
		Metadata: &md,
	}
}

// HealthCheck is one component's health probe result.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}
