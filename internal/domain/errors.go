package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	StatusConfigError   = "CONFIG_ERROR"
	StatusUpstreamHTTP  = "UPSTREAM_HTTP_ERROR"
	StatusUpstreamError = "UPSTREAM_ERROR"
)

// ConfigError is a deploy-time misconfiguration. It is never retryable.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

type UpstreamKind int

const (
	// UpstreamHTTP: provider answered with a non-2xx status.
	UpstreamHTTP UpstreamKind = iota + 1
	// UpstreamApplication: provider answered 2xx but its body reports a failure status.
	UpstreamApplication
	// UpstreamTransport: network failure, timeout or an unreadable body.
	UpstreamTransport
)

// UpstreamError is any failure attributable to the reviews provider.
type UpstreamError struct {
	Kind           UpstreamKind
	StatusCode     int
	ProviderStatus string
	Message        string
	Err            error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case UpstreamHTTP:
		if e.Message != "" {
			return fmt.Sprintf("provider returned HTTP %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("provider returned HTTP %d", e.StatusCode)
	case UpstreamApplication:
		if e.Message != "" {
			return fmt.Sprintf("provider status %s: %s", e.ProviderStatus, e.Message)
		}
		return "provider status " + e.ProviderStatus
	}
	if e.Err != nil {
		return "provider request failed: " + e.Err.Error()
	}
	return "provider request failed: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus maps an error from the reviews pipeline to the status returned to clients.
func HTTPStatus(err error) int {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// EnvelopeFor converts any pipeline error into the error envelope.
func EnvelopeFor(err error) ReviewsResponse {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ErrorEnvelope(StatusConfigError, ce.Error())
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch ue.Kind {
		case UpstreamHTTP:
			return ErrorEnvelope(StatusUpstreamHTTP, ue.Error())
		case UpstreamApplication:
			status := ue.ProviderStatus
			if status == "" {
				status = StatusUpstreamError
			}
			return ErrorEnvelope(status, ue.Error())
		}
		return ErrorEnvelope(StatusUpstreamError, ue.Error())
	}
	return ErrorEnvelope(StatusUpstreamError, "unexpected error fetching reviews")
}

// Outcome is a low-cardinality label for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return "config_error"
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch ue.Kind {
		case UpstreamHTTP:
			return "upstream_http"
		case UpstreamApplication:
			return "upstream_status"
		}
	}
	return "upstream_error"
}
