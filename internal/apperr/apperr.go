// Package apperr holds the error kinds the HTTP layer knows how to render.
// Callers discriminate with errors.Is / errors.As, so wrapping with %w along
// the way is fine.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSignatureMismatch = errors.New("invalid webhook signature")
)

// ConfigError means a credential required for the call is not configured.
// Fatal for the request, not for the process.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return "missing configuration: " + e.Missing
}

// NetworkError wraps a transport failure talking to the gateway.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "gateway unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError means the gateway answered but the body was not parseable.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return "unexpected gateway response: " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// GatewayError carries a non-success status from the gateway together with
// the upstream message.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Status, e.Message)
}

// InvalidInputError rejects a request before any state is touched.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// AlreadyRedeemedError reports a second redemption attempt, carrying the
// timestamp of the first one.
type AlreadyRedeemedError struct {
	RedeemedAt time.Time
}

func (e *AlreadyRedeemedError) Error() string { return "code already redeemed" }
