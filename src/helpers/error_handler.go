package helpers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

var (
	// ErrBadRequest is the cause of every protocol failure.
	ErrBadRequest = errors.New("bad request")
	// ErrNoData marks an unknown symbol or an unusable series.
	ErrNoData = errors.New("no data")
)

// ParamServerError carries a message and an optional wrapped cause. Kind is a
// sentinel matched by errors.Is but kept out of the message.
type ParamServerError struct {
	Message string
	Cause   error
	Kind    error
}

func (e *ParamServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParamServerError) Unwrap() error {
	return e.Cause
}

func (e *ParamServerError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Distinct error types for errors.As checks
type ProtocolError struct{ ParamServerError }
type DataUnavailableError struct{ ParamServerError }
type FetchError struct{ ParamServerError }
type TimeoutError struct{ ParamServerError }
type TransportError struct{ ParamServerError }
type ConfigurationError struct{ ParamServerError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewProtocolError(format string, args ...interface{}) error {
	return &ProtocolError{ParamServerError{Message: fmt.Sprintf(format, args...), Kind: ErrBadRequest}}
}

func NewDataUnavailableError(symbol string, format string, args ...interface{}) error {
	msg := fmt.Sprintf("no usable data for symbol %s", symbol)
	if format != "" {
		msg += ": " + fmt.Sprintf(format, args...)
	}
	return &DataUnavailableError{ParamServerError{Message: msg, Kind: ErrNoData}}
}

func NewFetchError(symbol string, cause error) error {
	return &FetchError{ParamServerError{Message: fmt.Sprintf("fetch failed for %s", symbol), Cause: cause}}
}

func NewTimeoutError(operation string, cause error) error {
	return &TimeoutError{ParamServerError{Message: fmt.Sprintf("%s timed out", operation), Cause: cause}}
}

func NewTransportError(operation string, cause error) error {
	return &TransportError{ParamServerError{Message: operation, Cause: cause}}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{ParamServerError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// IsProtocolError reports whether err is a malformed request.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) || errors.Is(err, ErrBadRequest)
}

// -----------------------------------------------------------------------------

// IsTimeout reports whether err came from a receive or fetch deadline.
func IsTimeout(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// -----------------------------------------------------------------------------

// Category names the taxonomy bucket of err, used for log and metric labels.
func Category(err error) string {
	var (
		de *DataUnavailableError
		fe *FetchError
		tr *TransportError
		ce *ConfigurationError
	)
	switch {
	case err == nil:
		return "ok"
	case IsProtocolError(err):
		return "protocol"
	case IsTimeout(err):
		return "timeout"
	case errors.As(err, &de), errors.Is(err, ErrNoData):
		return "data_unavailable"
	case errors.As(err, &fe):
		return "fetch"
	case errors.As(err, &tr):
		return "transport"
	case errors.As(err, &ce):
		return "configuration"
	default:
		return "internal"
	}
}

// -----------------------------------------------------------------------------

// WireMessage is the text that follows "ERROR " on the wire.
func WireMessage(err error) string {
	if IsProtocolError(err) {
		return ErrBadRequest.Error()
	}
	return err.Error()
}
