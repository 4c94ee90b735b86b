package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// The closed failure taxonomy. Everything a gateway method returns is one of
// these sentinels, a TransportError, or an AppError; nothing else crosses
// the package boundary.
var (
	// ErrHostUnresolvable means the server address did not resolve.
	ErrHostUnresolvable = errors.New("host unresolvable")
	// ErrConnectionRefused means the host resolved but refused the connection.
	ErrConnectionRefused = errors.New("connection refused")
	// ErrTimeout means the request did not complete in time.
	ErrTimeout = errors.New("request timed out")
)

// TransportError is a network-level failure not covered by the sentinels.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AppError is an application-level failure: a nonzero envelope code, a
// non-2xx HTTP status, or a malformed/absent payload where one was expected.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (code %d)", e.Code)
}

// classifyTransportErr maps a low-level client error onto the taxonomy, in
// order of specificity.
func classifyTransportErr(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrHostUnresolvable
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return &TransportError{Err: err}
}

// UserMessage renders any taxonomy error as displayable text. Controllers
// use it to turn gateway failures into state, never letting raw errors
// reach the presentation layer.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHostUnresolvable):
		return "Cannot resolve the server address, please check it"
	case errors.Is(err, ErrConnectionRefused):
		return "Cannot connect to the server, please check it is running"
	case errors.Is(err, ErrTimeout):
		return "Connection timed out, please check your network"
	default:
		var appErr *AppError
		if errors.As(err, &appErr) {
			return appErr.Error()
		}
		return "Network error: " + err.Error()
	}
}
