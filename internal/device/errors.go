package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Every failure a Device surfaces
// wraps exactly one of these.
var (
	// ErrConnectionTimeout: the endpoint did not open within the connect budget
	ErrConnectionTimeout = errors.New("connection timeout")

	// ErrConnectionFailed: the endpoint open kept erroring until the budget ran out
	ErrConnectionFailed = errors.New("connection failed")

	// ErrOperationTimeout: no matching response arrived within the operation budget
	ErrOperationTimeout = errors.New("operation timeout")

	// ErrInvalidIdentify: the identify handshake payload was malformed or missing a version
	ErrInvalidIdentify = errors.New("invalid identify response")

	// ErrBusy: an operation was started while another was still in flight
	ErrBusy = errors.New("operation already in flight")

	// ErrNotConnected: an operation was attempted before Connect succeeded
	ErrNotConnected = errors.New("not connected")
)

// ErrorType represents the category of a device error
type ErrorType int

const (
	// ErrTypeConnectionTimeout indicates the open did not complete within its budget
	ErrTypeConnectionTimeout ErrorType = iota
	// ErrTypeConnectionFailed indicates the endpoint open error retries were exhausted
	ErrTypeConnectionFailed
	// ErrTypeOperationTimeout indicates a request got no complete response in time
	ErrTypeOperationTimeout
	// ErrTypeInvalidIdentify indicates a malformed or version-less identify record
	ErrTypeInvalidIdentify
	// ErrTypeBusy indicates overlapping operations on one device
	ErrTypeBusy
	// ErrTypeNotConnected indicates the device has no open endpoint
	ErrTypeNotConnected
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnectionTimeout:
		return "Connection Timeout"
	case ErrTypeConnectionFailed:
		return "Connection Failed"
	case ErrTypeOperationTimeout:
		return "Operation Timeout"
	case ErrTypeInvalidIdentify:
		return "Invalid Identify Response"
	case ErrTypeBusy:
		return "Busy"
	case ErrTypeNotConnected:
		return "Not Connected"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// sentinel maps an error type to its package sentinel
func (et ErrorType) sentinel() error {
	switch et {
	case ErrTypeConnectionTimeout:
		return ErrConnectionTimeout
	case ErrTypeConnectionFailed:
		return ErrConnectionFailed
	case ErrTypeOperationTimeout:
		return ErrOperationTimeout
	case ErrTypeInvalidIdentify:
		return ErrInvalidIdentify
	case ErrTypeBusy:
		return ErrBusy
	case ErrTypeNotConnected:
		return ErrNotConnected
	default:
		return nil
	}
}

// DeviceError is an error from one device operation, carrying the endpoint
// path and operation name for context.
type DeviceError struct {
	Type     ErrorType // Category of error
	Endpoint string    // Endpoint path (for context)
	Op       string    // Operation name (empty for connect errors)
	Err      error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	msg := e.Type.String()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Endpoint)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to the error's type, so callers can
// use errors.Is(err, device.ErrOperationTimeout) and similar.
func (e *DeviceError) Is(target error) bool {
	return target == e.Type.sentinel()
}

// newError builds a DeviceError for the given device context
func (d *Device) newError(et ErrorType, op string, err error) *DeviceError {
	return &DeviceError{Type: et, Endpoint: d.path, Op: op, Err: err}
}
