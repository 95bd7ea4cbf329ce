// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error categories for server operations.
type ErrorCode int

const (
	// ErrProtocol indicates a protocol-level error.
	ErrProtocol ErrorCode = iota
	// ErrHandshake indicates a handshake rejection; the offending client is
	// dropped and the listener keeps accepting.
	ErrHandshake
	// ErrEncoding indicates an encoding error on the update path.
	ErrEncoding
	// ErrNetwork indicates a transport failure; fatal to the session.
	ErrNetwork
	// ErrConfiguration indicates a configuration error.
	ErrConfiguration
	// ErrValidation indicates input validation failure.
	ErrValidation
	// ErrUnsupported indicates an unsupported client capability.
	ErrUnsupported
)

// String returns the string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrProtocol:
		return "protocol"
	case ErrHandshake:
		return "handshake"
	case ErrEncoding:
		return "encoding"
	case ErrNetwork:
		return "network"
	case ErrConfiguration:
		return "configuration"
	case ErrValidation:
		return "validation"
	case ErrUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ServerError provides structured error information with operation context,
// error codes, and message wrapping.
type ServerError struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vnc %s: %s: %s: %v", e.Code.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("vnc %s: %s: %s", e.Code.String(), e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
func (e *ServerError) Is(target error) bool {
	var srvErr *ServerError
	if errors.As(target, &srvErr) {
		return e.Code == srvErr.Code && e.Op == srvErr.Op
	}
	return false
}

// NewServerError creates a new ServerError with the specified parameters.
func NewServerError(op string, code ErrorCode, message string, err error) *ServerError {
	return &ServerError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsServerError checks if an error is a ServerError and optionally matches
// specific error codes. With no codes it returns true for any ServerError.
func IsServerError(err error, code ...ErrorCode) bool {
	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		return false
	}

	if len(code) == 0 {
		return true
	}

	for _, c := range code {
		if srvErr.Code == c {
			return true
		}
	}
	return false
}

// GetErrorCode extracts the error code from a ServerError.
// Returns -1 if the error is not a ServerError.
func GetErrorCode(err error) ErrorCode {
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Code
	}
	return ErrorCode(-1)
}

// protocolError creates a new protocol error.
func protocolError(op, message string, err error) error {
	return NewServerError(op, ErrProtocol, message, err)
}

// handshakeError creates a new handshake rejection error.
func handshakeError(op, message string, err error) error {
	return NewServerError(op, ErrHandshake, message, err)
}

// encodingError creates a new encoding error.
func encodingError(op, message string, err error) error {
	return NewServerError(op, ErrEncoding, message, err)
}

// networkError creates a new network error.
func networkError(op, message string, err error) error {
	return NewServerError(op, ErrNetwork, message, err)
}

// configurationError creates a new configuration error.
func configurationError(op, message string, err error) error {
	return NewServerError(op, ErrConfiguration, message, err)
}

// validationError creates a new validation error.
func validationError(op, message string, err error) error {
	return NewServerError(op, ErrValidation, message, err)
}

// unsupportedError creates a new unsupported capability error.
func unsupportedError(op, message string, err error) error {
	return NewServerError(op, ErrUnsupported, message, err)
}
