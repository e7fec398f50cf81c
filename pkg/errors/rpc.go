package errors

import (
	"fmt"
)

/*
RpcError is the JSON-RPC 2.0 error object: a signed 32-bit code, a short
message and an optional data value with additional detail.
*/
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for RpcError.
*/
func (e *RpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Protocol-defined errors (JSON-RPC reserved codes -32768 .. -32000).
// Application specific errors should use codes below the reserved range.
var (
	ErrParseError     = &RpcError{Code: -32700, Message: "Parse error"}
	ErrInvalidRequest = &RpcError{Code: -32600, Message: "Invalid Request"}
	ErrMethodNotFound = &RpcError{Code: -32601, Message: "Method not found"}
	ErrInvalidParams  = &RpcError{Code: -32602, Message: "Invalid params"}
	ErrInternal       = &RpcError{Code: -32603, Message: "Internal error"}
	ErrServer         = &RpcError{Code: -32000, Message: "Server error"}
)

// Reserved reports whether code falls in the range the protocol reserves
// for its own error conditions.
func Reserved(code int) bool {
	return code >= -32768 && code <= -32000
}

// WithMessagef creates a *copy* of an RpcError with a formatted message.
// It does not modify the original error variable.
func (e *RpcError) WithMessagef(format string, args ...any) *RpcError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// WithData creates a *copy* of an RpcError carrying the supplied data value,
// leaving the original untouched so the shared variables stay immutable.
func (e *RpcError) WithData(data any) *RpcError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// FromError coerces any error into an RpcError. An *RpcError passes through
// unchanged; everything else becomes a server error carrying the error text,
// keeping handler failures inside the application code range.
func FromError(err error) *RpcError {
	if err == nil {
		return nil
	}
	if rpcErr, ok := err.(*RpcError); ok {
		return rpcErr
	}
	return ErrServer.WithMessagef("%s", err.Error())
}
