package jsonrpc

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/jsonrpc-go/pkg/errors"
)

/*
Response is one JSON-RPC 2.0 reply. Exactly one of Result and Error is
set. Field order matters: encoding/json emits struct fields in declaration
order, and keeping them alphabetical makes the serialized form stable for
byte-level assertions.

Result distinguishes "absent" (nil, the error case) from "null" (the
literal) by holding raw JSON rather than a decoded value.
*/
type Response struct {
	Error   *errors.RpcError `json:"error,omitempty"`
	ID      ID               `json:"id"`
	JSONRPC Version          `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
}

/*
NewResponse builds a success reply, marshaling result immediately so an
unserializable value degrades into an internal error here rather than
poisoning a whole batch at write time. A nil result becomes the JSON
null literal.

Constructing any Response for a notification id is a programming error
and panics: callers are required to filter notifications first.
*/
func NewResponse(id ID, result any) Response {
	mustRespond(id)

	raw, err := json.Marshal(result)
	if err != nil {
		log.Error("marshal result", "id", id, "error", err)
		return Response{ID: id, Error: errors.ErrInternal}
	}

	return Response{ID: id, Result: raw}
}

// NewErrorResponse builds an error reply. A nil rpcErr is coerced to the
// internal error rather than producing a reply with neither member.
func NewErrorResponse(id ID, rpcErr *errors.RpcError) Response {
	mustRespond(id)

	if rpcErr == nil {
		rpcErr = errors.ErrInternal
	}

	return Response{ID: id, Error: rpcErr}
}

func mustRespond(id ID) {
	if id.IsNotification() {
		panic("jsonrpc: response constructed for a notification")
	}
}
