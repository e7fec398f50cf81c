package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/jsonrpc-go/pkg/errors"
)

/*
Handler is the uniform method contract: raw params in, result or error
out. How a handler came to exist (hand written, wrapped from a typed
function, scanned off a receiver) is invisible at this level.

Returning (nil, nil) is a null result. A returned *RpcError wins over any
result value.
*/
type Handler func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError)

// Resolver finds the handler registered under a method name. It must not
// be mutated while a Dispatcher is serving; dispatch reads it without
// locking.
type Resolver interface {
	Lookup(method string) (Handler, bool)
}

/*
Dispatcher turns raw request payloads into raw reply payloads: it
classifies single versus batch, resolves methods, applies notification
semantics and assembles the wire responses. One Dispatcher is built at
startup and shared by every transport; it holds no per-request state, so
concurrent Dispatch calls are safe.
*/
type Dispatcher struct {
	resolver    Resolver
	maxInFlight int
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithMaxInFlight caps how many handlers a single batch may have running
// at once. Zero or negative means unbounded fan-out, which is the
// default.
func WithMaxInFlight(n int) Option {
	return func(d *Dispatcher) { d.maxInFlight = n }
}

// NewDispatcher wires a Dispatcher to the resolver that owns the method
// table.
func NewDispatcher(resolver Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{resolver: resolver}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

/*
Dispatch processes one raw payload and returns the serialized reply, or
nil when nothing is owed back (notifications only, or an empty batch
result). Malformed input never surfaces as a Go error: every failure mode
has a wire representation.

The first non-space byte decides the shape: '{' is a single call, '[' a
batch, anything else is rejected outright as an invalid request.
*/
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) []byte {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		log.Error("invalid request, expected '{' or '['")
		return marshalReply(NewErrorResponse(NullID(), errors.ErrInvalidRequest))
	}

	if raw[0] == '{' {
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Error("parse request", "error", err)
			return marshalReply(NewErrorResponse(NullID(), errors.ErrParseError))
		}

		resp, owed := d.call(ctx, req)
		if !owed {
			return nil
		}

		return marshalReply(resp)
	}

	var batch []Request
	if err := json.Unmarshal(raw, &batch); err != nil {
		log.Error("parse batch", "error", err)
		return marshalReply(NewErrorResponse(NullID(), errors.ErrParseError))
	}

	responses := d.callBatch(ctx, batch)
	if len(responses) == 0 {
		return nil
	}

	return marshalReply(responses)
}

// call runs one request to completion on the calling goroutine. The
// second return reports whether a reply is owed; notifications run their
// handler but discard the outcome.
func (d *Dispatcher) call(ctx context.Context, req Request) (Response, bool) {
	handler, found := d.resolver.Lookup(req.Method)
	if !found {
		log.Error("method not found", "method", req.Method)

		if req.ID.IsNotification() {
			return Response{}, false
		}

		return NewErrorResponse(req.ID, errors.ErrMethodNotFound), true
	}

	result, rpcErr := handler(ctx, req.Params)

	if req.ID.IsNotification() {
		return Response{}, false
	}

	if rpcErr != nil {
		return NewErrorResponse(req.ID, rpcErr), true
	}

	return NewResponse(req.ID, result), true
}

/*
callBatch fans the entries of a batch out concurrently. Unknown methods
are answered inline, in submission order, before any handler output;
notifications run fire-and-forget; everything else lands on a completion
channel in whatever order the handlers finish. The channel is buffered to
the submission count so no sender can block.
*/
func (d *Dispatcher) callBatch(ctx context.Context, batch []Request) []Response {
	responses := make([]Response, 0, len(batch))
	completions := make(chan Response, len(batch))
	gate := newGate(d.maxInFlight)
	pending := 0

	for _, req := range batch {
		handler, found := d.resolver.Lookup(req.Method)
		if !found {
			log.Error("method not found", "method", req.Method)

			if !req.ID.IsNotification() {
				responses = append(responses, NewErrorResponse(req.ID, errors.ErrMethodNotFound))
			}

			continue
		}

		if req.ID.IsNotification() {
			go func() {
				gate.enter()
				defer gate.leave()

				_, _ = handler(ctx, req.Params)
			}()

			continue
		}

		pending++

		go func() {
			gate.enter()
			defer gate.leave()

			result, rpcErr := handler(ctx, req.Params)
			if rpcErr != nil {
				completions <- NewErrorResponse(req.ID, rpcErr)
				return
			}

			completions <- NewResponse(req.ID, result)
		}()
	}

	return drainCompletions(completions, pending, responses)
}

/*
drainCompletions appends exactly pending responses as they arrive. If the
channel closes early the responses gathered so far are returned rather
than thrown away, so a torn-down batch still yields its partial output.
*/
func drainCompletions(completions <-chan Response, pending int, responses []Response) []Response {
	for pending > 0 {
		resp, open := <-completions
		if !open {
			break
		}

		responses = append(responses, resp)
		pending--
	}

	return responses
}

// gate is a counting semaphore over batch handler goroutines. The nil
// gate (limit <= 0) admits everything immediately.
type gate chan struct{}

func newGate(limit int) gate {
	if limit <= 0 {
		return nil
	}

	return make(gate, limit)
}

func (g gate) enter() {
	if g != nil {
		g <- struct{}{}
	}
}

func (g gate) leave() {
	if g != nil {
		<-g
	}
}

// marshalReply serializes a Response or []Response. Encoding our own
// envelope only fails when a handler smuggled an unserializable value
// into error data, in which case a bare internal error goes out instead.
func marshalReply(v any) []byte {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal reply", "error", err)
		return []byte(`{"error":{"code":-32603,"message":"Internal error"},"id":null,"jsonrpc":"2.0"}`)
	}

	return buf
}
