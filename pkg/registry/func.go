package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

/*
Func adapts an ordinary Go function into a jsonrpc.Handler. The function
may take a leading context.Context; every remaining parameter is bound
from the request params. A params array binds positionally, a params
object binds by the names given here (one per non-context parameter).
Arguments without a bound value keep their zero value, the same treatment
encoding/json gives missing object fields; wholly absent params are
rejected unless the function takes no parameters. Allowed return shapes
are (), (error), (R) and (R, error), where the error slot must be
declared as error.

Func panics on an unsupported signature: adapter misuse is a programming
error that should surface the first time registration code runs.
*/
func Func(fn any, names ...string) jsonrpc.Handler {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()

	if ft.Kind() != reflect.Func {
		panic(fmt.Sprintf("registry: Func wants a function, got %T", fn))
	}

	if ft.IsVariadic() {
		panic("registry: variadic functions are not supported")
	}

	hasResult, hasErr, ok := returnShape(ft)
	if !ok {
		panic(fmt.Sprintf("registry: unsupported return shape on %s", ft))
	}

	wantsCtx := ft.NumIn() > 0 && ft.In(0) == ctxType

	first := 0
	if wantsCtx {
		first = 1
	}

	if arity := ft.NumIn() - first; len(names) != 0 && len(names) != arity {
		panic(fmt.Sprintf("registry: %d names for %d parameters on %s", len(names), arity, ft))
	}

	return func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		args := make([]reflect.Value, 0, ft.NumIn())
		if wantsCtx {
			args = append(args, reflect.ValueOf(ctx))
		}

		bound, rpcErr := bindParams(ft, first, names, params)
		if rpcErr != nil {
			return nil, rpcErr
		}

		args = append(args, bound...)
		return unpackReturns(fv.Call(args), hasResult, hasErr)
	}
}

// returnShape classifies a function's return values. ok is false for
// shapes no adapter supports.
func returnShape(ft reflect.Type) (hasResult, hasErr, ok bool) {
	switch ft.NumOut() {
	case 0:
		return false, false, true
	case 1:
		if ft.Out(0) == errType {
			return false, true, true
		}
		return true, false, true
	case 2:
		return true, true, ft.Out(1) == errType
	}

	return false, false, false
}

// unpackReturns converts reflect.Call output into the handler contract.
// A plain error return is widened to a server error; *RpcError values
// pass through untouched.
func unpackReturns(out []reflect.Value, hasResult, hasErr bool) (any, *errors.RpcError) {
	if hasErr {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return nil, errors.FromError(err)
		}
	}

	if !hasResult {
		return nil, nil
	}

	return out[0].Interface(), nil
}

type paramsKind uint8

const (
	paramsAbsent paramsKind = iota
	paramsArray
	paramsObject
	paramsInvalid
)

func kindOf(params json.RawMessage) paramsKind {
	trimmed := bytes.TrimSpace(params)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return paramsAbsent
	case trimmed[0] == '[':
		return paramsArray
	case trimmed[0] == '{':
		return paramsObject
	}

	return paramsInvalid
}

func bindParams(ft reflect.Type, first int, names []string, params json.RawMessage) ([]reflect.Value, *errors.RpcError) {
	arity := ft.NumIn() - first
	if arity == 0 {
		// zero-parameter functions ignore whatever params carried
		return nil, nil
	}

	var (
		positional []json.RawMessage
		named      map[string]json.RawMessage
	)

	switch kindOf(params) {
	case paramsAbsent:
		// a function with parameters cannot run without params
		return nil, errors.ErrInvalidParams
	case paramsArray:
		if err := json.Unmarshal(params, &positional); err != nil {
			return nil, errors.ErrInvalidParams
		}

		if len(positional) > arity {
			return nil, errors.ErrInvalidParams
		}
	case paramsObject:
		if len(names) == 0 {
			return nil, errors.ErrInvalidParams
		}

		if err := json.Unmarshal(params, &named); err != nil {
			return nil, errors.ErrInvalidParams
		}
	default:
		return nil, errors.ErrInvalidParams
	}

	args := make([]reflect.Value, 0, arity)

	for i := 0; i < arity; i++ {
		var raw json.RawMessage

		if named != nil {
			raw = named[names[i]]
		} else if i < len(positional) {
			raw = positional[i]
		}

		arg, rpcErr := decodeArg(ft.In(first+i), raw)
		if rpcErr != nil {
			return nil, rpcErr
		}

		args = append(args, arg)
	}

	return args, nil
}

// decodeArg produces one parameter value from raw JSON. Empty raw leaves
// the zero value.
func decodeArg(t reflect.Type, raw json.RawMessage) (reflect.Value, *errors.RpcError) {
	ptr := reflect.New(t)

	if len(raw) != 0 {
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			return reflect.Value{}, errors.ErrInvalidParams
		}
	}

	return ptr.Elem(), nil
}
