package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

/*
Service scans the exported methods of recv and exposes each suitable one
as "<type>.<method>", with the type name lowercased and the method name
lower-camelled: IssueToken on a System receiver becomes system.issueToken.
A method is suitable when it takes at most one non-context parameter and
returns (), (error), (R) or (R, error); anything else is skipped.

The single parameter is typically a struct. A params object binds its
fields through their json tags; a params array binds exported fields in
declaration order, so positional and named calls reach the same method.
*/
func Service(recv any) (Provider, error) {
	rv := reflect.ValueOf(recv)
	rt := rv.Type()

	base := reflect.Indirect(rv).Type().Name()
	if base == "" {
		return nil, fmt.Errorf("registry: receiver must be a named type, got %s", rt)
	}

	prefix := strings.ToLower(base)
	var methods []Method

	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}

		handler, ok := adaptMethod(rv.Method(i))
		if !ok {
			log.Debug("method not adaptable", "receiver", base, "method", m.Name)
			continue
		}

		methods = append(methods, Method{
			Name:    prefix + "." + lowerFirst(m.Name),
			Handler: handler,
		})
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("registry: no callable methods on %s", rt)
	}

	return &serviceSet{methods: methods}, nil
}

type serviceSet struct {
	methods []Method
}

func (set *serviceSet) Methods() []Method { return set.methods }

func adaptMethod(mv reflect.Value) (jsonrpc.Handler, bool) {
	mt := mv.Type()

	hasResult, hasErr, ok := returnShape(mt)
	if !ok || mt.IsVariadic() {
		return nil, false
	}

	wantsCtx := mt.NumIn() > 0 && mt.In(0) == ctxType

	first := 0
	if wantsCtx {
		first = 1
	}

	var paramType reflect.Type

	switch mt.NumIn() - first {
	case 0:
	case 1:
		paramType = mt.In(first)
	default:
		return nil, false
	}

	handler := func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		args := make([]reflect.Value, 0, 2)
		if wantsCtx {
			args = append(args, reflect.ValueOf(ctx))
		}

		if paramType != nil {
			arg, rpcErr := decodeValue(paramType, params)
			if rpcErr != nil {
				return nil, rpcErr
			}

			args = append(args, arg)
		}

		return unpackReturns(mv.Call(args), hasResult, hasErr)
	}

	return handler, true
}

// decodeValue decodes request params into a single value of type t,
// accepting both calling conventions for plain structs.
func decodeValue(t reflect.Type, params json.RawMessage) (reflect.Value, *errors.RpcError) {
	ptr := reflect.New(t)

	switch kindOf(params) {
	case paramsAbsent, paramsInvalid:
		// params must be an array or an object when the method takes one
		return reflect.Value{}, errors.ErrInvalidParams
	case paramsArray:
		if bindableStruct(t) {
			if rpcErr := bindStructPositional(ptr.Elem(), params); rpcErr != nil {
				return reflect.Value{}, rpcErr
			}

			return ptr.Elem(), nil
		}
	}

	// object params, or an array binding a non-struct parameter directly
	if err := json.Unmarshal(params, ptr.Interface()); err != nil {
		return reflect.Value{}, errors.ErrInvalidParams
	}

	return ptr.Elem(), nil
}

// bindableStruct reports whether t is a plain struct whose fields can be
// filled positionally. Types with their own UnmarshalJSON (time.Time and
// friends) decode as themselves instead.
func bindableStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	return !reflect.PointerTo(t).Implements(unmarshalerType)
}

func bindStructPositional(dst reflect.Value, params json.RawMessage) *errors.RpcError {
	var items []json.RawMessage
	if err := json.Unmarshal(params, &items); err != nil {
		return errors.ErrInvalidParams
	}

	fields := exportedFields(dst.Type())
	if len(items) > len(fields) {
		return errors.ErrInvalidParams
	}

	for i, raw := range items {
		if len(raw) == 0 {
			continue
		}

		if err := json.Unmarshal(raw, dst.Field(fields[i]).Addr().Interface()); err != nil {
			return errors.ErrInvalidParams
		}
	}

	return nil
}

// exportedFields lists settable field indices in declaration order,
// skipping unexported and json:"-" fields.
func exportedFields(t reflect.Type) []int {
	indices := make([]int, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}

		indices = append(indices, i)
	}

	return indices
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}
