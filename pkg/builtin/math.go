package builtin

import (
	"context"
	"encoding/json"

	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
)

type pack []registry.Method

func (p pack) Methods() []registry.Method { return p }

/*
Math returns the arithmetic method pack: math.sum adds every element of
its params array, math.add adds exactly two named or positional
arguments. sum is a raw handler on purpose, it is the smallest possible
demonstration of the low-level contract; add goes through the typed
adapter.
*/
func Math() registry.Provider {
	return pack{
		{Name: "math.sum", Handler: sum},
		{Name: "math.add", Handler: registry.Func(add, "a", "b")},
	}
}

func sum(_ context.Context, params json.RawMessage) (any, *errors.RpcError) {
	var nums []int64
	if err := json.Unmarshal(params, &nums); err != nil {
		return nil, errors.ErrInvalidParams
	}

	var total int64
	for _, n := range nums {
		total += n
	}

	return total, nil
}

func add(a, b int64) int64 { return a + b }
