package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
)

func methodByName(t *testing.T, provider registry.Provider, name string) jsonrpc.Handler {
	t.Helper()

	for _, m := range provider.Methods() {
		if m.Name == name {
			return m.Handler
		}
	}

	t.Fatalf("method %s not provided", name)
	return nil
}

func TestMathSum(t *testing.T) {
	handler := methodByName(t, Math(), "math.sum")

	result, rpcErr := handler(context.Background(), json.RawMessage(`[3,4]`))
	require.Nil(t, rpcErr)
	require.EqualValues(t, 7, result)

	result, rpcErr = handler(context.Background(), json.RawMessage(`[]`))
	require.Nil(t, rpcErr)
	require.EqualValues(t, 0, result)

	_, rpcErr = handler(context.Background(), json.RawMessage(`{"a":1}`))
	require.Equal(t, errors.ErrInvalidParams, rpcErr)
}

func TestMathAdd(t *testing.T) {
	handler := methodByName(t, Math(), "math.add")

	result, rpcErr := handler(context.Background(), json.RawMessage(`{"b":4,"a":3}`))
	require.Nil(t, rpcErr)
	require.EqualValues(t, 7, result)

	result, rpcErr = handler(context.Background(), json.RawMessage(`[1,2]`))
	require.Nil(t, rpcErr)
	require.EqualValues(t, 3, result)
}
