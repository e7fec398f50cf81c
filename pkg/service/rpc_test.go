package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tj/assert"
	"github.com/theapemachine/jsonrpc-go/pkg/builtin"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
)

func newTestRPCServer() *RPCServer {
	reg := registry.New().RegisterProvider(builtin.Math())
	return NewRPCServer("test-rpc", "0.1.0", reg)
}

func TestHandleRPC(t *testing.T) {
	srv := newTestRPCServer()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"math.sum","params":[3,4],"id":1}`))
	res, err := srv.app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, `{"id":1,"jsonrpc":"2.0","result":7}`, string(body))
}

func TestHandleRPCNotification(t *testing.T) {
	srv := newTestRPCServer()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"math.sum","params":[1]}`))
	res, err := srv.app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestHandleRPCBatch(t *testing.T) {
	srv := newTestRPCServer()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`[
		{"jsonrpc":"2.0","method":"math.add","params":{"a":1,"b":2},"id":1},
		{"jsonrpc":"2.0","method":"math.sum","params":[1]}
	]`))
	res, err := srv.app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)

	var replies []map[string]any
	assert.NoError(t, json.Unmarshal(body, &replies))
	assert.Len(t, replies, 1)
	assert.Equal(t, float64(3), replies[0]["result"])
}

func TestDescriptor(t *testing.T) {
	srv := newTestRPCServer()

	req := httptest.NewRequest(http.MethodGet, "/.well-known/rpc.json", nil)
	res, err := srv.app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	var desc Descriptor
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&desc))
	assert.Equal(t, "test-rpc", desc.Name)
	assert.Equal(t, "0.1.0", desc.Version)
	assert.Equal(t, []string{"math.add", "math.sum"}, desc.Methods)
}

func TestRootLiveness(t *testing.T) {
	srv := newTestRPCServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res, err := srv.app.Test(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "OK", string(body))
}
