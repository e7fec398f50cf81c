package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

type resolverMap map[string]jsonrpc.Handler

func (m resolverMap) Lookup(method string) (jsonrpc.Handler, bool) {
	handler, ok := m[method]
	return handler, ok
}

func testDispatcher() *jsonrpc.Dispatcher {
	return jsonrpc.NewDispatcher(resolverMap{
		"sum": func(_ context.Context, params json.RawMessage) (any, *errors.RpcError) {
			var nums []int64
			if err := json.Unmarshal(params, &nums); err != nil {
				return nil, errors.ErrInvalidParams
			}

			var total int64
			for _, n := range nums {
				total += n
			}

			return total, nil
		},
	})
}

func TestHTTPHandlerCall(t *testing.T) {
	handler := NewHTTPHandler(testDispatcher())

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"sum","params":[3,4],"id":1}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	if got, want := rec.Body.String(), `{"id":1,"jsonrpc":"2.0","result":7}`; got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestHTTPHandlerNotification(t *testing.T) {
	handler := NewHTTPHandler(testDispatcher())

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"sum","params":[1]}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if rec.Body.Len() != 0 {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestHTTPHandlerRejectsGet(t *testing.T) {
	handler := NewHTTPHandler(testDispatcher())

	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHTTPHandlerProtocolErrorKeeps200(t *testing.T) {
	handler := NewHTTPHandler(testDispatcher())

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if got, want := rec.Body.String(), `{"error":{"code":-32700,"message":"Parse error"},"id":null,"jsonrpc":"2.0"}`; got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}
