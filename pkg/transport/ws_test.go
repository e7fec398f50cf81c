package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// newTestServer wraps httptest.NewServer so environments without socket
// permissions skip instead of panicking.
func newTestServer(h http.Handler) (*httptest.Server, error) {
	var srv *httptest.Server
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("listener not permitted: %v", r)
			}
		}()
		srv = httptest.NewServer(h)
	}()

	return srv, err
}

func TestWSRoundtrip(t *testing.T) {
	srv, errTS := newTestServer(NewWSHandler(testDispatcher()))
	if errTS != nil {
		t.Skip("network disabled; skipping websocket test")
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","method":"sum","params":[3,4],"id":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, reply, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(reply), `{"id":1,"jsonrpc":"2.0","result":7}`; got != want {
		t.Fatalf("reply = %s, want %s", got, want)
	}
}

func TestWSNotificationProducesNoFrame(t *testing.T) {
	srv, errTS := newTestServer(NewWSHandler(testDispatcher()))
	if errTS != nil {
		t.Skip("network disabled; skipping websocket test")
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// notification first, then a call: the first frame back must belong
	// to the call, proving the notification stayed silent
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","method":"sum","params":[9]}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","method":"sum","params":[1,1],"id":2}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, reply, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(reply), `{"id":2,"jsonrpc":"2.0","result":2}`; got != want {
		t.Fatalf("reply = %s, want %s", got, want)
	}
}
