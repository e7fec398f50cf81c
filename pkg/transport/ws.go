package transport

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"nhooyr.io/websocket"

	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

/*
WSHandler serves the dispatch loop over a websocket: every text frame
carries one payload, every owed reply goes back as one text frame, and
notifications produce no frame at all. Frames are dispatched on their own
goroutines so a slow batch cannot stall the read loop; the handler drains
them before closing the connection.
*/
type WSHandler struct {
	dispatcher *jsonrpc.Dispatcher

	// AcceptOptions is passed to the websocket handshake, nil means the
	// library defaults.
	AcceptOptions *websocket.AcceptOptions
}

func NewWSHandler(dispatcher *jsonrpc.Dispatcher) *WSHandler {
	return &WSHandler{dispatcher: dispatcher}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.AcceptOptions)
	if err != nil {
		log.Error("websocket accept", "error", err)
		return
	}

	defer conn.Close(websocket.StatusInternalError, "dispatch loop ended")

	ctx := r.Context()
	var inflight sync.WaitGroup

	for {
		kind, payload, err := conn.Read(ctx)
		if err != nil {
			break
		}

		if kind != websocket.MessageText {
			inflight.Wait()
			conn.Close(websocket.StatusUnsupportedData, "text frames only")
			return
		}

		inflight.Add(1)

		go func() {
			defer inflight.Done()

			reply := h.dispatcher.Dispatch(ctx, payload)
			if reply == nil {
				return
			}

			// nhooyr serializes concurrent writers internally
			if err := conn.Write(ctx, websocket.MessageText, reply); err != nil {
				log.Error("websocket write", "error", err)
			}
		}()
	}

	inflight.Wait()
	conn.Close(websocket.StatusNormalClosure, "")
}
