package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

/*
HTTPHandler adapts a Dispatcher to net/http: one POST per payload, raw
bytes in, raw bytes out. Protocol handling lives entirely in the
dispatcher; this layer only does HTTP framing, which is why a protocol
error still travels with status 200.
*/
type HTTPHandler struct {
	dispatcher *jsonrpc.Dispatcher
}

func NewHTTPHandler(dispatcher *jsonrpc.Dispatcher) *HTTPHandler {
	return &HTTPHandler{dispatcher: dispatcher}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST supported", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, errors.ErrParseError)
		return
	}

	reply := h.dispatcher.Dispatch(r.Context(), body)

	// Notifications only – nothing is owed back.
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(reply); err != nil {
		log.Error("write reply", "error", err)
	}
}

func respondError(w http.ResponseWriter, rpcErr *errors.RpcError) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(jsonrpc.NullID(), rpcErr)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
