package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

// maxLineBytes caps a single payload line.
const maxLineBytes = 10 << 20

/*
LineServer runs the dispatch loop over a line-delimited byte stream: one
payload per line in, one reply per line out, blank lines ignored. It is
what serve --stdio uses, and it makes the engine reachable over pipes
and unix sockets without any HTTP in between.
*/
type LineServer struct {
	dispatcher *jsonrpc.Dispatcher
}

func NewLineServer(dispatcher *jsonrpc.Dispatcher) *LineServer {
	return &LineServer{dispatcher: dispatcher}
}

/*
Serve reads until EOF, a read error, or context cancellation. Lines are
dispatched synchronously, so replies come back in input order; entries
inside a batch line still fan out within the dispatcher. Notifications
produce no output line.
*/
func (server *LineServer) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	writer := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		reply := server.dispatcher.Dispatch(ctx, line)
		if reply == nil {
			continue
		}

		if _, err := writer.Write(reply); err != nil {
			return err
		}

		if err := writer.WriteByte('\n'); err != nil {
			return err
		}

		// flush per reply so interactive pipes see output immediately
		if err := writer.Flush(); err != nil {
			return err
		}
	}

	return scanner.Err()
}
