package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLineServerRoundtrip(t *testing.T) {
	server := NewLineServer(testDispatcher())

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"sum","params":[1,2],"id":1}`,
		``,
		`{"jsonrpc":"2.0","method":"sum","params":[9]}`,
		`{"jsonrpc":"2.0","method":"sum","params":[3,4],"id":2}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := server.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("serve: %v", err)
	}

	want := `{"id":1,"jsonrpc":"2.0","result":3}` + "\n" +
		`{"id":2,"jsonrpc":"2.0","result":7}` + "\n"

	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestLineServerContextCancel(t *testing.T) {
	server := NewLineServer(testDispatcher())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := server.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","method":"sum","id":1}`+"\n"), &out)

	if err == nil {
		t.Fatal("expected context error")
	}

	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}
