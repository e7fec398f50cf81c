package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
)

func TestSystemTime(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sys := &System{clock: func() time.Time { return fixed }}

	require.Equal(t, "2025-06-01T12:00:00Z", sys.Time())
}

func TestSystemIssue(t *testing.T) {
	require.Equal(t, Tracker, NewSystem().Issue())

	sys := &System{Tracker: "https://example.com/bugs"}
	require.Equal(t, "https://example.com/bugs", sys.Issue())
}

func TestSystemRegistersUnderDottedNames(t *testing.T) {
	provider, err := registry.Service(NewSystem())
	require.NoError(t, err)

	reg := registry.New().RegisterProvider(provider)
	require.Equal(t, []string{"system.issue", "system.time"}, reg.Names())
}
