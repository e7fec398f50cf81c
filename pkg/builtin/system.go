package builtin

import (
	"time"
)

// Tracker is where System.Issue points unless overridden.
const Tracker = "https://github.com/theapemachine/jsonrpc-go/issues"

/*
System is the introspection method pack. Run it through registry.Service
to expose system.time and system.issue.
*/
type System struct {
	Tracker string

	clock func() time.Time
}

func NewSystem() *System {
	return &System{Tracker: Tracker}
}

// Time returns the current UTC time in RFC 3339 form.
func (s *System) Time() string {
	now := time.Now
	if s.clock != nil {
		now = s.clock
	}

	return now().UTC().Format(time.RFC3339)
}

// Issue returns the issue-tracker URL for this server.
func (s *System) Issue() string {
	return s.Tracker
}
