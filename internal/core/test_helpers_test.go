package core

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-ircd/internal/metrics"
)

func newTestState(opts Options) *State {
	logger := zerolog.Nop()
	if opts.ServerName == "" {
		opts.ServerName = "irc.test"
	}
	return NewState(opts, &logger, metrics.New(), nil)
}

// register drives a session through the NICK/USER exchange and discards the
// welcome burst.
func register(t *testing.T, st *State, s *Session, nick string) *Identity {
	t.Helper()
	st.OnLine(s.ID(), "NICK "+nick)
	st.OnLine(s.ID(), "USER "+strings.ToLower(nick)+" 0 * :"+nick)
	require.Equal(t, StateRegistered, s.State(), "registration did not complete")
	drain(s)
	id := s.Identity()
	require.NotNil(t, id)
	return id
}

// drain empties the session's outgoing queue and returns the lines without
// their CRLF terminators.
func drain(s *Session) []string {
	var out []string
	for {
		select {
		case b := <-s.Outbound():
			out = append(out, strings.TrimRight(string(b), "\r\n"))
		default:
			return out
		}
	}
}

// hasLine reports whether any drained line contains the substring.
func hasLine(lines []string, substr string) bool {
	return lineIndex(lines, substr) >= 0
}

func lineIndex(lines []string, substr string) int {
	for i, l := range lines {
		if strings.Contains(l, substr) {
			return i
		}
	}
	return -1
}
