package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// SessionState is a session's position in its lifecycle. Transitions only
// move forward; Closing is terminal.
type SessionState int

const (
	// StateConnecting is the initial state, before any registration command.
	StateConnecting SessionState = iota
	// StateRegistering means nick/user exchange or CAP negotiation is underway.
	StateRegistering
	// StateRegistered accepts the full command set.
	StateRegistered
	// StateClosing drains the outgoing queue and stops accepting input.
	StateClosing
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRegistering:
		return "registering"
	case StateRegistered:
		return "registered"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Session is the per-connection state machine. It owns the bounded outgoing
// queue; the transport write loop drains Outbound until Closed fires.
type Session struct {
	id   string
	host string // visible hostname shown in prefixes

	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	lastActivity atomic.Int64

	mu          sync.Mutex
	state       SessionState
	identity    *Identity
	closeReason string
	cleanedUp   bool

	// Registration scratch, meaningful until StateRegistered.
	nick     string
	nickKey  proto.CanonicalKey
	username string
	realname string
	password string

	caps           map[string]bool
	capNegotiating bool
}

func newSession(id, host string, queueSize int) *Session {
	s := &Session{
		id:     id,
		host:   host,
		out:    make(chan []byte, queueSize),
		closed: make(chan struct{}),
		caps:   make(map[string]bool),
	}
	s.touch()
	return s
}

// ID returns the connection identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the bound identity, or nil before registration.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Outbound is the queue of encoded lines for the transport to write.
func (s *Session) Outbound() <-chan []byte { return s.out }

// Closed fires once the session enters Closing.
func (s *Session) Closed() <-chan struct{} { return s.closed }

// CloseReason returns the reason recorded by the first Close call.
func (s *Session) CloseReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeReason
}

// Close moves the session to Closing. Idempotent; only the first reason is
// kept. No further inbound messages are processed after this.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosing
		s.closeReason = reason
		s.mu.Unlock()
		close(s.closed)
	})
}

// Enqueue appends one encoded line to the outgoing queue. The send never
// blocks: a full queue means the peer is not reading fast enough, and the
// session is closed instead of stalling the sender.
func (s *Session) Enqueue(line []byte) bool {
	if s.State() == StateClosing {
		return false
	}
	select {
	case s.out <- line:
		return true
	default:
		s.Close(ErrQueueOverflow.Error())
		return false
	}
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// IdleSince returns the time of the last inbound activity.
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// HasCap reports whether the named capability was negotiated.
func (s *Session) HasCap(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps[name]
}

// Caps returns a snapshot of the negotiated capability set.
func (s *Session) Caps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.caps))
	for c, on := range s.caps {
		if on {
			out = append(out, c)
		}
	}
	return out
}

// nickOrStar is the target for numerics sent before a nickname exists.
func (s *Session) nickOrStar() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return s.identity.Nick()
	}
	if s.nick != "" {
		return s.nick
	}
	return "*"
}
