package core

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/metrics"
	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// CredentialVerifier checks an identity claim against a credential. The
// server consumes it for OPER; the implementation lives in the auth package.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// Options is the core configuration subset, mapped from the full server
// config by the app layer.
type Options struct {
	ServerName      string
	MOTD            []string
	ServerPassword  string // optional PASS requirement, empty disables
	QueueSize       int
	MaxRoomsPerUser int
}

func (o *Options) fillDefaults() {
	if o.ServerName == "" {
		o.ServerName = "wirechat.localhost"
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.MaxRoomsPerUser <= 0 {
		o.MaxRoomsPerUser = 32
	}
}

// State is the shared server core: identity and room registries plus the
// session table. Transports feed it decoded lines and disconnect events; it
// pushes encoded lines onto session queues.
type State struct {
	opts     Options
	log      *zerolog.Logger
	metrics  *metrics.Metrics
	verifier CredentialVerifier

	identities *Registry
	rooms      *RoomRegistry

	mu       sync.Mutex
	sessions map[string]*Session

	started time.Time
}

// NewState builds a core with its own registries. Each test constructs its
// own instance; there is no ambient global state.
func NewState(opts Options, logger *zerolog.Logger, m *metrics.Metrics, verifier CredentialVerifier) *State {
	opts.fillDefaults()
	return &State{
		opts:       opts,
		log:        logger,
		metrics:    m,
		verifier:   verifier,
		identities: NewRegistry(),
		rooms:      NewRoomRegistry(),
		sessions:   make(map[string]*Session),
		started:    time.Now(),
	}
}

// Attach creates a session for a new connection and starts its teardown
// watchdog. remoteAddr is used as the visible hostname.
func (st *State) Attach(remoteAddr string) *Session {
	host := remoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		host = "unknown"
	}

	s := newSession(uuid.NewString(), host, st.opts.QueueSize)

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	st.metrics.ConnectionsTotal.Inc()
	st.metrics.ConnectedClients.Inc()
	st.log.Debug().Str("conn_id", s.id).Str("host", host).Msg("session attached")

	// Cleanup runs from here no matter which side closed first, so fatal
	// errors raised mid-fanout (queue overflow) are handled off the
	// sender's path.
	go func() {
		<-s.Closed()
		st.teardown(s)
	}()

	return s
}

// Session resolves a session by its connection identifier.
func (st *State) Session(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// OnLine feeds one inbound line from the transport into the dispatcher.
func (st *State) OnLine(sessionID, line string) {
	s := st.Session(sessionID)
	if s == nil || s.State() == StateClosing {
		return
	}
	s.touch()
	st.metrics.LinesIn.Inc()

	m, err := proto.ParseMessage(line)
	if err != nil {
		// Empty lines are tolerated silently.
		return
	}
	st.dispatch(s, m)
}

// OnDisconnect tells the core that the transport lost the connection. The
// full cleanup cascade runs before it returns.
func (st *State) OnDisconnect(sessionID, reason string) {
	s := st.Session(sessionID)
	if s == nil {
		return
	}
	s.Close(reason)
	st.teardown(s)
}

// Uptime reports how long the core has been running.
func (st *State) Uptime() time.Duration {
	return time.Since(st.started)
}

// Identities exposes the identity registry for read-only consumers (admin API).
func (st *State) Identities() *Registry { return st.identities }

// Rooms exposes the room registry for read-only consumers (admin API).
func (st *State) Rooms() *RoomRegistry { return st.rooms }

// SessionCount returns the number of attached sessions.
func (st *State) SessionCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// ServerName returns the configured server name.
func (st *State) ServerName() string { return st.opts.ServerName }

// teardown runs the cleanup cascade exactly once per session: departure
// notifications to every room, membership removal in deterministic order,
// registry release, and session table removal.
func (st *State) teardown(s *Session) {
	s.mu.Lock()
	if s.cleanedUp {
		s.mu.Unlock()
		return
	}
	s.cleanedUp = true
	id := s.identity
	nickKey := s.nickKey
	s.mu.Unlock()

	reason := s.CloseReason()
	if reason == "" {
		reason = "connection closed"
	}

	if id != nil {
		quit := proto.NewMessage("QUIT", reason).WithPrefix(id.Prefix())
		notified := map[*Session]bool{s: true}
		// One room lock at a time, in sorted key order. Notifications are
		// enqueued before the membership record is removed.
		for _, room := range id.roomsSorted() {
			for _, member := range room.Members() {
				target := member.Identity.Session()
				if notified[target] {
					continue
				}
				notified[target] = true
				st.sendTo(target, quit)
			}
			room.Remove(id)
			if room.Disposable() {
				st.rooms.Dispose(room)
			}
		}
		st.identities.Release(id.Key(), s.id)
		st.metrics.RegisteredClients.Dec()
		st.metrics.Channels.Set(float64(st.rooms.Count()))
	} else if nickKey != "" {
		st.identities.Release(nickKey, s.id)
	}

	st.mu.Lock()
	delete(st.sessions, s.id)
	st.mu.Unlock()

	st.metrics.ConnectedClients.Dec()
	st.metrics.SessionsClosed.WithLabelValues(closeLabel(reason)).Inc()
	st.log.Debug().Str("conn_id", s.id).Str("reason", reason).Msg("session torn down")
}

func closeLabel(reason string) string {
	switch reason {
	case ErrQueueOverflow.Error():
		return "queue_overflow"
	case ErrIdleTimeout.Error():
		return "idle_timeout"
	case "connection closed":
		return "transport"
	default:
		return "quit"
	}
}
