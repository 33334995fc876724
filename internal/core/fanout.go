package core

import (
	"time"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// Capability names the server supports.
const (
	CapMessageTags = "message-tags"
	CapServerTime  = "server-time"
	CapEchoMessage = "echo-message"
)

// serverTimeFormat is the timestamp layout for the server-time tag.
const serverTimeFormat = "2006-01-02T15:04:05.000Z"

// sendTo encodes the message for one recipient and enqueues it. Tags are
// filtered per the recipient's negotiated capabilities, so the same logical
// message may serialize differently per target. Enqueue never blocks; a full
// queue closes the recipient (slow consumer), never the sender.
func (st *State) sendTo(s *Session, m proto.Message) {
	if s == nil || s.State() == StateClosing {
		return
	}

	switch {
	case s.HasCap(CapMessageTags):
		// full tag set
	case s.HasCap(CapServerTime):
		if t, ok := m.Tags["time"]; ok {
			m.Tags = map[string]string{"time": t}
		} else {
			m.Tags = nil
		}
	default:
		m.Tags = nil
	}
	if s.HasCap(CapServerTime) {
		if _, ok := m.Tags["time"]; !ok {
			m = m.WithTag("time", time.Now().UTC().Format(serverTimeFormat))
		}
	}

	if s.Enqueue(m.Bytes()) {
		st.metrics.LinesOut.Inc()
	}
}

// sendNumeric sends a numeric reply to the session, prefixed by the server
// name with the client's nick (or *) as the first parameter, per the
// numeric-reply contract.
func (st *State) sendNumeric(s *Session, numeric string, params ...string) {
	all := append([]string{s.nickOrStar()}, params...)
	st.sendTo(s, proto.NewMessage(numeric, all...).WithPrefix(st.serverPrefix()))
}

func (st *State) serverPrefix() proto.Prefix {
	return proto.Prefix{Host: st.opts.ServerName}
}

// broadcastRoom delivers to every member of the room except the excluded
// session. The member set is resolved at this instant; sessions that join
// afterwards see nothing, sessions that left see nothing.
func (st *State) broadcastRoom(r *Room, m proto.Message, except *Session) {
	for _, member := range r.Members() {
		target := member.Identity.Session()
		if target == except {
			continue
		}
		st.sendTo(target, m)
	}
	st.metrics.MessagesRouted.Inc()
}

// broadcastAll delivers to every registered identity (server-wide notice).
func (st *State) broadcastAll(m proto.Message, except *Session) {
	for _, id := range st.identities.All() {
		target := id.Session()
		if target == except {
			continue
		}
		st.sendTo(target, m)
	}
	st.metrics.MessagesRouted.Inc()
}
