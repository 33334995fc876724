package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

func handlePrivmsg(st *State, s *Session, m proto.Message) {
	deliver(st, s, m, true)
}

// NOTICE is PRIVMSG without the error replies: a failed delivery is silent,
// so automated responders can never loop.
func handleNotice(st *State, s *Session, m proto.Message) {
	deliver(st, s, m, false)
}

func deliver(st *State, s *Session, m proto.Message, replyErrors bool) {
	target := m.Param(0)
	if target == "" {
		if replyErrors {
			st.sendNumeric(s, proto.ErrNoRecipient, "No recipient given ("+m.Command+")")
		}
		return
	}
	if len(m.Params) < 2 || m.Param(1) == "" {
		if replyErrors {
			st.sendNumeric(s, proto.ErrNoTextToSend, "No text to send")
		}
		return
	}

	id := s.Identity()
	out := proto.NewMessage(m.Command, target, m.Param(1)).
		WithPrefix(id.Prefix()).
		WithTag("msgid", uuid.NewString()).
		WithTag("time", time.Now().UTC().Format(serverTimeFormat))

	if proto.IsChannelName(target) {
		room := st.rooms.Get(target)
		if room == nil {
			if replyErrors {
				st.sendNumeric(s, proto.ErrNoSuchChannel, target, "No such channel")
			}
			return
		}
		if !room.CanSpeak(id) {
			if replyErrors {
				st.sendNumeric(s, proto.ErrCannotSendToChan, room.Name(), "Cannot send to channel")
			}
			return
		}
		st.broadcastRoom(room, out, s)
		if s.HasCap(CapEchoMessage) {
			st.sendTo(s, out)
		}
		return
	}

	peer := st.identities.Lookup(target)
	if peer == nil {
		if replyErrors {
			st.sendNumeric(s, proto.ErrNoSuchNick, target, "No such nick/channel")
		}
		return
	}
	st.sendTo(peer.Session(), out)
	st.metrics.MessagesRouted.Inc()
	if s.HasCap(CapEchoMessage) {
		st.sendTo(s, out)
	}
	if replyErrors {
		if away := peer.Away(); away != "" {
			st.sendNumeric(s, proto.RplAway, peer.Nick(), away)
		}
	}
}
