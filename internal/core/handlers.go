package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

const serverVersion = "wirechat-ircd-0.4"

var supportedCaps = []string{CapMessageTags, CapServerTime, CapEchoMessage}

func handlePass(st *State, s *Session, m proto.Message) {
	s.mu.Lock()
	registered := s.state == StateRegistered
	if !registered {
		s.password = m.Param(0)
		if s.state == StateConnecting {
			s.state = StateRegistering
		}
	}
	s.mu.Unlock()

	if registered {
		st.sendNumeric(s, proto.ErrAlreadyRegistred, "You may not reregister")
	}
}

func handleNick(st *State, s *Session, m proto.Message) {
	nick := m.Param(0)
	if nick == "" {
		st.sendNumeric(s, proto.ErrNoNicknameGiven, "No nickname given")
		return
	}
	if !proto.IsValidNickname(nick) {
		st.sendNumeric(s, proto.ErrErroneousNick, nick, "Erroneous nickname")
		return
	}

	if s.State() == StateRegistered {
		renameRegistered(st, s, nick)
		return
	}

	s.mu.Lock()
	oldKey := s.nickKey
	s.mu.Unlock()

	var key proto.CanonicalKey
	var err error
	if oldKey == "" {
		key, err = st.identities.Claim(nick, s.id)
	} else {
		key, err = st.identities.Rename(oldKey, nick, s.id)
		if err == ErrSameName {
			key, err = oldKey, nil
		}
	}
	if err != nil {
		st.sendNumeric(s, proto.ErrNicknameInUse, nick, "Nickname is already in use")
		return
	}

	s.mu.Lock()
	s.nick = nick
	s.nickKey = key
	if s.state == StateConnecting {
		s.state = StateRegistering
	}
	s.mu.Unlock()

	st.tryRegister(s)
}

// renameRegistered handles a nick change after registration: an atomic
// registry move followed by a NICK announcement to everyone sharing a room
// with the identity.
func renameRegistered(st *State, s *Session, nick string) {
	id := s.Identity()
	oldPrefix := id.Prefix()

	_, err := st.identities.Rename(id.Key(), nick, s.id)
	switch err {
	case nil:
	case ErrSameName:
		if id.Nick() == nick {
			return // nothing changed, not even display case
		}
	default:
		st.sendNumeric(s, proto.ErrNicknameInUse, nick, "Nickname is already in use")
		return
	}

	id.setNick(nick)
	s.mu.Lock()
	s.nick = nick
	s.nickKey = id.Key()
	s.mu.Unlock()

	change := proto.NewMessage("NICK", nick).WithPrefix(oldPrefix)
	notified := map[*Session]bool{}
	for _, room := range id.roomsSorted() {
		for _, member := range room.Members() {
			target := member.Identity.Session()
			if notified[target] || target == s {
				continue
			}
			notified[target] = true
			st.sendTo(target, change)
		}
	}
	st.sendTo(s, change)
}

func handleUser(st *State, s *Session, m proto.Message) {
	s.mu.Lock()
	registered := s.state == StateRegistered
	if !registered {
		s.username = m.Param(0)
		s.realname = m.Param(3)
		if s.state == StateConnecting {
			s.state = StateRegistering
		}
	}
	s.mu.Unlock()

	if registered {
		st.sendNumeric(s, proto.ErrAlreadyRegistred, "You may not reregister")
		return
	}
	st.tryRegister(s)
}

func handleCap(st *State, s *Session, m proto.Message) {
	sub := strings.ToUpper(m.Param(0))
	target := s.nickOrStar()

	switch sub {
	case "LS":
		s.mu.Lock()
		if s.state != StateRegistered {
			s.capNegotiating = true
			if s.state == StateConnecting {
				s.state = StateRegistering
			}
		}
		s.mu.Unlock()
		st.sendTo(s, proto.NewMessage("CAP", target, "LS", strings.Join(supportedCaps, " ")).
			WithPrefix(st.serverPrefix()))

	case "LIST":
		st.sendTo(s, proto.NewMessage("CAP", target, "LIST", strings.Join(s.Caps(), " ")).
			WithPrefix(st.serverPrefix()))

	case "REQ":
		requested := strings.Fields(m.Param(1))
		ok := true
		for _, c := range requested {
			if !capSupported(strings.TrimPrefix(c, "-")) {
				ok = false
				break
			}
		}
		verb := "NAK"
		if ok {
			verb = "ACK"
			s.mu.Lock()
			for _, c := range requested {
				if name, removed := strings.CutPrefix(c, "-"); removed {
					delete(s.caps, name)
				} else {
					s.caps[c] = true
				}
			}
			if s.state != StateRegistered {
				s.capNegotiating = true
			}
			s.mu.Unlock()
		}
		st.sendTo(s, proto.NewMessage("CAP", target, verb, strings.Join(requested, " ")).
			WithPrefix(st.serverPrefix()))

	case "END":
		s.mu.Lock()
		s.capNegotiating = false
		s.mu.Unlock()
		st.tryRegister(s)

	default:
		st.sendNumeric(s, proto.ErrInvalidCapCmd, sub, "Invalid CAP command")
	}
}

func capSupported(name string) bool {
	for _, c := range supportedCaps {
		if c == name {
			return true
		}
	}
	return false
}

func handlePing(st *State, s *Session, m proto.Message) {
	st.sendTo(s, proto.NewMessage("PONG", st.opts.ServerName, m.Param(0)).
		WithPrefix(st.serverPrefix()))
}

func handlePong(_ *State, _ *Session, _ proto.Message) {
	// Activity already recorded by OnLine; nothing else to do.
}

func handleQuit(st *State, s *Session, m proto.Message) {
	reason := m.Param(0)
	if reason == "" {
		reason = "Client Quit"
	}
	st.sendTo(s, proto.NewMessage("ERROR", "Closing link: "+reason).
		WithPrefix(st.serverPrefix()))
	s.Close(reason)
	st.teardown(s)
}

// tryRegister completes registration once a unique nickname and user info
// are both present and CAP negotiation, if started, has ended. It fires at
// most once per session.
func (st *State) tryRegister(s *Session) {
	s.mu.Lock()
	ready := s.state == StateRegistering &&
		s.nickKey != "" && s.username != "" && !s.capNegotiating
	if !ready {
		s.mu.Unlock()
		return
	}

	if st.opts.ServerPassword != "" && s.password != st.opts.ServerPassword {
		s.mu.Unlock()
		st.sendNumeric(s, proto.ErrPasswdMismatch, "Password incorrect")
		st.sendTo(s, proto.NewMessage("ERROR", "Closing link: bad password").
			WithPrefix(st.serverPrefix()))
		s.Close("bad password")
		st.teardown(s)
		return
	}

	id := newIdentity(s, s.nick, s.username, s.realname, s.host)
	s.identity = id
	s.state = StateRegistered
	key := s.nickKey
	s.mu.Unlock()

	st.identities.Bind(key, id)
	st.metrics.RegisteredClients.Inc()
	st.log.Info().Str("conn_id", s.id).Str("nick", id.Nick()).Msg("client registered")

	st.welcome(s, id)
}

func (st *State) welcome(s *Session, id *Identity) {
	st.sendNumeric(s, proto.RplWelcome,
		fmt.Sprintf("Welcome to the WireChat IRC Network %s", id.Hostmask()))
	st.sendNumeric(s, proto.RplYourHost,
		fmt.Sprintf("Your host is %s, running version %s", st.opts.ServerName, serverVersion))
	st.sendNumeric(s, proto.RplCreated,
		"This server was created "+st.started.UTC().Format("Mon Jan 2 2006 at 15:04:05 MST"))
	st.sendNumeric(s, proto.RplMyInfo, st.opts.ServerName, serverVersion, "io", "beiklmnopstvP")
	st.sendNumeric(s, proto.RplISupport,
		"CASEMAPPING=rfc1459", "CHANTYPES=#&", "PREFIX=(qov)~@+",
		"CHANMODES=be,k,l,imnstP", "NICKLEN=32", "CHANNELLEN=64",
		"are supported by this server")

	st.lusers(s)
	st.motd(s)
}

func (st *State) lusers(s *Session) {
	registered := st.identities.Count()
	unknown := st.SessionCount() - registered
	if unknown < 0 {
		unknown = 0
	}
	operators := 0
	for _, id := range st.identities.All() {
		if id.Operator() {
			operators++
		}
	}

	st.sendNumeric(s, proto.RplLUserClient,
		fmt.Sprintf("There are %d users and 0 services on 1 servers", registered))
	st.sendNumeric(s, proto.RplLUserOp, strconv.Itoa(operators), "operator(s) online")
	st.sendNumeric(s, proto.RplLUserUnknown, strconv.Itoa(unknown), "unknown connection(s)")
	st.sendNumeric(s, proto.RplLUserChannels, strconv.Itoa(st.rooms.Count()), "channels formed")
	st.sendNumeric(s, proto.RplLUserMe,
		fmt.Sprintf("I have %d clients and 0 servers", st.SessionCount()))
}

func (st *State) motd(s *Session) {
	if len(st.opts.MOTD) == 0 {
		st.sendNumeric(s, proto.ErrNoMOTD, "MOTD File is missing")
		return
	}
	st.sendNumeric(s, proto.RplMOTDStart, fmt.Sprintf("- %s Message of the day -", st.opts.ServerName))
	for _, line := range st.opts.MOTD {
		st.sendNumeric(s, proto.RplMOTD, "- "+line)
	}
	st.sendNumeric(s, proto.RplEndOfMOTD, "End of MOTD command")
}

func handleMotd(st *State, s *Session, _ proto.Message) {
	st.motd(s)
}

func handleLusers(st *State, s *Session, _ proto.Message) {
	st.lusers(s)
}

func handleAway(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	if msg := m.Param(0); msg != "" {
		id.setAway(msg)
		st.sendNumeric(s, proto.RplNowAway, "You have been marked as being away")
	} else {
		id.setAway("")
		st.sendNumeric(s, proto.RplUnAway, "You are no longer marked as being away")
	}
}

func handleOper(st *State, s *Session, m proto.Message) {
	name, password := m.Param(0), m.Param(1)
	if st.verifier == nil || !st.verifier.Verify(name, password) {
		st.sendNumeric(s, proto.ErrPasswdMismatch, "Password incorrect")
		return
	}

	id := s.Identity()
	id.setOperator(true)
	id.setAccount(name)
	st.sendNumeric(s, proto.RplYoureOper, "You are now an IRC operator")
	st.sendTo(s, proto.NewMessage("MODE", id.Nick(), "+o").WithPrefix(st.serverPrefix()))
	st.log.Info().Str("nick", id.Nick()).Str("account", name).Msg("operator privileges granted")
}
