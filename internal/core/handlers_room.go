package core

import (
	"strconv"
	"strings"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

func handleJoin(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	names := strings.Split(m.Param(0), ",")
	keys := strings.Split(m.Param(1), ",")

	for i, name := range names {
		if name == "" {
			continue
		}
		if !proto.IsValidChannelName(name) {
			st.sendNumeric(s, proto.ErrNoSuchChannel, name, "No such channel")
			continue
		}
		if id.roomCount() >= st.opts.MaxRoomsPerUser {
			st.sendNumeric(s, proto.ErrTooManyChannels, name, "You have joined too many channels")
			continue
		}

		var key string
		if i < len(keys) {
			key = keys[i]
		}

		room := st.rooms.GetOrCreate(name)
		if _, err := room.Join(id, key); err != nil {
			if err != ErrAlreadyMember {
				st.sendNumeric(s, joinNumeric(err), room.Name(), joinText(err))
			}
			if room.Disposable() {
				st.rooms.Dispose(room)
			}
			continue
		}

		st.metrics.Channels.Set(float64(st.rooms.Count()))

		// The room hears about the join before the joiner sees any of its
		// own replies.
		join := proto.NewMessage("JOIN", room.Name()).WithPrefix(id.Prefix())
		st.broadcastRoom(room, join, s)
		st.sendTo(s, join)

		if topic := room.Topic(); topic != nil {
			st.sendNumeric(s, proto.RplTopic, room.Name(), topic.Text)
			st.sendNumeric(s, proto.RplTopicWhoTime, room.Name(), topic.SetBy,
				strconv.FormatInt(topic.SetAt.Unix(), 10))
		}
		st.names(s, room)
	}
}

func joinText(err error) string {
	switch err {
	case ErrBanned:
		return "Cannot join channel (+b)"
	case ErrInviteOnly:
		return "Cannot join channel (+i)"
	case ErrKeyRequired:
		return "Cannot join channel (+k)"
	case ErrRoomFull:
		return "Cannot join channel (+l)"
	default:
		return "Cannot join channel"
	}
}

func handlePart(st *State, s *Session, m proto.Message) {
	id := s.Identity()

	for _, name := range strings.Split(m.Param(0), ",") {
		if name == "" {
			continue
		}
		room := st.rooms.Get(name)
		if room == nil {
			st.sendNumeric(s, proto.ErrNoSuchChannel, name, "No such channel")
			continue
		}
		if err := room.Part(id); err != nil {
			st.sendNumeric(s, proto.ErrNotOnChannel, room.Name(), "You're not on that channel")
			continue
		}

		part := proto.NewMessage("PART", room.Name(), m.Param(1)).WithPrefix(id.Prefix())
		st.broadcastRoom(room, part, s)
		st.sendTo(s, part)

		if room.Disposable() {
			st.rooms.Dispose(room)
		}
		st.metrics.Channels.Set(float64(st.rooms.Count()))
	}
}

func handleTopic(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	room := st.rooms.Get(m.Param(0))
	if room == nil {
		st.sendNumeric(s, proto.ErrNoSuchChannel, m.Param(0), "No such channel")
		return
	}

	modes, member := room.ModesOf(id)
	if !member {
		st.sendNumeric(s, proto.ErrNotOnChannel, room.Name(), "You're not on that channel")
		return
	}

	if len(m.Params) < 2 {
		if topic := room.Topic(); topic != nil {
			st.sendNumeric(s, proto.RplTopic, room.Name(), topic.Text)
			st.sendNumeric(s, proto.RplTopicWhoTime, room.Name(), topic.SetBy,
				strconv.FormatInt(topic.SetAt.Unix(), 10))
		} else {
			st.sendNumeric(s, proto.RplNoTopic, room.Name(), "No topic is set")
		}
		return
	}

	if room.TopicRestricted() && !CanPerform(ActionSetTopic, modes.Rank()) {
		st.sendNumeric(s, proto.ErrChanOPrivsNeeded, room.Name(), "You're not channel operator")
		return
	}

	room.SetTopic(m.Param(1), id.Nick())
	change := proto.NewMessage("TOPIC", room.Name(), m.Param(1)).WithPrefix(id.Prefix())
	st.broadcastRoom(room, change, s)
	st.sendTo(s, change)
}

func handleNames(st *State, s *Session, m proto.Message) {
	room := st.rooms.Get(m.Param(0))
	if room == nil || (room.Secret() && !room.IsMember(s.Identity())) {
		st.sendNumeric(s, proto.RplEndOfNames, m.Param(0), "End of NAMES list")
		return
	}
	st.names(s, room)
}

// names sends the 353/366 pair for one room.
func (st *State) names(s *Session, room *Room) {
	symbol := "="
	if room.Secret() {
		symbol = "@"
	}

	var nicks []string
	for _, member := range room.Members() {
		nick := member.Identity.Nick()
		if c := member.Modes.Symbol(); c != 0 {
			nick = string(c) + nick
		}
		nicks = append(nicks, nick)
	}

	st.sendNumeric(s, proto.RplNamReply, symbol, room.Name(), strings.Join(nicks, " "))
	st.sendNumeric(s, proto.RplEndOfNames, room.Name(), "End of NAMES list")
}

func handleList(st *State, s *Session, _ proto.Message) {
	id := s.Identity()
	for _, room := range st.rooms.All() {
		if room.Secret() && !room.IsMember(id) {
			continue
		}
		topicText := ""
		if topic := room.Topic(); topic != nil {
			topicText = topic.Text
		}
		st.sendNumeric(s, proto.RplList, room.Name(),
			strconv.Itoa(room.MemberCount()), topicText)
	}
	st.sendNumeric(s, proto.RplListEnd, "End of LIST")
}

func handleMode(st *State, s *Session, m proto.Message) {
	if proto.IsChannelName(m.Param(0)) {
		channelMode(st, s, m)
		return
	}
	userMode(st, s, m)
}

func channelMode(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	room := st.rooms.Get(m.Param(0))
	if room == nil {
		st.sendNumeric(s, proto.ErrNoSuchChannel, m.Param(0), "No such channel")
		return
	}

	modeStr := m.Param(1)
	if modeStr == "" {
		modes, params := room.ModeString(room.IsMember(id))
		st.sendNumeric(s, proto.RplChannelModeIs,
			append([]string{room.Name(), modes}, params...)...)
		return
	}

	// A bare ban query is readable by any member without operator rank.
	if (modeStr == "b" || modeStr == "+b") && len(m.Params) == 2 {
		for _, mask := range room.Bans() {
			st.sendNumeric(s, proto.RplBanList, room.Name(), mask)
		}
		st.sendNumeric(s, proto.RplEndOfBanList, room.Name(), "End of channel ban list")
		return
	}

	memberModes, member := room.ModesOf(id)
	if !member {
		st.sendNumeric(s, proto.ErrNotOnChannel, room.Name(), "You're not on that channel")
		return
	}
	if !CanPerform(ActionChangeMode, memberModes.Rank()) {
		st.sendNumeric(s, proto.ErrChanOPrivsNeeded, room.Name(), "You're not channel operator")
		return
	}

	effects, err := room.ApplyModes(modeStr, m.Params[2:])
	if len(effects) > 0 {
		modes, params := renderEffects(effects)
		change := proto.NewMessage("MODE", append([]string{room.Name(), modes}, params...)...).
			WithPrefix(id.Prefix())
		st.broadcastRoom(room, change, s)
		st.sendTo(s, change)
	}
	if err != nil {
		sendModeError(st, s, room, err)
	}
}

func sendModeError(st *State, s *Session, room *Room, err error) {
	me, ok := err.(*ModeError)
	if !ok {
		return
	}
	switch me.Numeric {
	case proto.ErrNeedMoreParams:
		st.sendNumeric(s, proto.ErrNeedMoreParams, "MODE", "Not enough parameters")
	case proto.ErrUnknownMode:
		st.sendNumeric(s, proto.ErrUnknownMode, string(me.Char), "is unknown mode char to me")
	case proto.ErrUserNotInChannel:
		st.sendNumeric(s, proto.ErrUserNotInChannel, me.Param, room.Name(), "They aren't on that channel")
	case proto.ErrKeySet:
		st.sendNumeric(s, proto.ErrKeySet, room.Name(), "Channel key already set")
	}
}

// renderEffects reassembles applied effects into one mode string plus its
// parameters, grouping consecutive directions.
func renderEffects(effects []ModeEffect) (string, []string) {
	var b strings.Builder
	var params []string
	lastAdd := false
	first := true
	for _, e := range effects {
		if first || e.Add != lastAdd {
			if e.Add {
				b.WriteByte('+')
			} else {
				b.WriteByte('-')
			}
			lastAdd = e.Add
			first = false
		}
		b.WriteByte(e.Mode)
		if e.Param != "" {
			params = append(params, e.Param)
		}
	}
	return b.String(), params
}

func userMode(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	if proto.Fold(m.Param(0)) != id.Key() {
		st.sendNumeric(s, proto.ErrUsersDontMatch, "Cannot change mode for other users")
		return
	}

	modeStr := m.Param(1)
	if modeStr == "" {
		st.sendNumeric(s, proto.RplUModeIs, id.UserModes())
		return
	}

	add := true
	for i := 0; i < len(modeStr); i++ {
		switch c := modeStr[i]; c {
		case '+':
			add = true
		case '-':
			add = false
		case 'i':
			id.setInvisible(add)
		case 'o':
			// Operator status is only granted through OPER; dropping it
			// is always allowed.
			if !add {
				id.setOperator(false)
			}
		default:
			st.sendNumeric(s, proto.ErrUModeUnknownFlag, "Unknown MODE flag")
			return
		}
	}
	st.sendTo(s, proto.NewMessage("MODE", id.Nick(), modeStr).WithPrefix(id.Prefix()))
}

func handleKick(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	room := st.rooms.Get(m.Param(0))
	if room == nil {
		st.sendNumeric(s, proto.ErrNoSuchChannel, m.Param(0), "No such channel")
		return
	}

	modes, member := room.ModesOf(id)
	if !member {
		st.sendNumeric(s, proto.ErrNotOnChannel, room.Name(), "You're not on that channel")
		return
	}
	if !CanPerform(ActionKick, modes.Rank()) {
		st.sendNumeric(s, proto.ErrChanOPrivsNeeded, room.Name(), "You're not channel operator")
		return
	}

	target := st.identities.Lookup(m.Param(1))
	if target == nil || !room.IsMember(target) {
		st.sendNumeric(s, proto.ErrUserNotInChannel, m.Param(1), room.Name(), "They aren't on that channel")
		return
	}

	reason := m.Param(2)
	if reason == "" {
		reason = id.Nick()
	}

	// Everyone, the target included, hears the kick before the actor does;
	// removal happens after the announcement is queued.
	kick := proto.NewMessage("KICK", room.Name(), target.Nick(), reason).WithPrefix(id.Prefix())
	st.broadcastRoom(room, kick, s)
	st.sendTo(s, kick)

	room.Remove(target)
	if room.Disposable() {
		st.rooms.Dispose(room)
	}
	st.metrics.Channels.Set(float64(st.rooms.Count()))
}

func handleInvite(st *State, s *Session, m proto.Message) {
	id := s.Identity()
	room := st.rooms.Get(m.Param(1))
	if room == nil {
		st.sendNumeric(s, proto.ErrNoSuchChannel, m.Param(1), "No such channel")
		return
	}

	modes, member := room.ModesOf(id)
	if !member {
		st.sendNumeric(s, proto.ErrNotOnChannel, room.Name(), "You're not on that channel")
		return
	}
	if room.InviteOnly() && !CanPerform(ActionInvite, modes.Rank()) {
		st.sendNumeric(s, proto.ErrChanOPrivsNeeded, room.Name(), "You're not channel operator")
		return
	}

	target := st.identities.Lookup(m.Param(0))
	if target == nil {
		st.sendNumeric(s, proto.ErrNoSuchNick, m.Param(0), "No such nick/channel")
		return
	}
	if room.IsMember(target) {
		st.sendNumeric(s, proto.ErrUserOnChannel, target.Nick(), room.Name(), "is already on channel")
		return
	}

	room.Invite(target.Key())
	st.sendNumeric(s, proto.RplInviting, target.Nick(), room.Name())
	st.sendTo(target.Session(),
		proto.NewMessage("INVITE", target.Nick(), room.Name()).WithPrefix(id.Prefix()))
}
