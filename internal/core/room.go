package core

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// Topic is a room topic with its provenance.
type Topic struct {
	Text  string
	SetBy string
	SetAt time.Time
}

// Member pairs an identity with its room modes in a snapshot.
type Member struct {
	Identity *Identity
	Modes    MemberModes
}

// Room is one channel: member set, topic, modes and masks. All fields are
// guarded by the room lock; methods take it and release it before returning,
// so callers never hold two room locks at once.
type Room struct {
	key       proto.CanonicalKey
	name      string
	createdAt time.Time

	mu      sync.Mutex
	members map[*Identity]MemberModes
	topic   *Topic

	inviteOnly      bool // +i
	moderated       bool // +m
	noExternal      bool // +n
	secret          bool // +s
	topicRestricted bool // +t
	persistent      bool // +P, room outlives zero membership

	chanKey string // +k
	limit   int    // +l, 0 means unlimited

	bans    []string
	excepts []string
	invited map[proto.CanonicalKey]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		key:       proto.Fold(name),
		name:      name,
		createdAt: time.Now(),
		members:   make(map[*Identity]MemberModes),
		invited:   make(map[proto.CanonicalKey]struct{}),
		// +n is the conventional default for freshly created channels.
		noExternal: true,
	}
}

// Key returns the canonical channel key.
func (r *Room) Key() proto.CanonicalKey { return r.key }

// Name returns the display-case channel name.
func (r *Room) Name() string { return r.name }

// CreatedAt returns the room creation time.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// Join admits the identity, checking rejection reasons in protocol order:
// ban mask, invite-only, key mismatch, member limit. The first matching
// reason wins. The room's first-ever member is granted founder privilege.
// Membership is updated on both sides before the lock is released.
func (r *Room) Join(id *Identity, key string) (MemberModes, error) {
	hostmask := id.Hostmask()
	idKey := id.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; ok {
		return MemberModes{}, ErrAlreadyMember
	}

	_, invited := r.invited[idKey]
	switch {
	case r.isBannedLocked(hostmask) && !invited:
		return MemberModes{}, ErrBanned
	case r.inviteOnly && !invited:
		return MemberModes{}, ErrInviteOnly
	case r.chanKey != "" && key != r.chanKey:
		return MemberModes{}, ErrKeyRequired
	case r.limit > 0 && len(r.members) >= r.limit:
		return MemberModes{}, ErrRoomFull
	}

	modes := MemberModes{}
	if len(r.members) == 0 {
		modes.Founder = true
		modes.Operator = true
	}
	r.members[id] = modes
	delete(r.invited, idKey)
	id.addRoom(r)
	return modes, nil
}

// Part removes the identity at its own request.
func (r *Room) Part(id *Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return ErrNotMember
	}
	r.removeLocked(id)
	return nil
}

// Remove removes the identity without a membership check (kick, quit).
func (r *Room) Remove(id *Identity) {
	r.mu.Lock()
	r.removeLocked(id)
	r.mu.Unlock()
}

func (r *Room) removeLocked(id *Identity) {
	delete(r.members, id)
	id.removeRoom(r.key)
}

// IsMember reports current membership.
func (r *Room) IsMember(id *Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[id]
	return ok
}

// ModesOf returns the member's modes at this instant. Privilege decisions
// are always made against this, never against a cached copy.
func (r *Room) ModesOf(id *Identity) (MemberModes, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	return m, ok
}

// Members snapshots the member set.
func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0, len(r.members))
	for id, modes := range r.members {
		out = append(out, Member{Identity: id, Modes: modes})
	}
	return out
}

// MemberCount returns the current member count.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Disposable reports whether the room should be destroyed: no members and
// not marked persistent.
func (r *Room) Disposable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && !r.persistent
}

// Topic returns the current topic, or nil if unset.
func (r *Room) Topic() *Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topic
}

// SetTopic replaces the topic. Privilege is the dispatcher's business.
func (r *Room) SetTopic(text, setBy string) {
	r.mu.Lock()
	r.topic = &Topic{Text: text, SetBy: setBy, SetAt: time.Now()}
	r.mu.Unlock()
}

// TopicRestricted reports whether +t gates topic changes.
func (r *Room) TopicRestricted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topicRestricted
}

// InviteOnly reports whether +i gates joins.
func (r *Room) InviteOnly() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inviteOnly
}

// Secret reports whether the room is hidden from LIST for non-members.
func (r *Room) Secret() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.secret
}

// Invite records an invitation for the named identity.
func (r *Room) Invite(key proto.CanonicalKey) {
	r.mu.Lock()
	r.invited[key] = struct{}{}
	r.mu.Unlock()
}

// CanSpeak applies the +m/+n rules: members need voice when moderated,
// non-members are shut out by +n or +m.
func (r *Room) CanSpeak(id *Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if modes, ok := r.members[id]; ok {
		return !r.moderated || CanPerform(ActionSpeak, modes.Rank())
	}
	return !r.moderated && !r.noExternal
}

func (r *Room) isBannedLocked(hostmask string) bool {
	for _, e := range r.excepts {
		if proto.MatchMask(e, hostmask) {
			return false
		}
	}
	for _, b := range r.bans {
		if proto.MatchMask(b, hostmask) {
			return true
		}
	}
	return false
}

// Bans snapshots the ban mask list.
func (r *Room) Bans() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bans...)
}

// ModeString renders the flag modes plus parameterized modes for 324
// replies. Key and limit parameters are only revealed to members.
func (r *Room) ModeString(member bool) (string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	modes := "+"
	var params []string
	if r.inviteOnly {
		modes += "i"
	}
	if r.moderated {
		modes += "m"
	}
	if r.noExternal {
		modes += "n"
	}
	if r.secret {
		modes += "s"
	}
	if r.topicRestricted {
		modes += "t"
	}
	if r.persistent {
		modes += "P"
	}
	if r.limit > 0 {
		modes += "l"
		if member {
			params = append(params, strconv.Itoa(r.limit))
		}
	}
	if r.chanKey != "" {
		modes += "k"
		if member {
			params = append(params, r.chanKey)
		}
	}
	return modes, params
}

// ModeEffect is one applied mode change, for echoing back to the room.
type ModeEffect struct {
	Add   bool
	Mode  byte
	Param string
}

// ModeError reports the operation that aborted a mode string.
type ModeError struct {
	Numeric string
	Char    byte
	Param   string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("mode %c rejected (%s)", e.Char, e.Numeric)
}

// ApplyModes evaluates a mode string as an ordered sequence of single-char
// operations. Each operation is validated independently; the first invalid
// one aborts the remaining operations, while effects already applied are
// kept and returned alongside the error. Re-applying a string never double
// applies: operations that would not change state produce no effect.
//
// Targets of o/v operations are resolved against the member set, never the
// global registry, so no registry lock is taken under the room lock.
func (r *Room) ApplyModes(modeStr string, args []string) ([]ModeEffect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var effects []ModeEffect
	add := true
	nextArg := func() (string, bool) {
		if len(args) == 0 {
			return "", false
		}
		a := args[0]
		args = args[1:]
		return a, true
	}

	for i := 0; i < len(modeStr); i++ {
		c := modeStr[i]
		switch c {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		var applied bool
		var param string
		switch c {
		case 'i':
			applied, r.inviteOnly = r.inviteOnly != add, add
		case 'm':
			applied, r.moderated = r.moderated != add, add
		case 'n':
			applied, r.noExternal = r.noExternal != add, add
		case 's':
			applied, r.secret = r.secret != add, add
		case 't':
			applied, r.topicRestricted = r.topicRestricted != add, add
		case 'P':
			applied, r.persistent = r.persistent != add, add
		case 'k':
			if add {
				key, ok := nextArg()
				if !ok {
					return effects, &ModeError{Numeric: proto.ErrNeedMoreParams, Char: c}
				}
				if r.chanKey != "" {
					return effects, &ModeError{Numeric: proto.ErrKeySet, Char: c}
				}
				r.chanKey = key
				applied, param = true, key
			} else if r.chanKey != "" {
				param = r.chanKey
				r.chanKey = ""
				applied = true
			}
		case 'l':
			if add {
				raw, ok := nextArg()
				if !ok {
					return effects, &ModeError{Numeric: proto.ErrNeedMoreParams, Char: c}
				}
				limit, err := strconv.Atoi(raw)
				if err != nil || limit <= 0 {
					// Unparseable limits are dropped, matching common
					// server behavior.
					continue
				}
				applied = r.limit != limit
				r.limit = limit
				param = raw
			} else {
				applied = r.limit > 0
				r.limit = 0
			}
		case 'b':
			mask, ok := nextArg()
			if !ok {
				return effects, &ModeError{Numeric: proto.ErrNeedMoreParams, Char: c}
			}
			applied = updateMaskList(&r.bans, mask, add)
			param = mask
		case 'e':
			mask, ok := nextArg()
			if !ok {
				return effects, &ModeError{Numeric: proto.ErrNeedMoreParams, Char: c}
			}
			applied = updateMaskList(&r.excepts, mask, add)
			param = mask
		case 'o', 'v':
			nick, ok := nextArg()
			if !ok {
				return effects, &ModeError{Numeric: proto.ErrNeedMoreParams, Char: c}
			}
			target := r.memberByNickLocked(nick)
			if target == nil {
				return effects, &ModeError{Numeric: proto.ErrUserNotInChannel, Char: c, Param: nick}
			}
			modes := r.members[target]
			if c == 'o' {
				applied = modes.Operator != add
				modes.Operator = add
			} else {
				applied = modes.Voice != add
				modes.Voice = add
			}
			r.members[target] = modes
			param = target.Nick()
		default:
			return effects, &ModeError{Numeric: proto.ErrUnknownMode, Char: c}
		}

		if applied {
			effects = append(effects, ModeEffect{Add: add, Mode: c, Param: param})
		}
	}
	return effects, nil
}

func (r *Room) memberByNickLocked(nick string) *Identity {
	key := proto.Fold(nick)
	for id := range r.members {
		if id.Key() == key {
			return id
		}
	}
	return nil
}

func updateMaskList(list *[]string, mask string, add bool) bool {
	for i, m := range *list {
		if m == mask {
			if add {
				return false
			}
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	if !add {
		return false
	}
	*list = append(*list, mask)
	return true
}
