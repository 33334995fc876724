package core

import (
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// Identity is a registered client as the rest of the server sees it. An
// identity is created when its session completes registration and dies with
// the session. The owning session never changes.
type Identity struct {
	session *Session

	mu       sync.Mutex
	nick     string // display case
	key      proto.CanonicalKey
	username string
	realname string
	host     string
	account   string // authenticated-as, empty while anonymous
	operator  bool   // server operator (+o umode)
	invisible bool   // +i umode
	away      string // away message, empty when present

	registeredAt time.Time

	// rooms is the identity side of the symmetric membership invariant.
	// Guarded by mu, which is always taken after a room lock, never before.
	rooms map[proto.CanonicalKey]*Room
}

func newIdentity(s *Session, nick, username, realname, host string) *Identity {
	return &Identity{
		session:      s,
		nick:         nick,
		key:          proto.Fold(nick),
		username:     username,
		realname:     realname,
		host:         host,
		registeredAt: time.Now(),
		rooms:        make(map[proto.CanonicalKey]*Room),
	}
}

// Session returns the owning session.
func (id *Identity) Session() *Session { return id.session }

// Nick returns the display-case nickname.
func (id *Identity) Nick() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.nick
}

// Key returns the canonical nickname key.
func (id *Identity) Key() proto.CanonicalKey {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.key
}

func (id *Identity) setNick(nick string) {
	id.mu.Lock()
	id.nick = nick
	id.key = proto.Fold(nick)
	id.mu.Unlock()
}

// Prefix returns the nick!user@host source prefix for messages this identity
// originates.
func (id *Identity) Prefix() proto.Prefix {
	id.mu.Lock()
	defer id.mu.Unlock()
	return proto.Prefix{Nick: id.nick, User: id.username, Host: id.host}
}

// Hostmask returns nick!user@host as a single string for mask matching.
func (id *Identity) Hostmask() string {
	return id.Prefix().String()
}

// Operator reports whether the identity holds server-operator status.
func (id *Identity) Operator() bool {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.operator
}

func (id *Identity) setOperator(v bool) {
	id.mu.Lock()
	id.operator = v
	id.mu.Unlock()
}

func (id *Identity) setInvisible(v bool) {
	id.mu.Lock()
	id.invisible = v
	id.mu.Unlock()
}

// UserModes renders the identity's user modes as a mode string.
func (id *Identity) UserModes() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	modes := "+"
	if id.invisible {
		modes += "i"
	}
	if id.operator {
		modes += "o"
	}
	return modes
}

// Away returns the away message, or "" when the identity is present.
func (id *Identity) Away() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.away
}

func (id *Identity) setAway(msg string) {
	id.mu.Lock()
	id.away = msg
	id.mu.Unlock()
}

// Account returns the name this identity authenticated as, or "".
func (id *Identity) Account() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.account
}

func (id *Identity) setAccount(name string) {
	id.mu.Lock()
	id.account = name
	id.mu.Unlock()
}

func (id *Identity) addRoom(r *Room) {
	id.mu.Lock()
	id.rooms[r.Key()] = r
	id.mu.Unlock()
}

func (id *Identity) removeRoom(key proto.CanonicalKey) {
	id.mu.Lock()
	delete(id.rooms, key)
	id.mu.Unlock()
}

func (id *Identity) inRoom(key proto.CanonicalKey) bool {
	id.mu.Lock()
	defer id.mu.Unlock()
	_, ok := id.rooms[key]
	return ok
}

func (id *Identity) roomCount() int {
	id.mu.Lock()
	defer id.mu.Unlock()
	return len(id.rooms)
}

// roomsSorted snapshots the joined rooms in deterministic key order. Cleanup
// walks this order, one room lock at a time, so that two concurrent quits
// can never deadlock on each other's rooms.
func (id *Identity) roomsSorted() []*Room {
	id.mu.Lock()
	keys := make([]string, 0, len(id.rooms))
	for k := range id.rooms {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	rooms := make([]*Room, 0, len(keys))
	for _, k := range keys {
		rooms = append(rooms, id.rooms[proto.CanonicalKey(k)])
	}
	id.mu.Unlock()
	return rooms
}
