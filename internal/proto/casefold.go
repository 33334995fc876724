package proto

import "strings"

// CanonicalKey is the case-folded form of a nickname or channel name. Two
// identifiers are the same iff their canonical keys are byte-equal. Keys are
// produced only by Fold and are never compared against raw display strings.
type CanonicalKey string

// Fold normalizes a name with rfc1459 casemapping: ASCII letters are
// lowered and "[]\~" map to "{}|^", since the former are the uppercase
// forms of the latter in the Scandinavian origins of the protocol.
func Fold(name string) CanonicalKey {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		case c == '[':
			c = '{'
		case c == ']':
			c = '}'
		case c == '\\':
			c = '|'
		case c == '~':
			c = '^'
		}
		b.WriteByte(c)
	}
	return CanonicalKey(b.String())
}

// IsChannelName reports whether name designates a channel.
func IsChannelName(name string) bool {
	return len(name) > 1 && (name[0] == '#' || name[0] == '&')
}

// IsValidNickname rejects nicknames that would break message framing or
// collide with channel and mask syntax.
func IsValidNickname(nick string) bool {
	if nick == "" || len(nick) > 32 {
		return false
	}
	if nick[0] == '#' || nick[0] == '&' || nick[0] == ':' || nick[0] == '$' || (nick[0] >= '0' && nick[0] <= '9') {
		return false
	}
	return !strings.ContainsAny(nick, " ,*?!@.")
}

// IsValidChannelName bounds channel names the same way nicknames are bounded.
func IsValidChannelName(name string) bool {
	if !IsChannelName(name) || len(name) > 64 {
		return false
	}
	return !strings.ContainsAny(name[1:], " ,\x07")
}
