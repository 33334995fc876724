package proto

import (
	"errors"
	"strings"
)

// MaxLineLen is the protocol limit for one line, excluding tags and CRLF.
const MaxLineLen = 512

// MaxTagsLen is the additional budget allowed for the tags section.
const MaxTagsLen = 4096

// ErrEmptyMessage is returned when a line contains no command.
var ErrEmptyMessage = errors.New("empty message")

// Prefix identifies the source of a message: either a server name (Host only)
// or a user as nick!user@host.
type Prefix struct {
	Nick string
	User string
	Host string
}

// IsServer reports whether the prefix names a server rather than a user.
func (p Prefix) IsServer() bool {
	return p.Nick == "" && p.Host != ""
}

func (p Prefix) String() string {
	switch {
	case p.Nick == "" && p.User == "" && p.Host == "":
		return ""
	case p.Nick == "":
		return p.Host
	case p.User == "" && p.Host == "":
		return p.Nick
	case p.Host == "":
		return p.Nick + "!" + p.User
	case p.User == "":
		return p.Nick + "@" + p.Host
	default:
		return p.Nick + "!" + p.User + "@" + p.Host
	}
}

// Message is one decoded protocol line: optional tags, optional source
// prefix, a command or numeric, and ordered parameters. The last parameter
// may contain spaces; all others may not.
type Message struct {
	Tags    map[string]string
	Prefix  Prefix
	Command string
	Params  []string
}

// NewMessage builds an outbound message with the given command and params.
func NewMessage(command string, params ...string) Message {
	return Message{Command: command, Params: params}
}

// WithPrefix returns a copy of m carrying the given source prefix.
func (m Message) WithPrefix(p Prefix) Message {
	m.Prefix = p
	return m
}

// WithTag returns a copy of m with the tag set. The tag map is copied so the
// original message stays immutable.
func (m Message) WithTag(key, value string) Message {
	tags := make(map[string]string, len(m.Tags)+1)
	for k, v := range m.Tags {
		tags[k] = v
	}
	tags[key] = value
	m.Tags = tags
	return m
}

// Param returns the nth parameter (zero-based), or "" if absent.
func (m Message) Param(n int) string {
	if n < 0 || n >= len(m.Params) {
		return ""
	}
	return m.Params[n]
}

// tagUnescaper decodes message tag values per the message-tags spec.
var tagUnescaper = strings.NewReplacer(
	`\:`, ";",
	`\s`, " ",
	`\r`, "\r",
	`\n`, "\n",
	`\\`, `\`,
)

// tagEscaper encodes message tag values for transmission.
var tagEscaper = strings.NewReplacer(
	";", `\:`,
	" ", `\s`,
	"\r", `\r`,
	"\n", `\n`,
	`\`, `\\`,
)

// ParseMessage decodes one line, without its trailing CRLF, into a Message.
// It accepts any number of parameters and tolerates redundant spaces between
// them, matching what servers in the wild produce.
func ParseMessage(line string) (Message, error) {
	var m Message

	line = strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(line, "@") {
		tags, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return m, ErrEmptyMessage
		}
		m.Tags = parseTags(tags)
		line = rest
	}

	line = strings.TrimLeft(line, " ")
	if strings.HasPrefix(line, ":") {
		word, rest, _ := strings.Cut(line[1:], " ")
		m.Prefix = parsePrefix(word)
		line = rest
	}

	line = strings.TrimLeft(line, " ")
	if line == "" {
		return m, ErrEmptyMessage
	}

	command, rest, _ := strings.Cut(line, " ")
	m.Command = strings.ToUpper(command)

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		if strings.HasPrefix(rest, ":") {
			m.Params = append(m.Params, rest[1:])
			break
		}
		word, tail, _ := strings.Cut(rest, " ")
		m.Params = append(m.Params, word)
		rest = tail
	}

	return m, nil
}

func parseTags(s string) map[string]string {
	tags := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		tags[key] = tagUnescaper.Replace(value)
	}
	return tags
}

func parsePrefix(s string) Prefix {
	var p Prefix
	if i := strings.IndexByte(s, '@'); i >= 0 {
		p.Host = s[i+1:]
		s = s[:i]
	}
	if i := strings.IndexByte(s, '!'); i >= 0 {
		p.User = s[i+1:]
		s = s[:i]
	}
	if p.Host != "" || p.User != "" {
		p.Nick = s
	} else if strings.ContainsAny(s, ".:") {
		// A lone dotted name is a server, not a nick.
		p.Host = s
	} else {
		p.Nick = s
	}
	return p
}

// String encodes the message as a protocol line without the trailing CRLF.
// The last parameter is always sent as a trailing parameter so that empty
// strings and embedded spaces survive the round trip.
func (m Message) String() string {
	var b strings.Builder
	b.Grow(64)

	if len(m.Tags) > 0 {
		b.WriteByte('@')
		first := true
		for k, v := range m.Tags {
			if !first {
				b.WriteByte(';')
			}
			first = false
			b.WriteString(k)
			if v != "" {
				b.WriteByte('=')
				b.WriteString(tagEscaper.Replace(v))
			}
		}
		b.WriteByte(' ')
	}

	if prefix := m.Prefix.String(); prefix != "" {
		b.WriteByte(':')
		b.WriteString(prefix)
		b.WriteByte(' ')
	}

	b.WriteString(m.Command)

	for i, param := range m.Params {
		b.WriteByte(' ')
		if i == len(m.Params)-1 {
			b.WriteByte(':')
		}
		b.WriteString(param)
	}

	return b.String()
}

// Bytes encodes the message as a full protocol line including CRLF.
func (m Message) Bytes() []byte {
	return []byte(m.String() + "\r\n")
}
