package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageBasic(t *testing.T) {
	m, err := ParseMessage("NICK nova")
	require.NoError(t, err)
	assert.Equal(t, "NICK", m.Command)
	assert.Equal(t, []string{"nova"}, m.Params)
}

func TestParseMessageTrailing(t *testing.T) {
	m, err := ParseMessage("PRIVMSG #lobby :hello there world")
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG", m.Command)
	require.Len(t, m.Params, 2)
	assert.Equal(t, "#lobby", m.Params[0])
	assert.Equal(t, "hello there world", m.Params[1])
}

func TestParseMessagePrefix(t *testing.T) {
	m, err := ParseMessage(":nova!amy@example.com PRIVMSG #lobby :hi")
	require.NoError(t, err)
	assert.Equal(t, "nova", m.Prefix.Nick)
	assert.Equal(t, "amy", m.Prefix.User)
	assert.Equal(t, "example.com", m.Prefix.Host)
	assert.False(t, m.Prefix.IsServer())
}

func TestParseMessageServerPrefix(t *testing.T) {
	m, err := ParseMessage(":irc.example.com 001 nova :Welcome")
	require.NoError(t, err)
	assert.True(t, m.Prefix.IsServer())
	assert.Equal(t, "irc.example.com", m.Prefix.Host)
	assert.Equal(t, "001", m.Command)
}

func TestParseMessageTags(t *testing.T) {
	m, err := ParseMessage("@msgid=abc;time=2026-01-01T00:00:00.000Z PRIVMSG #lobby :hi")
	require.NoError(t, err)
	assert.Equal(t, "abc", m.Tags["msgid"])
	assert.Equal(t, "2026-01-01T00:00:00.000Z", m.Tags["time"])
	assert.Equal(t, "PRIVMSG", m.Command)
}

func TestParseMessageTagEscapes(t *testing.T) {
	m, err := ParseMessage(`@key=semi\:space\sdone PING :x`)
	require.NoError(t, err)
	assert.Equal(t, "semi;space done", m.Tags["key"])
}

func TestParseMessageCommandUppercased(t *testing.T) {
	m, err := ParseMessage("privmsg nova :hi")
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG", m.Command)
}

func TestParseMessageRedundantSpaces(t *testing.T) {
	m, err := ParseMessage("MODE   #lobby  +o   nova")
	require.NoError(t, err)
	assert.Equal(t, []string{"#lobby", "+o", "nova"}, m.Params)
}

func TestParseMessageEmpty(t *testing.T) {
	_, err := ParseMessage("")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = ParseMessage("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestEncodeMessage(t *testing.T) {
	m := NewMessage("PRIVMSG", "#lobby", "hello world").
		WithPrefix(Prefix{Nick: "nova", User: "amy", Host: "example.com"})
	assert.Equal(t, ":nova!amy@example.com PRIVMSG #lobby :hello world", m.String())
}

func TestEncodeMessageEmptyTrailing(t *testing.T) {
	m := NewMessage("TOPIC", "#lobby", "")
	assert.Equal(t, "TOPIC #lobby :", m.String())
}

func TestEncodeMessageTags(t *testing.T) {
	m := NewMessage("PRIVMSG", "#lobby", "hi").WithTag("msgid", "a b")
	assert.Equal(t, `@msgid=a\sb PRIVMSG #lobby :hi`, m.String())
}

func TestRoundTrip(t *testing.T) {
	messages := []Message{
		NewMessage("PING", "token"),
		NewMessage("PRIVMSG", "#lobby", "hello there"),
		NewMessage("332", "nova", "#lobby", "the topic").
			WithPrefix(Prefix{Host: "irc.example.com"}),
		NewMessage("KICK", "#lobby", "bob", "flooding").
			WithPrefix(Prefix{Nick: "nova", User: "amy", Host: "h"}),
		NewMessage("TAGMSG", "#lobby").WithTag("+typing", "active"),
	}

	for _, want := range messages {
		got, err := ParseMessage(want.String())
		require.NoError(t, err, "line %q", want.String())
		assert.Equal(t, want.Command, got.Command)
		assert.Equal(t, want.Params, got.Params)
		assert.Equal(t, want.Prefix, got.Prefix)
		if len(want.Tags) > 0 {
			assert.Equal(t, want.Tags, got.Tags)
		}
	}
}
