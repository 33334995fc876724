package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want CanonicalKey
	}{
		{"Nova", "nova"},
		{"nova", "nova"},
		{"NOVA", "nova"},
		{"[away]", "{away}"},
		{`back\slash`, "back|slash"},
		{"til~de", "til^de"},
		{"#Lobby", "#lobby"},
		{"mixed[CASE]~", "mixed{case}^"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Fold(c.in), "Fold(%q)", c.in)
	}
}

func TestFoldEquality(t *testing.T) {
	assert.Equal(t, Fold("Nova"), Fold("nova"))
	assert.Equal(t, Fold("{x}"), Fold("[X]"))
	assert.NotEqual(t, Fold("nova"), Fold("nova_"))
}

func TestIsValidNickname(t *testing.T) {
	valid := []string{"nova", "Nova", "n0va", "[brackets]", "under_score", "x"}
	for _, n := range valid {
		assert.True(t, IsValidNickname(n), "nick %q", n)
	}

	invalid := []string{"", "#nova", "&nova", ":nova", "9nova", "no va", "no,va", "no*va", "no!va", "no@va", "no.va"}
	for _, n := range invalid {
		assert.False(t, IsValidNickname(n), "nick %q", n)
	}
}

func TestIsValidChannelName(t *testing.T) {
	assert.True(t, IsValidChannelName("#lobby"))
	assert.True(t, IsValidChannelName("&local"))
	assert.False(t, IsValidChannelName("lobby"))
	assert.False(t, IsValidChannelName("#"))
	assert.False(t, IsValidChannelName("#lob by"))
	assert.False(t, IsValidChannelName("#lob,by"))
}
