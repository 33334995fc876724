package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

func testIdentity(nick string) *Identity {
	s := newSession("sess-"+nick, "host.test", 16)
	return newIdentity(s, nick, nick, nick, "host.test")
}

func TestRoomFirstMemberIsFounder(t *testing.T) {
	r := newRoom("#lounge")
	alice := testIdentity("alice")
	bob := testIdentity("bob")

	modes, err := r.Join(alice, "")
	require.NoError(t, err)
	assert.True(t, modes.Founder)
	assert.Equal(t, RankFounder, modes.Rank())

	modes, err = r.Join(bob, "")
	require.NoError(t, err)
	assert.Equal(t, RankNone, modes.Rank())

	assert.True(t, alice.inRoom(r.Key()))
	assert.True(t, bob.inRoom(r.Key()))
}

func TestRoomJoinIsNotReentrant(t *testing.T) {
	r := newRoom("#lounge")
	alice := testIdentity("alice")

	_, err := r.Join(alice, "")
	require.NoError(t, err)
	_, err = r.Join(alice, "")
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, 1, r.MemberCount())
}

func TestRoomJoinChecksInOrder(t *testing.T) {
	owner := testIdentity("owner")
	r2 := newRoom("#gate")
	_, err := r2.Join(owner, "")
	require.NoError(t, err)
	_, err = r2.ApplyModes("+b", []string{"badguy!*@*"})
	require.NoError(t, err)
	_, err = r2.ApplyModes("+i", nil)
	require.NoError(t, err)
	_, err = r2.ApplyModes("+k", []string{"sesame"})
	require.NoError(t, err)

	badguy := testIdentity("badguy")
	_, err = r2.Join(badguy, "sesame")
	assert.ErrorIs(t, err, ErrBanned, "ban outranks invite-only")

	stranger := testIdentity("stranger")
	_, err = r2.Join(stranger, "sesame")
	assert.ErrorIs(t, err, ErrInviteOnly)

	r2.Invite(stranger.Key())
	_, err = r2.Join(stranger, "wrong")
	assert.ErrorIs(t, err, ErrKeyRequired, "invite does not bypass the key")

	r2.Invite(stranger.Key())
	_, err = r2.Join(stranger, "sesame")
	assert.NoError(t, err)

	// Invitations are single-use.
	r2.Remove(stranger)
	_, err = r2.Join(stranger, "sesame")
	assert.ErrorIs(t, err, ErrInviteOnly)
}

func TestRoomInviteBypassesBan(t *testing.T) {
	r := newRoom("#gate")
	owner := testIdentity("owner")
	_, err := r.Join(owner, "")
	require.NoError(t, err)
	_, err = r.ApplyModes("+b", []string{"pariah!*@*"})
	require.NoError(t, err)

	pariah := testIdentity("pariah")
	_, err = r.Join(pariah, "")
	assert.ErrorIs(t, err, ErrBanned)

	r.Invite(pariah.Key())
	_, err = r.Join(pariah, "")
	assert.NoError(t, err)
}

func TestRoomLimit(t *testing.T) {
	r := newRoom("#small")
	a, b, c := testIdentity("a"), testIdentity("b"), testIdentity("c")
	_, err := r.Join(a, "")
	require.NoError(t, err)
	_, err = r.ApplyModes("+l", []string{"2"})
	require.NoError(t, err)

	_, err = r.Join(b, "")
	require.NoError(t, err)
	_, err = r.Join(c, "")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoomApplyModesPartialApplication(t *testing.T) {
	r := newRoom("#m")
	alice := testIdentity("alice")
	_, err := r.Join(alice, "")
	require.NoError(t, err)

	// t applies, then x aborts, so s is never evaluated.
	effects, err := r.ApplyModes("+txs", nil)
	require.Error(t, err)
	var me *ModeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, proto.ErrUnknownMode, me.Numeric)
	assert.Equal(t, byte('x'), me.Char)

	require.Len(t, effects, 1)
	assert.Equal(t, ModeEffect{Add: true, Mode: 't'}, effects[0])
	assert.True(t, r.TopicRestricted(), "effects before the invalid op are kept")
	assert.False(t, r.Secret(), "ops after the invalid op are not evaluated")
}

func TestRoomApplyModesIdempotent(t *testing.T) {
	r := newRoom("#m")
	alice := testIdentity("alice")
	_, err := r.Join(alice, "")
	require.NoError(t, err)

	effects, err := r.ApplyModes("+t", nil)
	require.NoError(t, err)
	assert.Len(t, effects, 1)

	// Same string again: no state change, no effect to announce.
	effects, err = r.ApplyModes("+t", nil)
	require.NoError(t, err)
	assert.Empty(t, effects)

	effects, err = r.ApplyModes("+b", []string{"x!*@*"})
	require.NoError(t, err)
	assert.Len(t, effects, 1)
	effects, err = r.ApplyModes("+b", []string{"x!*@*"})
	require.NoError(t, err)
	assert.Empty(t, effects, "duplicate ban mask is a no-op")
}

func TestRoomApplyModesKeyAlreadySet(t *testing.T) {
	r := newRoom("#m")
	_, err := r.ApplyModes("+k", []string{"first"})
	require.NoError(t, err)

	_, err = r.ApplyModes("+k", []string{"second"})
	var me *ModeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, proto.ErrKeySet, me.Numeric)

	effects, err := r.ApplyModes("-k", nil)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, "first", effects[0].Param, "removal reveals the old key")
}

func TestRoomApplyModesMemberTargets(t *testing.T) {
	r := newRoom("#m")
	alice := testIdentity("alice")
	bob := testIdentity("Bob")
	_, err := r.Join(alice, "")
	require.NoError(t, err)
	_, err = r.Join(bob, "")
	require.NoError(t, err)

	effects, err := r.ApplyModes("+ov", []string{"BOB", "bob"})
	require.NoError(t, err)
	require.Len(t, effects, 2)
	assert.Equal(t, "Bob", effects[0].Param, "display case comes from the member")

	modes, ok := r.ModesOf(bob)
	require.True(t, ok)
	assert.True(t, modes.Operator)
	assert.True(t, modes.Voice)
	assert.Equal(t, RankOperator, modes.Rank())

	_, err = r.ApplyModes("+o", []string{"ghost"})
	var me *ModeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, proto.ErrUserNotInChannel, me.Numeric)
	assert.Equal(t, "ghost", me.Param)
}

func TestRoomCanSpeak(t *testing.T) {
	r := newRoom("#m")
	member := testIdentity("member")
	outsider := testIdentity("outsider")
	_, err := r.Join(member, "")
	require.NoError(t, err)

	assert.True(t, r.CanSpeak(member))
	assert.False(t, r.CanSpeak(outsider), "+n is on by default")

	_, err = r.ApplyModes("+m", nil)
	require.NoError(t, err)
	// The founder keeps speaking; an unvoiced member does not.
	assert.True(t, r.CanSpeak(member))

	pleb := testIdentity("pleb")
	_, err = r.Join(pleb, "")
	require.NoError(t, err)
	assert.False(t, r.CanSpeak(pleb))

	_, err = r.ApplyModes("+v", []string{"pleb"})
	require.NoError(t, err)
	assert.True(t, r.CanSpeak(pleb))
}

func TestRoomDisposable(t *testing.T) {
	r := newRoom("#m")
	alice := testIdentity("alice")
	_, err := r.Join(alice, "")
	require.NoError(t, err)
	assert.False(t, r.Disposable())

	require.NoError(t, r.Part(alice))
	assert.True(t, r.Disposable())
	assert.False(t, alice.inRoom(r.Key()))

	_, err = r.ApplyModes("+P", nil)
	require.NoError(t, err)
	assert.False(t, r.Disposable(), "+P keeps an empty room alive")
}

func TestCanPerformRankTable(t *testing.T) {
	assert.False(t, CanPerform(ActionKick, RankNone))
	assert.False(t, CanPerform(ActionKick, RankVoice))
	assert.True(t, CanPerform(ActionKick, RankOperator))
	assert.True(t, CanPerform(ActionKick, RankFounder))

	assert.False(t, CanPerform(ActionSpeak, RankNone))
	assert.True(t, CanPerform(ActionSpeak, RankVoice))
}
