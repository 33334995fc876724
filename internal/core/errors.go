package core

import (
	"errors"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// State-conflict and resource errors surfaced by the registries. Each maps
// to a protocol numeric when it reaches the dispatcher.
var (
	ErrNicknameInUse = errors.New("nickname is already in use")
	ErrSameName      = errors.New("nickname unchanged")
	ErrAlreadyMember = errors.New("already on channel")
	ErrNotMember     = errors.New("not on channel")
	ErrBanned        = errors.New("banned from channel")
	ErrInviteOnly    = errors.New("channel is invite-only")
	ErrKeyRequired   = errors.New("bad channel key")
	ErrRoomFull      = errors.New("channel is full")
	ErrNotPrivileged = errors.New("insufficient channel privileges")
	ErrTooManyRooms  = errors.New("joined too many channels")
	ErrUnknownMode   = errors.New("unknown mode char")
	ErrKeySet        = errors.New("channel key already set")
)

// Fatal session errors. These terminate the owning session only.
var (
	ErrQueueOverflow = errors.New("outgoing queue overflow")
	ErrIdleTimeout   = errors.New("idle timeout")
)

// joinNumeric maps a join rejection to its numeric reply.
func joinNumeric(err error) string {
	switch {
	case errors.Is(err, ErrBanned):
		return proto.ErrBannedFromChan
	case errors.Is(err, ErrInviteOnly):
		return proto.ErrInviteOnlyChan
	case errors.Is(err, ErrKeyRequired):
		return proto.ErrBadChannelKey
	case errors.Is(err, ErrRoomFull):
		return proto.ErrChannelIsFull
	default:
		return proto.ErrNoSuchChannel
	}
}
