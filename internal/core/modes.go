package core

// Rank is a member's privilege level within one room. Ranks form a total
// order; an action is allowed iff the member's rank is at least the action's
// required rank.
type Rank int

const (
	RankNone Rank = iota
	RankVoice
	RankOperator
	RankFounder
)

func (r Rank) String() string {
	switch r {
	case RankVoice:
		return "voice"
	case RankOperator:
		return "operator"
	case RankFounder:
		return "founder"
	default:
		return "none"
	}
}

// MemberModes are the per-room modes of one member.
type MemberModes struct {
	Founder  bool
	Operator bool
	Voice    bool
}

// Rank returns the highest rank the modes grant.
func (m MemberModes) Rank() Rank {
	switch {
	case m.Founder:
		return RankFounder
	case m.Operator:
		return RankOperator
	case m.Voice:
		return RankVoice
	default:
		return RankNone
	}
}

// Symbol returns the prefix character for NAMES replies, or 0 for none.
func (m MemberModes) Symbol() byte {
	switch m.Rank() {
	case RankFounder:
		return '~'
	case RankOperator:
		return '@'
	case RankVoice:
		return '+'
	default:
		return 0
	}
}

// Action is a privileged room operation.
type Action int

const (
	ActionKick Action = iota
	ActionSetTopic
	ActionChangeMode
	ActionInvite
	ActionSpeak
)

// requiredRank is the static minimum-rank table for room actions. ActionSpeak
// and the conditional actions (topic under +t, invite under +i) are only
// consulted when the corresponding room mode makes them privileged.
var requiredRank = map[Action]Rank{
	ActionKick:       RankOperator,
	ActionSetTopic:   RankOperator,
	ActionChangeMode: RankOperator,
	ActionInvite:     RankOperator,
	ActionSpeak:      RankVoice,
}

// CanPerform reports whether a member with the given rank may perform the
// action. Pure lookup; never blocks.
func CanPerform(action Action, rank Rank) bool {
	return rank >= requiredRank[action]
}
