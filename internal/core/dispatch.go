package core

import "github.com/vovakirdan/wirechat-ircd/internal/proto"

type handlerFunc func(st *State, s *Session, m proto.Message)

type command struct {
	handler   handlerFunc
	minParams int
	// preReg marks commands accepted before registration completes.
	preReg bool
}

var commands = map[string]command{
	"PASS":    {handlePass, 1, true},
	"NICK":    {handleNick, 0, true},
	"USER":    {handleUser, 4, true},
	"CAP":     {handleCap, 1, true},
	"PING":    {handlePing, 1, true},
	"PONG":    {handlePong, 0, true},
	"QUIT":    {handleQuit, 0, true},
	"JOIN":    {handleJoin, 1, false},
	"PART":    {handlePart, 1, false},
	"TOPIC":   {handleTopic, 1, false},
	"NAMES":   {handleNames, 1, false},
	"LIST":    {handleList, 0, false},
	"MODE":    {handleMode, 1, false},
	"PRIVMSG": {handlePrivmsg, 0, false},
	"NOTICE":  {handleNotice, 0, false},
	"KICK":    {handleKick, 2, false},
	"INVITE":  {handleInvite, 2, false},
	"MOTD":    {handleMotd, 0, false},
	"LUSERS":  {handleLusers, 0, false},
	"AWAY":    {handleAway, 0, false},
	"OPER":    {handleOper, 2, false},
}

// dispatch routes one decoded message. Validation happens before any
// mutation: unknown command, registration gate, then parameter count. Each
// handler either fully applies its state change or applies nothing and
// replies with an error numeric.
func (st *State) dispatch(s *Session, m proto.Message) {
	cmd, ok := commands[m.Command]
	if !ok {
		st.sendNumeric(s, proto.ErrUnknownCommand, m.Command, "Unknown command")
		return
	}
	if !cmd.preReg && s.State() != StateRegistered {
		st.sendNumeric(s, proto.ErrNotRegistered, "You have not registered")
		return
	}
	if len(m.Params) < cmd.minParams {
		st.sendNumeric(s, proto.ErrNeedMoreParams, m.Command, "Not enough parameters")
		return
	}
	cmd.handler(st, s, m)
}
