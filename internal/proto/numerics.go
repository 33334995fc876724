package proto

// Reply and error numerics used by the server. Parameter ordering for each
// numeric is part of the client-facing contract and follows the modern IRC
// client protocol document.
const (
	RplWelcome  = "001" // <client> :Welcome to the network <nick>!<user>@<host>
	RplYourHost = "002" // <client> :Your host is <servername>, running version <ver>
	RplCreated  = "003" // <client> :This server was created <date>
	RplMyInfo   = "004" // <client> <servername> <version> <umodes> <chanmodes>
	RplISupport = "005" // <client> <tokens>... :are supported by this server

	RplUModeIs       = "221" // <client> <umodes>
	RplLUserClient   = "251" // <client> :There are <n> users and <n> services on <n> servers
	RplLUserOp       = "252" // <client> <n> :operator(s) online
	RplLUserUnknown  = "253" // <client> <n> :unknown connection(s)
	RplLUserChannels = "254" // <client> <n> :channels formed
	RplLUserMe       = "255" // <client> :I have <n> clients and <n> servers

	RplAway          = "301" // <client> <nick> :<away message>
	RplUnAway        = "305" // <client> :You are no longer marked as being away
	RplNowAway       = "306" // <client> :You have been marked as being away
	RplList          = "322" // <client> <channel> <visible> :<topic>
	RplListEnd       = "323" // <client> :End of LIST
	RplChannelModeIs = "324" // <client> <channel> <modes> <params>...
	RplNoTopic       = "331" // <client> <channel> :No topic is set
	RplTopic         = "332" // <client> <channel> :<topic>
	RplTopicWhoTime  = "333" // <client> <channel> <who> <setat>
	RplInviting      = "341" // <client> <nick> <channel>
	RplNamReply      = "353" // <client> <symbol> <channel> :<prefixed nicks>...
	RplEndOfNames    = "366" // <client> <channel> :End of NAMES list
	RplBanList       = "367" // <client> <channel> <mask>
	RplEndOfBanList  = "368" // <client> <channel> :End of channel ban list
	RplMOTD          = "372" // <client> :- <line>
	RplMOTDStart     = "375" // <client> :- <server> Message of the day -
	RplEndOfMOTD     = "376" // <client> :End of MOTD command
	RplYoureOper     = "381" // <client> :You are now an IRC operator

	ErrNoSuchNick       = "401" // <client> <nick> :No such nick/channel
	ErrNoSuchChannel    = "403" // <client> <channel> :No such channel
	ErrCannotSendToChan = "404" // <client> <channel> :Cannot send to channel
	ErrTooManyChannels  = "405" // <client> <channel> :You have joined too many channels
	ErrInvalidCapCmd    = "410" // <client> <subcommand> :Invalid CAP command
	ErrNoRecipient      = "411" // <client> :No recipient given (<command>)
	ErrNoTextToSend     = "412" // <client> :No text to send
	ErrUnknownCommand   = "421" // <client> <command> :Unknown command
	ErrNoMOTD           = "422" // <client> :MOTD File is missing
	ErrNoNicknameGiven  = "431" // <client> :No nickname given
	ErrErroneousNick    = "432" // <client> <nick> :Erroneous nickname
	ErrNicknameInUse    = "433" // <client> <nick> :Nickname is already in use
	ErrUserNotInChannel = "441" // <client> <nick> <channel> :They aren't on that channel
	ErrNotOnChannel     = "442" // <client> <channel> :You're not on that channel
	ErrUserOnChannel    = "443" // <client> <nick> <channel> :is already on channel
	ErrNotRegistered    = "451" // <client> :You have not registered
	ErrNeedMoreParams   = "461" // <client> <command> :Not enough parameters
	ErrAlreadyRegistred = "462" // <client> :You may not reregister
	ErrPasswdMismatch   = "464" // <client> :Password incorrect
	ErrKeySet           = "467" // <client> <channel> :Channel key already set
	ErrChannelIsFull    = "471" // <client> <channel> :Cannot join channel (+l)
	ErrUnknownMode      = "472" // <client> <char> :is unknown mode char to me
	ErrInviteOnlyChan   = "473" // <client> <channel> :Cannot join channel (+i)
	ErrBannedFromChan   = "474" // <client> <channel> :Cannot join channel (+b)
	ErrBadChannelKey    = "475" // <client> <channel> :Cannot join channel (+k)
	ErrNoPrivileges     = "481" // <client> :Permission Denied- You're not an IRC operator
	ErrChanOPrivsNeeded = "482" // <client> <channel> :You're not channel operator
	ErrUModeUnknownFlag = "501" // <client> :Unknown MODE flag
	ErrUsersDontMatch   = "502" // <client> :Cannot change mode for other users
)
