// Package chat binds Twitch IRC to the celebration engine.
//
// Listen connects to TWITCH_CHANNEL with go-twitch-irc and forwards every
// chat line (except the bot's own) to the engine as an inbound event. It
// also handles a small command surface gated to the broadcaster, moderators,
// or a configured owner:
//   - !celebrate [message]  manual celebration
//   - !addkeyword <kw>      track a new keyword at runtime
//   - !listkeywords         list tracked keywords
//
// Credentials: the IRC client requires a bot username and a user OAuth token
// with chat:read/chat:edit scopes. An app access token does not work here.
// Missing credentials disable the binding; everything else keeps running.
package chat
