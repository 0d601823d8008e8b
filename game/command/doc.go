// Package command defines the outbound rendering protocol of a duel session.
//
// Every function in this package builds one command and hands it to a Sender.
// Commands are send-only: the renderer never acknowledges them, and the only
// ordering guarantee is that a session's commands arrive in the order they
// were sent. Commands reference live model values, so a Sender that delivers
// asynchronously must encode each command before Send returns.
//
// Recorder captures commands in memory and is what the handler and session
// tests assert against.
package command
