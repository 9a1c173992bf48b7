// Package cmt provides Cooperative Multi-Tasking for a two core gadget.
//
// Each core (back-end and front-end/UI) runs a message loop which takes
// messages from its inbound Channel and dispatches them to the first
// matching entry of its HandlerTable. When there is nothing to dispatch,
// the loop advances its idle functions by one, and after every step the
// core's Scheduler gets a chance to post messages whose time has come.
//
// Cores only talk to each other through messages. The only points where
// a core is suspended are Channel.PostBlocking and Channel.GetBlocking,
// neither of which has a timeout. Two cores that block posting into each
// other's full channel will wait forever, so protocols between cores post
// blocking only for the one-shot startup handshake and use PostNoWait for
// everything posted from inside the loop (scheduled messages included).
//
// Interrupt style callers must only use PostNoWait.
//
// A loop never sleeps. With an empty channel it runs one idle function,
// yields with runtime.Gosched and polls again, so each running loop keeps
// one host CPU busy. Handlers that want to wait schedule a message instead
// of blocking the loop.
package cmt
