// Package xdgshell implements the server side of the xdg-shell-stable
// Wayland protocol: positioners, toplevel and popup roles, the
// configure/ack/commit negotiation cycle, popup grab chains, and client
// ping/pong liveness tracking.
//
// The package only models protocol state machines. Everything it needs
// from an actual display server — the wire dispatcher, the generic
// wl_surface primitive, the seat subsystem, and the event loop — is
// taken as an interface from the transport package, so this module can
// be exercised against the in-memory fakes in transport/fake.go without
// a running compositor.
package xdgshell
