// Package transport declares the contracts this module expects from its
// embedding display server: the wire dispatcher, the generic surface
// primitive, the seat subsystem, and the event loop. None of these are
// implemented here — spec.md §1 treats them as external collaborators —
// except for the in-memory fake in fake.go, used by tests and the demo
// command in place of a real compositor.
package transport

import "time"

// ClientID and SurfaceID are stable identifiers resolved through
// shell-owned maps rather than direct pointers, so that back-references
// (popup→parent, popup→seat, grab-chain→client) never form ownership
// cycles with the objects they point at.
type ClientID uint64

// SurfaceID identifies an xdg_surface independent of its role.
type SurfaceID uint64

// SeatID identifies a seat for the purposes of keying a per-seat popup
// grab chain. The seat object itself lives outside this module.
type SeatID uint64

// Serial is a display-wide monotonically increasing sequence number used
// to correlate a configure with its ack.
type Serial uint32

// SerialSource hands out the next serial from the display's shared
// counter. Implementations must be monotonic across every protocol that
// draws from it, not just this one.
type SerialSource interface {
	Next() Serial
}

// Cancelable is returned by anything scheduled against the event loop so
// callers can tear it down early (on client or surface destruction).
type Cancelable interface {
	Cancel()
}

// EventLoop is the event-loop primitive: idle tasks for configure
// coalescing, one-shot timers for ping timeouts.
type EventLoop interface {
	ScheduleIdle(fn func()) Cancelable
	ScheduleTimer(d time.Duration, fn func()) Cancelable
}

// Resource is the wire-level object backing a protocol interface
// instance (xdg_wm_base, xdg_positioner, xdg_surface, xdg_toplevel,
// xdg_popup). Protocol and resource-exhaustion errors are posted on it;
// the embedding dispatcher is responsible for tearing down the
// connection once an error has been posted.
type Resource interface {
	PostError(code uint32, message string)
	PostNoMemory()
}

// BaseSurface is the generic surface primitive: it owns the pixel
// buffer and double-buffered state, and notifies this module of commits
// and its own destruction.
type BaseSurface interface {
	HasBuffer() bool
	OnCommit(fn func(hasBuffer bool))
	OnDestroy(fn func())
}

// PointerGrabHandlers mirrors the teacher's typed-handler-struct idiom
// (wayland.go's LayerSurfaceHandlers{OnConfigure: ..., OnClosed: ...])
// rather than a single observer interface. These are populated by the
// grab installer (PopupGrabChain) and invoked by the seat as real input
// arrives; fields left nil are simply not installed.
type PointerGrabHandlers struct {
	OnEnter    func(enteredClient ClientID, isOwner bool)
	OnMotion   func()
	OnAxis     func()
	OnModifier func()
	OnKey      func()
	OnButton   func()
	OnCancel   func()
}

// KeyboardGrabHandlers is the keyboard counterpart of PointerGrabHandlers.
type KeyboardGrabHandlers struct {
	OnEnter  func()
	OnCancel func()
}

// Seat is the seat subsystem: pointer/keyboard focus, grab installation,
// serial validation. Only one grab may be installed on a seat's pointer
// or keyboard slot at a time; installing a new one must replace the old.
type Seat interface {
	ID() SeatID
	ValidateSerial(s Serial) bool
	StartPointerGrab(client ClientID, h PointerGrabHandlers)
	EndPointerGrab()
	StartKeyboardGrab(client ClientID, h KeyboardGrabHandlers)
	EndKeyboardGrab()
	// ForwardPointerButton runs the seat's default (non-grab) button
	// dispatch and reports the serial it produced, or 0 if no client
	// ended up with pointer focus. A popup grab's own button handler
	// calls this to decide whether the grab should tear down
	// (spec.md §4.6).
	ForwardPointerButton() Serial
}
