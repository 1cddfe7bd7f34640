package xdgshell

import (
	"log/slog"

	"github.com/friedelschoen/xdgshell/transport"
)

// ToplevelSnapshot is one of the three views (current/next/pending) of a
// toplevel's negotiable state (spec.md §3).
type ToplevelSnapshot struct {
	Activated  bool
	Fullscreen bool
	Maximized  bool
	Resizing   bool
	W, H       int32
	MinW, MinH int32
	MaxW, MaxH int32
}

// ToplevelState is the per-surface toplevel substate: the negotiable
// triple plus the parent relationship, which (unlike maximize/fullscreen)
// takes effect immediately rather than through the configure cycle.
type ToplevelState struct {
	Current, Next, Pending ToplevelSnapshot

	ParentID  transport.SurfaceID
	HasParent bool

	Title, AppID string

	// Added gates the one-time initial configure scheduled off the first
	// bufferless commit (spec.md §4.5); it is distinct from the
	// surface-level "added" flag that gates the one-time new_surface
	// signal, which only fires once the toplevel is actually configured.
	Added bool
}

// ToplevelSignals carries every upward signal an xdg_toplevel can raise,
// as a struct of typed handler fields — the same shape the teacher uses
// for its Wayland event handlers (wayland.go's LayerSurfaceHandlers).
// Fields left nil are simply not invoked.
type ToplevelSignals struct {
	OnRequestMove           func(seat transport.Seat, serial transport.Serial)
	OnRequestResize         func(seat transport.Seat, serial transport.Serial, edges uint32)
	OnRequestShowWindowMenu func(seat transport.Seat, serial transport.Serial, x, y int32)
	OnRequestMaximize       func()
	OnRequestUnmaximize     func()
	OnRequestFullscreen     func(hasOutput bool)
	OnRequestUnfullscreen   func()
	OnRequestMinimize       func()

	// OnSendConfigure and OnSendClose are the downward (server-to-client)
	// half of xdg_toplevel: emitting the actual wire events is the
	// embedding dispatcher's job (spec.md §1), so these are supplied the
	// same way the upward OnRequest* signals are.
	OnSendConfigure func(w, h int32, states []uint32)
	OnSendClose     func()
}

// Toplevel is the xdg_toplevel role object: a thin handle over the
// surface it was created from.
type Toplevel struct {
	surface *Surface
	signals ToplevelSignals
}

func newToplevel(s *Surface) *Toplevel {
	return &Toplevel{surface: s}
}

// SetSignals installs the upward-signal handlers for this toplevel.
func (t *Toplevel) SetSignals(s ToplevelSignals) { t.signals = s }

// Surface returns the underlying role-bearing surface.
func (t *Toplevel) Surface() *Surface { return t.surface }

func (t *Toplevel) state() *ToplevelState { return t.surface.toplevel }

// requirePresented enforces spec.md §4.2: request-class operations
// require the surface to have been configured at least once.
func (t *Toplevel) requirePresented() error {
	if !t.surface.configured {
		return t.surface.postError(ifaceToplevel, ErrSurfaceNotConstructed,
			"xdg_toplevel request on a surface that has never been configured")
	}
	return nil
}

// validateSerial checks a client-supplied serial against the seat's
// current input serial. Per spec.md §7, a stale serial here is *not* a
// protocol error: it is logged and the request is dropped.
func (t *Toplevel) validateSerial(seat transport.Seat, serial transport.Serial) bool {
	if seat != nil && seat.ValidateSerial(serial) {
		return true
	}
	if t.surface.logger != nil {
		t.surface.logger.Debug("dropping toplevel request with stale serial",
			slog.Uint64("serial", uint64(serial)))
	}
	return false
}

// Move requests an interactive move, surfaced to the compositor as
// OnRequestMove.
func (t *Toplevel) Move(seat transport.Seat, serial transport.Serial) error {
	if err := t.requirePresented(); err != nil {
		return err
	}
	if !t.validateSerial(seat, serial) {
		return nil
	}
	if t.signals.OnRequestMove != nil {
		t.signals.OnRequestMove(seat, serial)
	}
	return nil
}

// Resize requests an interactive resize along the given edge mask,
// surfaced as OnRequestResize.
func (t *Toplevel) Resize(seat transport.Seat, serial transport.Serial, edges uint32) error {
	if err := t.requirePresented(); err != nil {
		return err
	}
	if !t.validateSerial(seat, serial) {
		return nil
	}
	if t.signals.OnRequestResize != nil {
		t.signals.OnRequestResize(seat, serial, edges)
	}
	return nil
}

// ShowWindowMenu requests the compositor present its window menu at
// (x,y) surface-local coordinates, surfaced as OnRequestShowWindowMenu.
func (t *Toplevel) ShowWindowMenu(seat transport.Seat, serial transport.Serial, x, y int32) error {
	if err := t.requirePresented(); err != nil {
		return err
	}
	if !t.validateSerial(seat, serial) {
		return nil
	}
	if t.signals.OnRequestShowWindowMenu != nil {
		t.signals.OnRequestShowWindowMenu(seat, serial, x, y)
	}
	return nil
}

// SetParent reparents the toplevel. Unlike maximize/fullscreen this
// takes effect immediately; it is not part of the configure negotiation.
func (t *Toplevel) SetParent(parent *Surface) {
	st := t.state()
	if parent == nil {
		st.HasParent = false
		st.ParentID = 0
		return
	}
	st.HasParent = true
	st.ParentID = parent.id
}

// SetTitle sets the window title. Allocation failure (were this Go
// string copy ever to fail) is silent per spec.md §4.2; in practice a
// Go string assignment cannot fail this way, so the silence is free.
func (t *Toplevel) SetTitle(title string) {
	t.state().Title = title
	t.surface.title = title
}

// SetAppID sets the application id.
func (t *Toplevel) SetAppID(appID string) {
	t.state().AppID = appID
	t.surface.appID = appID
}

// The following are the "state-class" client requests (spec.md §4.2):
// each writes into the toplevel's Next snapshot and emits the matching
// request signal so the compositor can decide, via the mutator API in
// surface.go, whether and when to actually honor it.

// SetMaximized requests maximization.
func (t *Toplevel) SetMaximized() {
	t.state().Next.Maximized = true
	if t.signals.OnRequestMaximize != nil {
		t.signals.OnRequestMaximize()
	}
}

// UnsetMaximized requests leaving the maximized state.
func (t *Toplevel) UnsetMaximized() {
	t.state().Next.Maximized = false
	if t.signals.OnRequestUnmaximize != nil {
		t.signals.OnRequestUnmaximize()
	}
}

// SetFullscreen requests fullscreen, optionally on a specific output.
// Output objects are out of scope (spec.md §1); hasOutput is surfaced so
// compositor policy can resolve it.
func (t *Toplevel) SetFullscreen(hasOutput bool) {
	t.state().Next.Fullscreen = true
	if t.signals.OnRequestFullscreen != nil {
		t.signals.OnRequestFullscreen(hasOutput)
	}
}

// UnsetFullscreen requests leaving fullscreen.
func (t *Toplevel) UnsetFullscreen() {
	t.state().Next.Fullscreen = false
	if t.signals.OnRequestUnfullscreen != nil {
		t.signals.OnRequestUnfullscreen()
	}
}

// SetMaxSize sets the client's maximum size hint. Zero means unbounded.
func (t *Toplevel) SetMaxSize(w, h int32) {
	t.state().Next.MaxW = w
	t.state().Next.MaxH = h
}

// SetMinSize sets the client's minimum size hint.
func (t *Toplevel) SetMinSize(w, h int32) {
	t.state().Next.MinW = w
	t.state().Next.MinH = h
}

// SetMinimized requests minimization. There is no corresponding
// negotiated state: minimizing has no compositor acknowledgement, so
// this is fire-and-forget (spec.md's supplemental-features note).
func (t *Toplevel) SetMinimized() {
	if t.signals.OnRequestMinimize != nil {
		t.signals.OnRequestMinimize()
	}
}

// --- send/ack, spec.md §4.2 ---

// toplevelStateFlag mirrors the wire state enum sent inside
// xdg_toplevel.configure's states array.
type toplevelStateFlag uint32

const (
	toplevelStateMaximized  toplevelStateFlag = 1
	toplevelStateFullscreen toplevelStateFlag = 2
	toplevelStateResizing   toplevelStateFlag = 3
	toplevelStateActivated  toplevelStateFlag = 4
)

// snapshotForConfigure captures pending as it stands right now, with the
// min/max size hints the client has set in Next; this is what gets
// stored in the configure queue entry and, later, replayed into Next on
// ack. Capturing a full snapshot (not just the wire flags) means min/max
// size hints survive the round trip even though they are never
// themselves put on the wire.
func (t *Toplevel) snapshotForConfigure() ToplevelSnapshot {
	st := t.state()
	snap := st.Pending
	snap.MinW, snap.MinH = st.Next.MinW, st.Next.MinH
	snap.MaxW, snap.MaxH = st.Next.MaxW, st.Next.MaxH
	return snap
}

// serialize turns a captured pending snapshot into the wire shape
// described in spec.md §4.2: a states array restricted to what's set in
// the snapshot, plus (w,h), with a (0,0) size falling back to the
// committed window geometry's dimensions.
func (t *Toplevel) serialize(snap ToplevelSnapshot) (w, h int32, states []uint32) {
	if snap.Maximized {
		states = append(states, uint32(toplevelStateMaximized))
	}
	if snap.Fullscreen {
		states = append(states, uint32(toplevelStateFullscreen))
	}
	if snap.Resizing {
		states = append(states, uint32(toplevelStateResizing))
	}
	if snap.Activated {
		states = append(states, uint32(toplevelStateActivated))
	}

	w, h = snap.W, snap.H
	if w == 0 && h == 0 {
		w, h = t.surface.geometry.W, t.surface.geometry.H
	}
	return w, h, states
}

// emitConfigure serializes snap and, if a handler is installed, sends it
// down to the client as xdg_toplevel.configure.
func (t *Toplevel) emitConfigure(snap ToplevelSnapshot) {
	if t.signals.OnSendConfigure == nil {
		return
	}
	w, h, states := t.serialize(snap)
	t.signals.OnSendConfigure(w, h, states)
}

// emitClose sends xdg_toplevel.close, asking the client to destroy this
// toplevel.
func (t *Toplevel) emitClose() {
	if t.signals.OnSendClose != nil {
		t.signals.OnSendClose()
	}
}

// ackConfigure applies the role-specific half of ack-configure
// (spec.md §4.4): copy the queued snapshot into Next, then zero
// pending's (w,h) so it acts as a "use last geometry" sentinel on the
// next schedule.
func (t *Toplevel) ackConfigure(snap ToplevelSnapshot) {
	t.state().Next = snap
	t.state().Pending.W = 0
	t.state().Pending.H = 0
}

// pendingSame implements the "pending_same" check from spec.md §4.4 for
// a toplevel: pending is compared against whichever snapshot is
// authoritative — the tail of the configure queue if one exists,
// otherwise Current joined with the surface's actual pixel dimensions —
// and a pending (0,0) size always counts as "same" (client chooses).
// Before any configure has been queued or acknowledged, pending never
// counts as "same", so the initial configure always goes out.
func (t *Toplevel) pendingSame() bool {
	if !t.surface.configured && len(t.surface.queue) == 0 {
		return false
	}

	st := t.state()
	p := st.Pending

	var baseline ToplevelSnapshot
	if tail, ok := t.surface.configureQueueTail(); ok {
		baseline = tail.(ToplevelSnapshot)
	} else {
		baseline = st.Current
		baseline.W = t.surface.geometry.W
		baseline.H = t.surface.geometry.H
	}

	sizeSame := (p.W == 0 && p.H == 0) || (p.W == baseline.W && p.H == baseline.H)
	return sizeSame &&
		p.Activated == baseline.Activated &&
		p.Fullscreen == baseline.Fullscreen &&
		p.Maximized == baseline.Maximized &&
		p.Resizing == baseline.Resizing
}
