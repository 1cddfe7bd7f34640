package xdgshell

import "github.com/friedelschoen/xdgshell/transport"

// PopupState is the popup role's substate (spec.md §3). Geometry is the
// positioner's computed placement, relative to the parent's window
// geometry. ParentID and the seat holding this popup's grab are
// non-owning back-references resolved through the owning Shell's maps
// (spec.md §9's "back-references" design note), never direct pointers.
type PopupState struct {
	ParentID transport.SurfaceID

	Geometry Rect

	Committed bool

	HasSeat bool
	SeatID  transport.SeatID
}

// PopupSignals carries the downward (server-to-client) events an
// xdg_popup can raise. As with ToplevelSignals, emitting the actual wire
// event is the embedding dispatcher's job; these are just the hooks.
type PopupSignals struct {
	OnSendConfigure func(geom Rect)
	OnSendDone      func()

	// OnSendRepositioned is xdg_popup.repositioned(token): sent once,
	// right before the configure that carries the recomputed geometry,
	// so the client can correlate which reposition call produced which
	// configure (spec.md's supplemental reposition feature).
	OnSendRepositioned func(token uint32)
}

// Popup is the xdg_popup role object.
type Popup struct {
	surface *Surface
	signals PopupSignals
}

func newPopup(s *Surface) *Popup {
	return &Popup{surface: s}
}

// SetSignals installs the downward-event handlers for this popup.
func (p *Popup) SetSignals(s PopupSignals) { p.signals = s }

// Surface returns the underlying role-bearing surface.
func (p *Popup) Surface() *Surface { return p.surface }

func (p *Popup) state() *PopupState { return p.surface.popup }

// Grab installs the popup's input grab on seat, following spec.md §4.3
// and invariant 5: the popup must not already be mapped, and its parent
// must already be topmost in that seat's chain (or, if the chain is
// empty, must be a toplevel).
func (p *Popup) Grab(seat transport.Seat, serial transport.Serial) error {
	st := p.state()
	if st.Committed {
		return p.surface.postError(ifacePopup, ErrPopupInvalidGrab,
			"grab requested on a popup that is already mapped")
	}

	shell := p.surface.shell
	chain := shell.grabChain(seat)

	parent := shell.surfaceByID(st.ParentID)
	if parent == nil {
		return p.surface.postWMBaseError(ErrWMBaseInvalidPopupParent, "popup has no resolvable parent")
	}

	if !chain.isEligibleParent(parent) {
		return p.surface.postWMBaseError(ErrWMBaseNotTheTopmostPopup,
			"popup's parent is not the topmost popup (or the chain's sole toplevel)")
	}

	st.HasSeat = true
	st.SeatID = seat.ID()
	chain.push(p)
	chain.installGrabs(seat, p.surface.client.id)
	return nil
}

// Reposition re-runs the positioner geometry computation against a new
// positioner and re-schedules a configure. This is the stable xdg-shell
// addition over the unstable-v6 protocol (spec.md's supplemental
// features): it does not change any invariant, it just lets a mapped
// popup move without being destroyed and recreated.
func (p *Popup) Reposition(positioner *Positioner, token uint32) error {
	if err := positioner.validateForConsumption(); err != nil {
		return p.surface.postWMBaseError(ErrWMBaseInvalidPositioner, "%s", err)
	}
	parent := p.surface.shell.surfaceByID(p.state().ParentID)
	if parent == nil {
		return p.surface.postWMBaseError(ErrWMBaseInvalidPopupParent, "popup has no resolvable parent")
	}
	p.state().Geometry = positioner.Geometry(parent.geometry)
	p.surface.repositionToken = token
	p.surface.hasRepositionToken = true
	p.surface.scheduleConfigure()
	return nil
}

// Destroy tears down the popup, enforcing invariant 4: a popup may only
// be destroyed while it is topmost in its grab chain. The chain removal
// itself happens inside surface.destroy(), which every destruction path
// (client request, reactive teardown) funnels through.
func (p *Popup) Destroy() error {
	st := p.state()
	if st.HasSeat {
		shell := p.surface.shell
		if seat, ok := shell.seatByID(st.SeatID); ok {
			chain := shell.grabChain(seat)
			if !chain.isTopmost(p) {
				return p.surface.postWMBaseError(ErrWMBaseNotTheTopmostPopup,
					"destroyed popup is not the topmost popup in its grab chain")
			}
		}
	}
	p.surface.destroy()
	return nil
}

// emitRepositioned sends xdg_popup.repositioned(token), always right
// before the configure carrying the geometry that reposition computed,
// so the client can tell the two apart from an initial map.
func (p *Popup) emitRepositioned(token uint32) {
	if p.signals.OnSendRepositioned != nil {
		p.signals.OnSendRepositioned(token)
	}
}

// emitConfigure sends the popup's configure payload: its computed
// geometry (spec.md §4.4's role-specific serialization for popups).
func (p *Popup) emitConfigure(geom Rect) {
	if p.signals.OnSendConfigure != nil {
		p.signals.OnSendConfigure(geom)
	}
}

// emitDone sends xdg_popup.popup_done, telling the client this popup is
// no longer relevant and should be destroyed.
func (p *Popup) emitDone() {
	if p.signals.OnSendDone != nil {
		p.signals.OnSendDone()
	}
}
