package xdgshell

import "github.com/friedelschoen/xdgshell/transport"

// PopupGrabChain is the per-seat-per-shell stack of active popups
// (spec.md §3/§4.6). The topmost entry is the one allowed to be
// destroyed or to parent a new popup; the chain as a whole owns a
// single pointer and keyboard grab slot on the seat.
type PopupGrabChain struct {
	shell  *Shell
	seat   transport.Seat
	popups []*Popup

	hasClient bool
	clientID  transport.ClientID

	installed bool
}

func newPopupGrabChain(shell *Shell, seat transport.Seat) *PopupGrabChain {
	return &PopupGrabChain{shell: shell, seat: seat}
}

// isEligibleParent implements invariant 5: a popup's parent must already
// be topmost in the chain, or — if the chain is empty — must itself be
// a toplevel.
func (c *PopupGrabChain) isEligibleParent(parent *Surface) bool {
	if len(c.popups) == 0 {
		return parent.role == RoleToplevel
	}
	top := c.popups[len(c.popups)-1]
	return top.surface == parent
}

// isTopmost reports whether p is the last-pushed (topmost) popup.
func (c *PopupGrabChain) isTopmost(p *Popup) bool {
	return len(c.popups) > 0 && c.popups[len(c.popups)-1] == p
}

// push adds a popup to the top of the chain. The chain's client is fixed
// by whichever popup grabs first; every subsequent popup in the chain
// is expected to belong to that same client since only its parent can be
// topmost.
func (c *PopupGrabChain) push(p *Popup) {
	if !c.hasClient {
		c.hasClient = true
		c.clientID = p.surface.client.id
	}
	c.popups = append(c.popups, p)
}

// installGrabs installs the chain's pointer and keyboard grab on the
// seat, idempotently: a nested popup grabbing the same already-grabbing
// seat just joins the existing chain (spec.md §4.3/§4.6).
func (c *PopupGrabChain) installGrabs(seat transport.Seat, clientID transport.ClientID) {
	if c.installed {
		return
	}
	c.installed = true

	seat.StartPointerGrab(clientID, transport.PointerGrabHandlers{
		OnEnter: func(entered transport.ClientID, isOwner bool) {
			// An enter on a surface of the grab's own client passes
			// through. A non-owner enter is not acted on either: this
			// handler does not clear pointer focus, and the Seat
			// contract has no call for doing so.
			if isOwner {
				return
			}
		},
		OnMotion:   func() {},
		OnAxis:     func() {},
		OnModifier: func() {},
		OnKey:      func() {},
		OnButton: func() {
			if seat.ForwardPointerButton() == 0 {
				c.teardown()
			}
		},
		OnCancel: func() {
			c.teardown()
		},
	})

	seat.StartKeyboardGrab(clientID, transport.KeyboardGrabHandlers{
		// OnEnter intentionally does nothing: focus remains on the
		// popup (spec.md §4.6).
		OnEnter: func() {},
		OnCancel: func() {
			c.teardown()
		},
	})
}

// remove pops p (which must be the topmost popup; callers check this
// via isTopmost before calling) off the chain. If the chain becomes
// empty this ends the grab on the seat, without sending popup_done to
// anyone since nothing remains to notify.
func (c *PopupGrabChain) remove(p *Popup) {
	for i, entry := range c.popups {
		if entry == p {
			c.popups = append(c.popups[:i], c.popups[i+1:]...)
			break
		}
	}
	if len(c.popups) == 0 {
		c.endGrabs()
	}
}

// teardown forces the whole chain closed: every remaining popup gets
// popup_done (which the client is expected to respond to by destroying
// it), then both grabs end (spec.md §4.6).
func (c *PopupGrabChain) teardown() {
	popups := c.popups
	c.popups = nil
	for _, p := range popups {
		p.state().HasSeat = false
		p.emitDone()
	}
	c.endGrabs()
}

func (c *PopupGrabChain) endGrabs() {
	if !c.installed {
		return
	}
	c.installed = false
	c.seat.EndPointerGrab()
	c.seat.EndKeyboardGrab()
}

// empty reports whether the chain currently holds no popups and no
// installed grab, i.e. it is safe to forget.
func (c *PopupGrabChain) empty() bool {
	return len(c.popups) == 0 && !c.installed
}
