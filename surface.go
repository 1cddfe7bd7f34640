package xdgshell

import (
	"log/slog"

	"github.com/friedelschoen/xdgshell/transport"
)

// configureEntry is one outstanding, unacknowledged configure: the
// serial it was sent with and the role-specific snapshot that produced
// it, so ack_configure can replay the exact state the client is
// acknowledging (spec.md §4.4).
type configureEntry struct {
	serial   transport.Serial
	snapshot any
}

// SurfaceSignals carries the signals an xdg_surface raises that aren't
// specific to either role: destruction, ping timeout, and a new child
// popup being created underneath it.
type SurfaceSignals struct {
	OnDestroy     func()
	OnPingTimeout func()
	OnNewPopup    func(popup *Popup)

	// OnSendConfigure is the generic xdg_surface.configure(serial) event,
	// sent once per queued configure right after the role-specific
	// payload (spec.md §4.4).
	OnSendConfigure func(serial transport.Serial)
}

// Surface is the shell-side xdg_surface: a generic wl_surface extended
// with double-buffered window geometry and, once a role is assigned, the
// configure/ack/commit machinery described in spec.md §4.4-§4.5.
type Surface struct {
	id       transport.SurfaceID
	shell    *Shell
	client   *Client
	resource transport.Resource
	base     transport.BaseSurface
	logger   *slog.Logger

	role     Role
	toplevel *ToplevelState
	popup    *PopupState

	toplevelObj *Toplevel
	popupObj    *Popup

	// children are popups rooted at this surface, kept for PopupAt's
	// hit-test descent. Non-owning in the sense that destroying this
	// surface does not implicitly destroy them; it is the compositor's
	// job to have already torn down its popup tree.
	children []*Surface

	geometry        Rect
	nextGeometry    Rect
	hasNextGeometry bool

	configured      bool
	added           bool
	configureSerial transport.Serial

	queue      []configureEntry
	idle       transport.Cancelable
	nextSerial transport.Serial

	title, appID       string
	repositionToken    uint32
	hasRepositionToken bool

	signals SurfaceSignals
}

// SetSignals installs the surface-level signal handlers.
func (s *Surface) SetSignals(sig SurfaceSignals) { s.signals = sig }

// ID returns the stable identifier other shell-owned objects use to
// refer back to this surface without holding a direct pointer.
func (s *Surface) ID() transport.SurfaceID { return s.id }

// Role reports which role, if any, has been assigned.
func (s *Surface) Role() Role { return s.role }

// Client returns the owning client.
func (s *Surface) Client() *Client { return s.client }

// Geometry returns the committed window geometry.
func (s *Surface) Geometry() Rect { return s.geometry }

func (s *Surface) postError(iface string, code uint32, format string, args ...any) error {
	err := newProtocolError(iface, code, format, args...)
	if s.resource != nil {
		s.resource.PostError(err.Code, err.Message)
	}
	return err
}

func (s *Surface) postWMBaseError(code uint32, format string, args ...any) error {
	err := newProtocolError(ifaceWMBase, code, format, args...)
	if s.client != nil {
		s.client.postError(err.Code, err.Message)
	}
	return err
}

// GetToplevel assigns the toplevel role (spec.md §4.2, invariant 1). The
// surface must not already have a role.
func (s *Surface) GetToplevel(signals ToplevelSignals) (*Toplevel, error) {
	if s.role != RoleNone {
		return nil, s.postWMBaseError(ErrWMBaseRole, "surface already has role %s", s.role)
	}
	s.role = RoleToplevel
	s.toplevel = &ToplevelState{}
	s.toplevelObj = newToplevel(s)
	s.toplevelObj.signals = signals
	return s.toplevelObj, nil
}

// GetPopup assigns the popup role (spec.md §4.1/§4.3, invariant 1). The
// parent must already be a toplevel or popup, and positioner must carry
// a valid size and anchor rect.
func (s *Surface) GetPopup(parent *Surface, positioner *Positioner, signals PopupSignals) (*Popup, error) {
	if s.role != RoleNone {
		return nil, s.postWMBaseError(ErrWMBaseRole, "surface already has role %s", s.role)
	}
	if parent == nil || (parent.role != RoleToplevel && parent.role != RolePopup) {
		return nil, s.postWMBaseError(ErrWMBaseInvalidPopupParent,
			"get_popup requires a toplevel or popup parent")
	}
	if err := positioner.validateForConsumption(); err != nil {
		return nil, s.postWMBaseError(ErrWMBaseInvalidPositioner, "%s", err)
	}

	s.role = RolePopup
	s.popup = &PopupState{
		ParentID: parent.id,
		Geometry: positioner.Geometry(parent.geometry),
	}
	s.popupObj = newPopup(s)
	s.popupObj.signals = signals

	parent.children = append(parent.children, s)
	if parent.signals.OnNewPopup != nil {
		parent.signals.OnNewPopup(s.popupObj)
	}
	return s.popupObj, nil
}

// SetWindowGeometry double-buffers the window geometry, taking effect on
// the next commit (spec.md's supplemental set_window_geometry feature).
// Non-positive dimensions are a protocol error.
func (s *Surface) SetWindowGeometry(x, y, w, h int32) error {
	if w <= 0 || h <= 0 {
		return s.postError(ifaceSurface, ErrSurfaceInvalidSize,
			"window geometry must have positive size, got %dx%d", w, h)
	}
	s.nextGeometry = Rect{X: x, Y: y, W: w, H: h}
	s.hasNextGeometry = true
	return nil
}

// configureQueueTail returns the most recently queued (but not yet
// acknowledged) snapshot, if any — the authoritative baseline for
// pending_same comparisons (spec.md §4.4).
func (s *Surface) configureQueueTail() (any, bool) {
	if len(s.queue) == 0 {
		return nil, false
	}
	return s.queue[len(s.queue)-1].snapshot, true
}

// pendingSame dispatches the "is pending actually a change" check to the
// role, per spec.md §4.4.
func (s *Surface) pendingSame() bool {
	switch s.role {
	case RoleToplevel:
		return s.toplevelObj.pendingSame()
	case RolePopup:
		// A popup has no incremental negotiable fields the way a
		// toplevel does: every schedule_configure call represents an
		// actual placement change (initial map, or a reposition).
		return false
	default:
		return true
	}
}

// scheduleConfigure implements spec.md §4.4's coalescing rule: at most
// one idle task is ever pending per surface, and if pending collapses
// back to the last sent/queued snapshot before the idle task runs, the
// task is cancelled instead of sending a no-op configure.
func (s *Surface) scheduleConfigure() transport.Serial {
	same := s.pendingSame()

	if s.idle != nil {
		if !same {
			return s.nextSerial
		}
		s.idle.Cancel()
		s.idle = nil
		serial := s.nextSerial
		s.nextSerial = 0
		return serial
	}

	if same {
		return 0
	}

	s.nextSerial = s.shell.serials.Next()
	serial := s.nextSerial
	s.idle = s.shell.loop.ScheduleIdle(func() { s.runScheduledConfigure(serial) })
	return serial
}

func (s *Surface) runScheduledConfigure(serial transport.Serial) {
	s.idle = nil

	var snapshot any
	switch s.role {
	case RoleToplevel:
		snap := s.toplevelObj.snapshotForConfigure()
		snapshot = snap
		s.toplevelObj.emitConfigure(snap)
	case RolePopup:
		geom := s.popup.Geometry
		snapshot = geom
		if s.hasRepositionToken {
			s.hasRepositionToken = false
			s.popupObj.emitRepositioned(s.repositionToken)
		}
		s.popupObj.emitConfigure(geom)
	default:
		return
	}

	s.queue = append(s.queue, configureEntry{serial: serial, snapshot: snapshot})
	if s.signals.OnSendConfigure != nil {
		s.signals.OnSendConfigure(serial)
	}
}

// AckConfigure implements spec.md §4.4's ack_configure: serial must name
// a still-queued configure (smaller, already-superseded serials are
// implicitly acknowledged along with it); an unknown serial is a fatal
// wm_base protocol error.
func (s *Surface) AckConfigure(serial transport.Serial) error {
	if s.role == RoleNone {
		return s.postError(ifaceSurface, ErrSurfaceNotConstructed,
			"ack_configure on a surface with no role")
	}

	idx := -1
	for i, e := range s.queue {
		if e.serial == serial {
			idx = i
			break
		}
	}
	if idx == -1 {
		return s.postWMBaseError(ErrWMBaseInvalidSurfaceState,
			"ack_configure for unknown or already-superseded serial %d", serial)
	}

	matched := s.queue[idx]
	s.queue = s.queue[idx+1:]

	switch s.role {
	case RoleToplevel:
		s.toplevelObj.ackConfigure(matched.snapshot.(ToplevelSnapshot))
	case RolePopup:
		// Geometry is already authoritative the moment it's queued;
		// nothing further to replay.
	}

	s.configured = true
	s.configureSerial = serial
	return nil
}

// handleCommit implements spec.md §4.5's commit path.
func (s *Surface) handleCommit(hasBuffer bool) {
	if hasBuffer && !s.configured {
		s.postError(ifaceSurface, ErrSurfaceUnconfiguredBuffer,
			"commit with a buffer attached before any configure was acknowledged")
		return
	}

	if s.hasNextGeometry {
		s.geometry = s.nextGeometry
		s.hasNextGeometry = false
	}

	switch s.role {
	case RoleNone:
		s.postError(ifaceSurface, ErrSurfaceNotConstructed, "commit on a surface with no role")
		return

	case RoleToplevel:
		st := s.toplevel
		if !hasBuffer {
			if !st.Added {
				st.Added = true
				s.scheduleConfigure()
			}
			return
		}
		st.Current = st.Next

	case RolePopup:
		st := s.popup
		if !st.Committed {
			st.Committed = true
			s.scheduleConfigure()
		}
	}

	if s.configured && !s.added {
		s.added = true
		if s.shell.signals.OnNewSurface != nil {
			s.shell.signals.OnNewSurface(s)
		}
	}
}

func (s *Surface) removeChild(child *Surface) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// destroy tears the surface down: cancels any pending idle configure,
// forces its grab chain closed if it was a non-topmost popup, unlinks it
// from its parent's children and from the shell/client registries, and
// emits OnDestroy. Every destruction path — client request, reactive
// teardown from the underlying surface primitive, client disconnect —
// funnels through here.
func (s *Surface) destroy() {
	if s.idle != nil {
		s.idle.Cancel()
		s.idle = nil
	}

	if s.role == RolePopup {
		if s.popup.HasSeat {
			if seat, ok := s.shell.seatByID(s.popup.SeatID); ok {
				chain := s.shell.grabChain(seat)
				if chain.isTopmost(s.popupObj) {
					chain.remove(s.popupObj)
				} else {
					chain.teardown()
				}
			}
		}
		if parent := s.shell.surfaceByID(s.popup.ParentID); parent != nil {
			parent.removeChild(s)
		}
	}

	s.shell.forgetSurface(s.id)
	if s.client != nil {
		delete(s.client.surfaces, s.id)
	}

	if s.signals.OnDestroy != nil {
		s.signals.OnDestroy()
	}
}

// --- compositor-facing mutator API (spec.md §4.2/§4.4/§6) ---
//
// These are the compositor's half of the negotiation: they write into
// Pending and ask for a configure, as opposed to the client-facing
// Toplevel/Popup methods which read Current or write Next directly.

// SetSize proposes a new size to a toplevel client.
func (s *Surface) SetSize(w, h int32) transport.Serial {
	if s.role != RoleToplevel {
		return 0
	}
	s.toplevel.Pending.W = w
	s.toplevel.Pending.H = h
	return s.scheduleConfigure()
}

// SetActivated proposes the toplevel's activated state.
func (s *Surface) SetActivated(active bool) transport.Serial {
	if s.role != RoleToplevel {
		return 0
	}
	s.toplevel.Pending.Activated = active
	return s.scheduleConfigure()
}

// SetMaximized proposes the toplevel's maximized state.
func (s *Surface) SetMaximized(maximized bool) transport.Serial {
	if s.role != RoleToplevel {
		return 0
	}
	s.toplevel.Pending.Maximized = maximized
	return s.scheduleConfigure()
}

// SetFullscreen proposes the toplevel's fullscreen state.
func (s *Surface) SetFullscreen(fullscreen bool) transport.Serial {
	if s.role != RoleToplevel {
		return 0
	}
	s.toplevel.Pending.Fullscreen = fullscreen
	return s.scheduleConfigure()
}

// SetResizing proposes the toplevel's interactive-resizing state.
func (s *Surface) SetResizing(resizing bool) transport.Serial {
	if s.role != RoleToplevel {
		return 0
	}
	s.toplevel.Pending.Resizing = resizing
	return s.scheduleConfigure()
}

// SendClose asks a toplevel client to close itself.
func (s *Surface) SendClose() {
	if s.role == RoleToplevel {
		s.toplevelObj.emitClose()
	}
}

// PopupAt descends this surface's popup tree, hit-testing (x,y)
// surface-local coordinates against each child's computed geometry, and
// returns the deepest (topmost-rendered) popup under that point, or nil.
// Full input-region bookkeeping belongs to the generic surface
// primitive (spec.md §1); this stands in with geometry bounds.
func (s *Surface) PopupAt(x, y int32) *Surface {
	for i := len(s.children) - 1; i >= 0; i-- {
		child := s.children[i]
		if child.role != RolePopup {
			continue
		}
		g := child.popup.Geometry
		if x < g.X || x >= g.X+g.W || y < g.Y || y >= g.Y+g.H {
			continue
		}
		if deeper := child.PopupAt(x-g.X, y-g.Y); deeper != nil {
			return deeper
		}
		return child
	}
	return nil
}
