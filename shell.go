package xdgshell

import (
	"log/slog"
	"time"

	"github.com/friedelschoen/xdgshell/transport"
)

// defaultPingTimeout matches the 10-second unresponsive window the real
// xdg-shell protocol documentation recommends (spec.md §4.7).
const defaultPingTimeout = 10 * time.Second

// ShellConfig carries the knobs a compositor can set when constructing a
// Shell, mirroring the teacher's flat Config struct (ctxmenu.go's
// Config) rather than a builder or options-function API.
type ShellConfig struct {
	PingTimeout time.Duration
	Logger      *slog.Logger
}

// ShellSignals carries the one signal that belongs to the shell as a
// whole rather than to any one surface: new_surface fires exactly once
// per surface, the first time it becomes both role-configured and
// committed (spec.md §4.5, §6).
type ShellSignals struct {
	OnNewSurface func(*Surface)
}

// Shell is the xdg_wm_base singleton: the factory for clients, surfaces
// and positioners, and the registry every Surface/Popup/Client resolves
// its non-owning ID references through (spec.md §9's back-reference
// design note).
type Shell struct {
	config  ShellConfig
	loop    transport.EventLoop
	serials transport.SerialSource

	clients    map[transport.ClientID]*Client
	surfaces   map[transport.SurfaceID]*Surface
	grabChains map[transport.SeatID]*PopupGrabChain

	nextClientID  transport.ClientID
	nextSurfaceID transport.SurfaceID

	signals ShellSignals
}

// NewShell constructs a Shell against the embedding display server's
// event loop and shared serial counter. loop and serials are the
// external collaborators spec.md §1 places out of scope; config is
// optional, with PingTimeout defaulting to 10s and Logger to slog's
// default handler.
func NewShell(loop transport.EventLoop, serials transport.SerialSource, config ShellConfig) *Shell {
	if config.PingTimeout <= 0 {
		config.PingTimeout = defaultPingTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Shell{
		config:     config,
		loop:       loop,
		serials:    serials,
		clients:    make(map[transport.ClientID]*Client),
		surfaces:   make(map[transport.SurfaceID]*Surface),
		grabChains: make(map[transport.SeatID]*PopupGrabChain),
	}
}

// SetSignals installs the shell-level signal handlers.
func (sh *Shell) SetSignals(s ShellSignals) { sh.signals = s }

// NewClient binds a new xdg_wm_base instance, returning the Client that
// owns every surface created against it.
func (sh *Shell) NewClient(wmBaseResource transport.Resource, signals ClientSignals) *Client {
	sh.nextClientID++
	c := &Client{
		id:             sh.nextClientID,
		shell:          sh,
		wmBaseResource: wmBaseResource,
		surfaces:       make(map[transport.SurfaceID]*Surface),
		signals:        signals,
	}
	sh.clients[c.id] = c
	return c
}

func (sh *Shell) createSurface(client *Client, base transport.BaseSurface, resource transport.Resource) (*Surface, error) {
	if base.HasBuffer() {
		err := newProtocolError(ifaceSurface, ErrSurfaceUnconfiguredBuffer,
			"get_xdg_surface called on a wl_surface that already has a buffer attached")
		if resource != nil {
			resource.PostError(err.Code, err.Message)
		}
		return nil, err
	}

	sh.nextSurfaceID++
	s := &Surface{
		id:       sh.nextSurfaceID,
		shell:    sh,
		client:   client,
		resource: resource,
		base:     base,
		logger:   sh.config.Logger,
	}
	base.OnCommit(s.handleCommit)
	base.OnDestroy(s.destroy)

	sh.surfaces[s.id] = s
	client.surfaces[s.id] = s
	return s, nil
}

func (sh *Shell) surfaceByID(id transport.SurfaceID) *Surface {
	return sh.surfaces[id]
}

// seatByID resolves a seat from whichever grab chain was created for it.
// A seat only has an entry once something has grabbed against it via
// grabChain, which is always true by the time a popup needs to resolve
// the seat holding its own grab.
func (sh *Shell) seatByID(id transport.SeatID) (transport.Seat, bool) {
	chain, ok := sh.grabChains[id]
	if !ok {
		return nil, false
	}
	return chain.seat, true
}

func (sh *Shell) forgetSurface(id transport.SurfaceID) {
	delete(sh.surfaces, id)
}

func (sh *Shell) forgetClient(id transport.ClientID) {
	delete(sh.clients, id)
}

// grabChain returns the popup grab chain for seat, creating it on first
// use. Chains are never removed from the map once created; an empty
// chain (empty() == true) just sits idle until reused, which is simpler
// than reference-counting it against seat lifetime the shell doesn't
// otherwise track.
func (sh *Shell) grabChain(seat transport.Seat) *PopupGrabChain {
	id := seat.ID()
	chain, ok := sh.grabChains[id]
	if !ok {
		chain = newPopupGrabChain(sh, seat)
		sh.grabChains[id] = chain
	}
	return chain
}
