package xdgshell

import "github.com/friedelschoen/xdgshell/transport"

// ClientSignals carries the one downward event a client's xdg_wm_base
// binding can raise: the ping itself. Emitting the wire event is the
// embedding dispatcher's job, as with every other Send* signal in this
// module.
type ClientSignals struct {
	OnSendPing func(serial transport.Serial)
}

// Client is the per-connection state a bound xdg_wm_base owns: every
// xdg_surface it has created, and the single outstanding ping timer
// described in spec.md §4.7. Real xdg_wm_base pings are client-wide, not
// per-surface, so a single pingSerial/pingTimer pair is enough; a
// timeout fans out to every surface the client owns.
type Client struct {
	id             transport.ClientID
	shell          *Shell
	wmBaseResource transport.Resource

	surfaces map[transport.SurfaceID]*Surface

	hasPing    bool
	pingSerial transport.Serial
	pingTimer  transport.Cancelable

	signals ClientSignals
}

// SetSignals installs the downward-event handlers for this client.
func (c *Client) SetSignals(s ClientSignals) { c.signals = s }

// ID returns the stable identifier other shell-owned objects resolve
// this client through.
func (c *Client) ID() transport.ClientID { return c.id }

func (c *Client) postError(code uint32, message string) {
	if c.wmBaseResource != nil {
		c.wmBaseResource.PostError(code, message)
	}
}

// CreateSurface creates an xdg_surface for base, rejecting one that
// already carries a buffer (spec.md §4.4's construction precondition).
func (c *Client) CreateSurface(base transport.BaseSurface, resource transport.Resource) (*Surface, error) {
	return c.shell.createSurface(c, base, resource)
}

// CreatePositioner creates an xdg_positioner bound to resource. A
// positioner does not belong to a client's surface set since it is never
// itself part of the surface tree; the client keeps no reference to it,
// and Destroy does not touch it.
func (c *Client) CreatePositioner(resource transport.Resource) *Positioner {
	return NewPositioner(resource)
}

// Ping arms the client's ping timer and reports the serial chosen for
// it, per spec.md §4.7. Arming again while a ping is already outstanding
// replaces it (the old serial is simply forgotten).
func (c *Client) Ping() transport.Serial {
	serial := c.shell.serials.Next()
	c.pingSerial = serial
	c.hasPing = true

	if c.pingTimer != nil {
		c.pingTimer.Cancel()
	}
	c.pingTimer = c.shell.loop.ScheduleTimer(c.shell.config.PingTimeout, c.onPingTimeout)

	if c.signals.OnSendPing != nil {
		c.signals.OnSendPing(serial)
	}
	return serial
}

// Pong acknowledges a ping. A pong for anything other than the single
// currently outstanding serial is silently ignored — late or duplicate
// pongs are not a protocol error (spec.md §4.7).
func (c *Client) Pong(serial transport.Serial) {
	if !c.hasPing || serial != c.pingSerial {
		return
	}
	c.hasPing = false
	if c.pingTimer != nil {
		c.pingTimer.Cancel()
		c.pingTimer = nil
	}
}

// onPingTimeout fires ping_timeout on every surface this client owns,
// per spec.md §4.7: unresponsiveness is a per-surface signal so the
// compositor can e.g. grey out every window of a hung client.
func (c *Client) onPingTimeout() {
	c.hasPing = false
	c.pingTimer = nil
	for _, s := range c.surfaces {
		if s.signals.OnPingTimeout != nil {
			s.signals.OnPingTimeout()
		}
	}
}

// Destroy tears down every surface the client owns and forgets the
// client itself, for use when the underlying connection is closing.
func (c *Client) Destroy() {
	if c.pingTimer != nil {
		c.pingTimer.Cancel()
		c.pingTimer = nil
	}

	owned := make([]*Surface, 0, len(c.surfaces))
	for _, s := range c.surfaces {
		owned = append(owned, s)
	}
	for _, s := range owned {
		s.destroy()
	}

	c.shell.forgetClient(c.id)
}
