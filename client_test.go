package xdgshell

import (
	"testing"

	"github.com/friedelschoen/xdgshell/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPongMatchingSerialCancelsTimer(t *testing.T) {
	r := newTestRig(t)
	var pinged transport.Serial
	res := &transport.FakeResource{}
	c := r.shell.NewClient(res, ClientSignals{
		OnSendPing: func(s transport.Serial) { pinged = s },
	})

	serial := c.Ping()
	assert.Equal(t, serial, pinged)
	assert.True(t, c.hasPing)

	c.Pong(serial)
	assert.False(t, c.hasPing)
}

func TestClientPongWithMismatchedSerialIsIgnored(t *testing.T) {
	r := newTestRig(t)
	res := &transport.FakeResource{}
	c := r.shell.NewClient(res, ClientSignals{})

	serial := c.Ping()
	c.Pong(serial + 1)
	assert.True(t, c.hasPing, "a pong for the wrong serial must not clear the outstanding ping")
}

// TestClientPingTimeoutFansOutToEverySurface reproduces spec.md §4.7:
// expiry of the client's single ping timer notifies every surface the
// client owns, not just one.
func TestClientPingTimeoutFansOutToEverySurface(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s1, _, _ := r.newSurface(c)
	s2, _, _ := r.newSurface(c)

	var timedOut []transport.SurfaceID
	s1.SetSignals(SurfaceSignals{OnPingTimeout: func() { timedOut = append(timedOut, s1.id) }})
	s2.SetSignals(SurfaceSignals{OnPingTimeout: func() { timedOut = append(timedOut, s2.id) }})

	c.Ping()
	require.True(t, c.hasPing)

	r.loop.ExpireTimers()

	assert.False(t, c.hasPing)
	assert.ElementsMatch(t, []transport.SurfaceID{s1.id, s2.id}, timedOut)
}
