package xdgshell

import (
	"testing"

	"github.com/friedelschoen/xdgshell/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRig bundles a Shell with the fakes that drive it, so each test can
// build one with newTestRig() instead of repeating the wiring.
type testRig struct {
	t       *testing.T
	loop    *transport.FakeEventLoop
	serials *transport.AtomicSerialSource
	shell   *Shell
}

func newTestRig(t *testing.T) *testRig {
	loop := transport.NewFakeEventLoop()
	serials := &transport.AtomicSerialSource{}
	shell := NewShell(loop, serials, ShellConfig{})
	return &testRig{t: t, loop: loop, serials: serials, shell: shell}
}

// newClient registers a client with a fresh FakeResource standing in for
// its xdg_wm_base wire object.
func (r *testRig) newClient() (*Client, *transport.FakeResource) {
	res := &transport.FakeResource{}
	return r.shell.NewClient(res, ClientSignals{}), res
}

// newSurface creates a role-less xdg_surface for client, backed by a
// fresh FakeBaseSurface.
func (r *testRig) newSurface(c *Client) (*Surface, *transport.FakeBaseSurface, *transport.FakeResource) {
	base := transport.NewFakeBaseSurface()
	res := &transport.FakeResource{}
	s, err := c.CreateSurface(base, res)
	require.NoError(r.t, err)
	return s, base, res
}

func TestShellCreateSurfaceRejectsBufferAlreadyAttached(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()

	base := transport.NewFakeBaseSurface()
	base.Commit(true)

	res := &transport.FakeResource{}
	_, err := c.CreateSurface(base, res)
	require.Error(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSurfaceUnconfiguredBuffer, res.Errors[0].Code)
}

func TestShellGetToplevelThenGetPopupIsRoleConflict(t *testing.T) {
	r := newTestRig(t)
	c, wmBase := r.newClient()
	s, _, _ := r.newSurface(c)

	_, err := s.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	pos := NewPositioner(nil)
	require.NoError(t, pos.SetSize(10, 10))
	require.NoError(t, pos.SetAnchorRect(0, 0, 10, 10))

	// get_popup errors are wm_base-class (invariant violations are
	// reported against the shell singleton, not the offending surface).
	_, err = s.GetPopup(s, pos, PopupSignals{})
	require.Error(t, err)
	require.Len(t, wmBase.Errors, 1)
	assert.Equal(t, ErrWMBaseRole, wmBase.Errors[0].Code)
}

func TestShellDestroyClientDestroysOwnedSurfaces(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, _, _ := r.newSurface(c)

	destroyed := false
	s.SetSignals(SurfaceSignals{OnDestroy: func() { destroyed = true }})

	c.Destroy()
	assert.True(t, destroyed)
	assert.Nil(t, r.shell.surfaceByID(s.id))
}
