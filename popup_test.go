package xdgshell

import (
	"testing"

	"github.com/friedelschoen/xdgshell/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCenteredPositioner(t *testing.T) *Positioner {
	p := NewPositioner(nil)
	require.NoError(t, p.SetSize(10, 10))
	require.NoError(t, p.SetAnchorRect(0, 0, 100, 100))
	return p
}

func TestPopupGrabRequiresTopmostOrToplevelParent(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	parent, _, _ := r.newSurface(c)
	_, err := parent.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	child, _, _ := r.newSurface(c)
	popup, err := child.GetPopup(parent, newCenteredPositioner(t), PopupSignals{})
	require.NoError(t, err)

	seat := transport.NewFakeSeat(1)
	seat.AllowSerial(1)
	require.NoError(t, popup.Grab(seat, 1))
	assert.True(t, seat.HasPointerGrab())
	assert.True(t, seat.HasKeyboardGrab())
}

// TestPopupGrabRejectsWhenParentIsNotTopmost reproduces invariant 5: a
// second, independent popup cannot grab while another popup already owns
// the chain unless its parent is that popup.
func TestPopupGrabRejectsWhenParentIsNotTopmost(t *testing.T) {
	r := newTestRig(t)
	c, wmBase := r.newClient()
	toplevel, _, _ := r.newSurface(c)
	_, err := toplevel.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	firstChild, _, _ := r.newSurface(c)
	firstPopup, err := firstChild.GetPopup(toplevel, newCenteredPositioner(t), PopupSignals{})
	require.NoError(t, err)

	seat := transport.NewFakeSeat(1)
	seat.AllowSerial(1)
	require.NoError(t, firstPopup.Grab(seat, 1))

	// A second popup parented on the *toplevel*, not on firstPopup, must
	// be rejected: the toplevel is no longer topmost.
	secondChild, _, _ := r.newSurface(c)
	secondPopup, err := secondChild.GetPopup(toplevel, newCenteredPositioner(t), PopupSignals{})
	require.NoError(t, err)

	seat.AllowSerial(2)
	err = secondPopup.Grab(seat, 2)
	require.Error(t, err)
	require.Len(t, wmBase.Errors, 1)
	assert.Equal(t, ErrWMBaseNotTheTopmostPopup, wmBase.Errors[0].Code)
}

// TestPopupDestroyRequiresTopmost reproduces invariant 4: destroying a
// popup that is not the topmost of its grab chain is a protocol error.
func TestPopupDestroyRequiresTopmost(t *testing.T) {
	r := newTestRig(t)
	c, wmBase := r.newClient()
	toplevel, _, _ := r.newSurface(c)
	_, err := toplevel.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	firstChild, _, _ := r.newSurface(c)
	firstPopup, err := firstChild.GetPopup(toplevel, newCenteredPositioner(t), PopupSignals{})
	require.NoError(t, err)

	seat := transport.NewFakeSeat(1)
	seat.AllowSerial(1)
	require.NoError(t, firstPopup.Grab(seat, 1))

	secondChild, _, _ := r.newSurface(c)
	secondPopup, err := secondChild.GetPopup(firstChild, newCenteredPositioner(t), PopupSignals{})
	require.NoError(t, err)
	seat.AllowSerial(2)
	require.NoError(t, secondPopup.Grab(seat, 2))

	err = firstPopup.Destroy()
	require.Error(t, err)
	require.Len(t, wmBase.Errors, 1)
	assert.Equal(t, ErrWMBaseNotTheTopmostPopup, wmBase.Errors[0].Code)

	// Destroying the actually-topmost popup succeeds and leaves the
	// chain's grab installed for the remaining (now topmost) popup.
	require.NoError(t, secondPopup.Destroy())
	require.NoError(t, firstPopup.Destroy())
	assert.False(t, seat.HasPointerGrab())
	assert.False(t, seat.HasKeyboardGrab())
}

func TestPopupRepositionRecomputesGeometry(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	toplevel, _, _ := r.newSurface(c)
	_, err := toplevel.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	child, base, _ := r.newSurface(c)

	var repositionedTokens []uint32
	var configuredGeoms []Rect
	popup, err := child.GetPopup(toplevel, newCenteredPositioner(t), PopupSignals{
		OnSendRepositioned: func(token uint32) { repositionedTokens = append(repositionedTokens, token) },
		OnSendConfigure:    func(geom Rect) { configuredGeoms = append(configuredGeoms, geom) },
	})
	require.NoError(t, err)

	base.Commit(false)
	r.loop.RunIdle()
	assert.Empty(t, repositionedTokens, "the initial map must not look like a reposition")

	moved := NewPositioner(nil)
	require.NoError(t, moved.SetSize(20, 20))
	require.NoError(t, moved.SetAnchorRect(0, 0, 100, 100))
	require.NoError(t, moved.SetAnchor(AnchorTopLeft))
	require.NoError(t, moved.SetGravity(AnchorBottomRight))

	require.NoError(t, popup.Reposition(moved, 7))
	r.loop.RunIdle()

	assert.Equal(t, Rect{X: 0, Y: 0, W: 20, H: 20}, popup.state().Geometry)
	require.Equal(t, []uint32{7}, repositionedTokens, "reposition token must reach the client before the configure")
	require.Len(t, configuredGeoms, 2)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 20, H: 20}, configuredGeoms[1])
}
