package xdgshell

import (
	"testing"

	"github.com/friedelschoen/xdgshell/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceCommitWithBufferBeforeConfigureIsProtocolError(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, base, res := r.newSurface(c)
	_, err := s.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	base.Commit(true)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSurfaceUnconfiguredBuffer, res.Errors[0].Code)
}

func TestSurfaceAckUnknownSerialIsFatal(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, _, _ := r.newSurface(c)
	_, err := s.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	err = s.AckConfigure(transport.Serial(4242))
	require.Error(t, err)

	perr, ok := err.(*ProtocolError)
	require.True(t, ok)
	assert.Equal(t, ErrWMBaseInvalidSurfaceState, perr.Code)
}

func TestSurfaceCommitWithNoRoleIsProtocolError(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, base, res := r.newSurface(c)

	base.Commit(false)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSurfaceNotConstructed, res.Errors[0].Code)
}

func TestSurfaceSetWindowGeometryRejectsNonPositiveSize(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, _, res := r.newSurface(c)

	err := s.SetWindowGeometry(0, 0, 0, 10)
	require.Error(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSurfaceInvalidSize, res.Errors[0].Code)
}

func TestSurfaceSetWindowGeometryAppliesOnNextCommit(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	s, base, _ := r.newSurface(c)
	_, err := s.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	require.NoError(t, s.SetWindowGeometry(1, 2, 300, 400))
	assert.Zero(t, s.geometry.W, "geometry must not change before the next commit")

	base.Commit(false)
	assert.Equal(t, Rect{X: 1, Y: 2, W: 300, H: 400}, s.geometry)
}

func TestSurfacePopupAtHitTestsNestedGeometry(t *testing.T) {
	r := newTestRig(t)
	c, _ := r.newClient()
	parent, _, _ := r.newSurface(c)
	_, err := parent.GetToplevel(ToplevelSignals{})
	require.NoError(t, err)

	pos := NewPositioner(nil)
	require.NoError(t, pos.SetSize(50, 50))
	require.NoError(t, pos.SetAnchorRect(0, 0, 10, 10))
	pos.SetOffset(20, 20)

	child, _, _ := r.newSurface(c)
	_, err = child.GetPopup(parent, pos, PopupSignals{})
	require.NoError(t, err)

	// anchor-rect center (5,5) plus offset (20,20) minus half the 50x50
	// size in both axes (default gravity) = (0,0).
	assert.Equal(t, Rect{X: 0, Y: 0, W: 50, H: 50}, child.popup.Geometry)

	hit := parent.PopupAt(10, 10)
	assert.Same(t, child, hit)

	miss := parent.PopupAt(60, 60)
	assert.Nil(t, miss)
}
