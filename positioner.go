package xdgshell

import (
	"fmt"

	"github.com/friedelschoen/xdgshell/transport"
)

// Anchor enumerates the nine anchor/gravity points xdg_positioner
// supports; the same enumeration is reused for gravity (spec.md §3).
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

func (a Anchor) valid() bool { return a >= AnchorNone && a <= AnchorBottomRight }

func (a Anchor) hasTop() bool    { return a == AnchorTop || a == AnchorTopLeft || a == AnchorTopRight }
func (a Anchor) hasBottom() bool { return a == AnchorBottom || a == AnchorBottomLeft || a == AnchorBottomRight }
func (a Anchor) hasLeft() bool   { return a == AnchorLeft || a == AnchorTopLeft || a == AnchorBottomLeft }
func (a Anchor) hasRight() bool  { return a == AnchorRight || a == AnchorTopRight || a == AnchorBottomRight }

// Rect is a plain x,y,w,h rectangle, used both for the positioner's
// anchor rect and for any committed window geometry.
type Rect struct {
	X, Y, W, H int32
}

// Size is a width/height pair.
type Size struct {
	W, H int32
}

// Offset is an x/y pair.
type Offset struct {
	X, Y int32
}

// Positioner accumulates placement parameters and, once consumed at
// popup creation, computes an anchor-and-gravity geometry relative to a
// parent's window geometry (spec.md §4.1). It is mutable up to that
// point; xdg_positioner.destroy simply drops the reference.
type Positioner struct {
	resource transport.Resource

	anchorRect           Rect
	size                 Size
	offset               Offset
	anchor               Anchor
	gravity              Anchor
	constraintAdjustment uint32
}

// NewPositioner constructs a positioner bound to its wire resource.
// resource may be nil in tests that only care about the pure geometry
// computation.
func NewPositioner(resource transport.Resource) *Positioner {
	return &Positioner{resource: resource}
}

func (p *Positioner) postInvalidInput(format string, args ...any) error {
	err := newProtocolError(ifacePositioner, ErrPositionerInvalidInput, format, args...)
	if p.resource != nil {
		p.resource.PostError(err.Code, err.Message)
	}
	return err
}

// SetSize sets the desired popup size. Both dimensions must be strictly
// positive; an invalid call raises POSITIONER_INVALID_INPUT and leaves
// the positioner unchanged.
func (p *Positioner) SetSize(w, h int32) error {
	if w < 1 || h < 1 {
		return p.postInvalidInput("size must be positive, got %dx%d", w, h)
	}
	p.size = Size{W: w, H: h}
	return nil
}

// SetAnchorRect sets the rectangle, relative to the parent's window
// geometry, that the popup is anchored against.
func (p *Positioner) SetAnchorRect(x, y, w, h int32) error {
	if w < 1 || h < 1 {
		return p.postInvalidInput("anchor rect must have positive size, got %dx%d", w, h)
	}
	p.anchorRect = Rect{X: x, Y: y, W: w, H: h}
	return nil
}

// SetAnchor sets which edge/corner of the anchor rect the popup is
// anchored to.
func (p *Positioner) SetAnchor(a Anchor) error {
	if !a.valid() {
		return p.postInvalidInput("invalid anchor value %d", a)
	}
	p.anchor = a
	return nil
}

// SetGravity sets which direction, from the anchor point, the popup
// grows towards.
func (p *Positioner) SetGravity(g Anchor) error {
	if !g.valid() {
		return p.postInvalidInput("invalid gravity value %d", g)
	}
	p.gravity = g
	return nil
}

// SetConstraintAdjustment sets the opaque constraint-adjustment bitmask.
// The core never interprets it; it is surfaced for compositor policy
// (spec.md §9's "constraint adjustment" design note).
func (p *Positioner) SetConstraintAdjustment(mask uint32) {
	p.constraintAdjustment = mask
}

// SetOffset sets the additional offset applied after anchor and gravity.
func (p *Positioner) SetOffset(x, y int32) {
	p.offset = Offset{X: x, Y: y}
}

// ConstraintAdjustment returns the raw bitmask for compositor policy to
// interpret; the core never reads it itself.
func (p *Positioner) ConstraintAdjustment() uint32 { return p.constraintAdjustment }

// validateForConsumption enforces the precondition at popup creation:
// size.w > 0 && anchor_rect.w > 0. A positioner that has never had
// SetSize/SetAnchorRect called successfully fails this.
func (p *Positioner) validateForConsumption() error {
	if p.size.W <= 0 || p.anchorRect.W <= 0 {
		return fmt.Errorf("positioner has no valid size/anchor rect")
	}
	return nil
}

// Geometry computes the popup's placement relative to parentGeometry,
// following spec.md §4.1's five-step algorithm: start from the offset
// and size, shift by the anchor point, then shift again by gravity. The
// constraint-adjustment mask is intentionally not applied here; that
// hook belongs to compositor policy (spec.md §4.1 step 6, §9).
func (p *Positioner) Geometry(parentGeometry Rect) Rect {
	x := p.offset.X
	y := p.offset.Y
	w := p.size.W
	h := p.size.H

	ar := p.anchorRect

	switch {
	case p.anchor.hasTop():
		y += ar.Y
	case p.anchor.hasBottom():
		y += ar.Y + ar.H
	default:
		y += ar.Y + ar.H/2
	}

	switch {
	case p.anchor.hasLeft():
		x += ar.X
	case p.anchor.hasRight():
		x += ar.X + ar.W
	default:
		x += ar.X + ar.W/2
	}

	switch {
	case p.gravity.hasTop():
		y -= h
	case p.gravity.hasBottom():
		// unchanged
	default:
		y -= h / 2
	}

	switch {
	case p.gravity.hasLeft():
		x -= w
	case p.gravity.hasRight():
		// unchanged
	default:
		x -= w / 2
	}

	return Rect{X: x, Y: y, W: w, H: h}
}
