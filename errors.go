package xdgshell

import "fmt"

// Error codes, numbered per the upstream xdg-shell-stable protocol so a
// real client library decodes them the same way it would from any other
// compositor.
const (
	ErrWMBaseRole                uint32 = 0
	ErrWMBaseDefunctSurfaces     uint32 = 1
	ErrWMBaseNotTheTopmostPopup  uint32 = 2
	ErrWMBaseInvalidPopupParent  uint32 = 3
	ErrWMBaseInvalidSurfaceState uint32 = 4
	ErrWMBaseInvalidPositioner   uint32 = 5
	ErrWMBaseUnresponsive        uint32 = 6

	ErrSurfaceNotConstructed     uint32 = 1
	ErrSurfaceAlreadyConstructed uint32 = 2
	ErrSurfaceUnconfiguredBuffer uint32 = 3
	ErrSurfaceInvalidSerial      uint32 = 4
	ErrSurfaceInvalidSize        uint32 = 5

	ErrPositionerInvalidInput uint32 = 0

	ErrPopupInvalidGrab uint32 = 0
)

// Interface names, used only for error messages and logging.
const (
	ifaceWMBase     = "xdg_wm_base"
	ifaceSurface    = "xdg_surface"
	ifacePositioner = "xdg_positioner"
	ifaceToplevel   = "xdg_toplevel"
	ifacePopup      = "xdg_popup"
)

// ProtocolError models a client protocol violation: fatal to the
// connection once posted. It carries enough to post itself on any
// transport.Resource and to be inspected by tests without a resource at
// all.
type ProtocolError struct {
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s protocol error %d: %s", e.Interface, e.Code, e.Message)
}

func newProtocolError(iface string, code uint32, format string, args ...any) *ProtocolError {
	return &ProtocolError{Interface: iface, Code: code, Message: fmt.Sprintf(format, args...)}
}
