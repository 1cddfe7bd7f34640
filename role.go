package xdgshell

// Role is a surface's role tag. A surface transitions role exactly once:
// None → Toplevel or None → Popup (spec.md §3 invariant 1). Go has no
// sum type, so Role is paired with two parallel *ToplevelState/*PopupState
// fields on Surface that are nil outside their matching role, rather
// than the source's role-enum-plus-parallel-pointers shape surviving as
// dangling pointers after a transition.
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
)

func (r Role) String() string {
	switch r {
	case RoleToplevel:
		return "toplevel"
	case RolePopup:
		return "popup"
	default:
		return "none"
	}
}
