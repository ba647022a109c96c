package abi

// Mutability is a function's state-interaction class.
type Mutability uint8

const (
	Nonpayable Mutability = iota
	Pure
	View
	Payable
)

func (m Mutability) String() string {
	switch m {
	case Pure:
		return "pure"
	case View:
		return "view"
	case Payable:
		return "payable"
	default:
		return "nonpayable"
	}
}

// ParseMutability maps a decorator or interface keyword to Mutability.
func ParseMutability(s string) (Mutability, bool) {
	switch s {
	case "pure":
		return Pure, true
	case "view":
		return View, true
	case "nonpayable":
		return Nonpayable, true
	case "payable":
		return Payable, true
	}
	return Nonpayable, false
}

// Compatible reports whether an implementation with mutability impl satisfies
// an interface requirement iface.
//
//	iface pure       <- pure
//	iface view       <- pure, view
//	iface nonpayable <- pure, view, nonpayable, payable
//	iface payable    <- payable
func Compatible(impl, iface Mutability) bool {
	switch iface {
	case Pure:
		return impl == Pure
	case View:
		return impl == Pure || impl == View
	case Nonpayable:
		return true
	case Payable:
		return impl == Payable
	}
	return false
}
