package diag

// Kind classifies a diagnostic. The set is closed: every failure of the
// module-composition pass maps to exactly one of these.
type Kind uint8

const (
	// KindUnknown is the zero value and never reported.
	KindUnknown Kind = iota
	// ImmutableViolation: state of an imported module touched without a grant.
	ImmutableViolation
	// InterfaceViolation: structural conformance failure.
	InterfaceViolation
	// NamespaceCollision: two declarations claim the same external name.
	NamespaceCollision
	// StructureException: malformed exports, duplicates, selector clashes and the rest.
	StructureException
)

func (k Kind) String() string {
	switch k {
	case ImmutableViolation:
		return "ImmutableViolation"
	case InterfaceViolation:
		return "InterfaceViolation"
	case NamespaceCollision:
		return "NamespaceCollision"
	case StructureException:
		return "StructureException"
	}
	return "Unknown"
}

// ID returns a short stable code used by machine-readable renderers.
func (k Kind) ID() string {
	switch k {
	case ImmutableViolation:
		return "MOD1001"
	case InterfaceViolation:
		return "MOD1002"
	case NamespaceCollision:
		return "MOD1003"
	case StructureException:
		return "MOD1004"
	}
	return "MOD0000"
}
