package ast

type (
	FuncID      uint32
	VarID       uint32
	InterfaceID uint32
	StructID    uint32
)

const (
	NoFuncID      FuncID      = 0
	NoVarID       VarID       = 0
	NoInterfaceID InterfaceID = 0
	NoStructID    StructID    = 0
)

func (id FuncID) IsValid() bool      { return id != NoFuncID }
func (id VarID) IsValid() bool       { return id != NoVarID }
func (id InterfaceID) IsValid() bool { return id != NoInterfaceID }
func (id StructID) IsValid() bool    { return id != NoStructID }
