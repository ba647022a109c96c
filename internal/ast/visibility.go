package ast

// Visibility описывает, откуда функцию можно вызвать.
type Visibility uint8

const (
	VisInternal Visibility = iota
	VisExternal
	VisDeploy
)

func (v Visibility) String() string {
	switch v {
	case VisExternal:
		return "external"
	case VisDeploy:
		return "deploy"
	default:
		return "internal"
	}
}
