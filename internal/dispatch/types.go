package dispatch

import "errors"

var ErrTaskNotFound = errors.New("task not found")

// UnitKind describes how a task unit is laid out on disk.
type UnitKind int

const (
	// UnitScript is a single executable file at the top level of the
	// task collection.
	UnitScript UnitKind = iota
	// UnitDirEntryPoint is a directory containing the designated
	// entry-point file (self-contained task units carrying their own
	// dependencies next to the entry point).
	UnitDirEntryPoint
)

func (k UnitKind) String() string {
	switch k {
	case UnitScript:
		return "script"
	case UnitDirEntryPoint:
		return "dir"
	default:
		return "unknown"
	}
}

// Unit is one resolvable task: a name plus the executable path behind it.
type Unit struct {
	Name string
	Kind UnitKind
	Path string
}
