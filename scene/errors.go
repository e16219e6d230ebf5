package scene

import "github.com/pkg/errors"

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrDuplicateName      = errors.New("duplicate node name")
	ErrEmptyName          = errors.New("empty node name")
	ErrCycle              = errors.New("attach would create a cycle")
	ErrNotAttached        = errors.New("node has no parent")
	ErrRootNode           = errors.New("operation not allowed on root node")
	ErrDuplicateComponent = errors.New("component of this kind already attached")
)
