package codec

import (
	"fmt"
	"strings"

	"github.com/mogaika/gltfscene/ndarray"
)

// UnsupportedEncodingError is returned for arrays the container cannot
// hold as-is: no accessor type exists for the dtype/shape pair, or the
// layout needs column padding, which is not implemented.
type UnsupportedEncodingError struct {
	Node      string
	Attribute string
	DType     ndarray.DType
	Shape     []int
	Reason    string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("node %q: %s: cannot encode %v array of shape %v: %s",
		e.Node, e.Attribute, e.DType, e.Shape, e.Reason)
}

// EmptyGeometryError is returned for a mesh node without vertices, lines
// and faces.
type EmptyGeometryError struct {
	Node string
}

func (e *EmptyGeometryError) Error() string {
	return fmt.Sprintf("node %q: geometry has no vertices, lines or faces", e.Node)
}

// DanglingReferenceError is returned when a component references a node
// that is not part of the tree.
type DanglingReferenceError struct {
	Node      string
	Component string
	Target    string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %q: component %s references missing node %s", e.Node, e.Component, e.Target)
}

// RequiredExtensionUnsupportedError is returned before any tree
// construction when the container requires extensions the registry lacks.
type RequiredExtensionUnsupportedError struct {
	Extensions []string
}

func (e *RequiredExtensionUnsupportedError) Error() string {
	return fmt.Sprintf("required extensions not supported: %s", strings.Join(e.Extensions, ", "))
}
