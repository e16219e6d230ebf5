package scene

import (
	"github.com/pkg/errors"
)

type NodeID int

const InvalidNode NodeID = -1

type NodeKind int

const (
	KindEmpty NodeKind = iota
	KindObject
	KindCamera
	KindLight
)

func (k NodeKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindCamera:
		return "camera"
	case KindLight:
		return "light"
	default:
		return "empty"
	}
}

// Node is a positioned element of the tree. Hierarchy fields are owned
// by the Tree and change only through Attach/Detach.
type Node struct {
	id       NodeID
	name     string
	parent   NodeID
	children []NodeID
	tree     *Tree

	Transform Transform

	Camera   *Camera
	Light    *Light
	Geometry Geometry
	Material *Material

	// Extras is passed through the container untouched.
	Extras map[string]interface{}

	components []Component
}

func (n *Node) ID() NodeID     { return n.id }
func (n *Node) Name() string   { return n.name }
func (n *Node) Parent() NodeID { return n.parent }
func (n *Node) Tree() *Tree    { return n.tree }

func (n *Node) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

func (n *Node) NumChildren() int { return len(n.children) }

func (n *Node) Kind() NodeKind {
	switch {
	case n.Camera != nil:
		return KindCamera
	case n.Light != nil:
		return KindLight
	case n.Geometry != nil:
		return KindObject
	}
	return KindEmpty
}

func (n *Node) Components() []Component {
	return append([]Component(nil), n.components...)
}

func (n *Node) Component(extension string) (Component, bool) {
	for _, c := range n.components {
		if c.ExtensionName() == extension {
			return c, true
		}
	}
	return nil, false
}

// AddComponent attaches c. A node holds at most one component per
// extension identifier.
func (n *Node) AddComponent(c Component) error {
	if _, ok := n.Component(c.ExtensionName()); ok {
		return errors.Wrapf(ErrDuplicateComponent, "node %q: %s", n.name, c.ExtensionName())
	}
	n.components = append(n.components, c)
	return nil
}

func (n *Node) RemoveComponent(extension string) bool {
	for i, c := range n.components {
		if c.ExtensionName() == extension {
			n.components = append(n.components[:i], n.components[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) indexOfChild(id NodeID) int {
	for i, c := range n.children {
		if c == id {
			return i
		}
	}
	return -1
}
