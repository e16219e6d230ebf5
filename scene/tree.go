// Package scene implements the scene graph: an arena of nodes addressed by
// stable ids, with parent/child links kept as id lists.
package scene

import (
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type Tree struct {
	nodes  []*Node
	byName map[string]NodeID
	root   NodeID
	hooks  Hooks

	globals map[string]Component
}

func NewTree(rootName string) (*Tree, error) {
	t := &Tree{
		byName:  make(map[string]NodeID),
		root:    InvalidNode,
		hooks:   NopHooks{},
		globals: make(map[string]Component),
	}
	root, err := t.NewNode(rootName)
	if err != nil {
		return nil, err
	}
	t.root = root.id
	return t, nil
}

func (t *Tree) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	t.hooks = h
}

func (t *Tree) Root() *Node { return t.nodes[t.root] }

func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func (t *Tree) mustNode(id NodeID) (*Node, error) {
	if n := t.Node(id); n != nil {
		return n, nil
	}
	return nil, errors.Wrapf(ErrNodeNotFound, "id %d", id)
}

// Len is the number of live nodes in the arena, attached or not.
func (t *Tree) Len() int { return len(t.byName) }

// NewNode creates a detached node. Names are unique tree-wide.
func (t *Tree) NewNode(name string) (*Node, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, ok := t.byName[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateName, "%q", name)
	}
	n := &Node{
		id:        NodeID(len(t.nodes)),
		name:      name,
		parent:    InvalidNode,
		tree:      t,
		Transform: IdentityTransform(),
	}
	t.nodes = append(t.nodes, n)
	t.byName[name] = n.id
	return n, nil
}

// Add creates a node and attaches it under parent.
func (t *Tree) Add(parent NodeID, name string) (*Node, error) {
	n, err := t.NewNode(name)
	if err != nil {
		return nil, err
	}
	if err := t.Attach(n.id, parent); err != nil {
		t.forget(n)
		return nil, err
	}
	return n, nil
}

func (t *Tree) Rename(id NodeID, name string) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	if name == n.name {
		return nil
	}
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := t.byName[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "%q", name)
	}
	delete(t.byName, n.name)
	n.name = name
	t.byName[name] = id
	return nil
}

func (t *Tree) FindByName(name string) (*Node, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// IsAncestor reports whether anc is id itself or one of its ancestors.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	for cur := id; cur != InvalidNode; {
		if cur == anc {
			return true
		}
		n := t.Node(cur)
		if n == nil {
			return false
		}
		cur = n.parent
	}
	return false
}

// Attach moves child under parent. A child that already has a parent is
// detached and attached in one step; if any hook vetoes the move, the
// child is put back at its old position.
func (t *Tree) Attach(childID, parentID NodeID) error {
	child, err := t.mustNode(childID)
	if err != nil {
		return err
	}
	parent, err := t.mustNode(parentID)
	if err != nil {
		return err
	}
	if childID == t.root {
		return errors.Wrapf(ErrRootNode, "attach %q", child.name)
	}
	if t.IsAncestor(childID, parentID) {
		return errors.Wrapf(ErrCycle, "%q under %q", child.name, parent.name)
	}
	if child.parent == parentID {
		return nil
	}

	var oldParent *Node
	oldIndex := -1
	if child.parent != InvalidNode {
		oldParent = t.nodes[child.parent]
		if err := t.hooks.BeforeDetach(child, oldParent); err != nil {
			return errors.Wrapf(err, "detach %q", child.name)
		}
		oldIndex = t.unlink(child)
	}

	restore := func() {
		if parent.indexOfChild(childID) >= 0 {
			t.unlink(child)
		}
		if oldParent != nil {
			t.link(child, oldParent, oldIndex)
		}
	}

	if err := t.hooks.BeforeAttach(child, parent); err != nil {
		restore()
		return errors.Wrapf(err, "attach %q to %q", child.name, parent.name)
	}

	t.link(child, parent, -1)
	if child.parent != parentID || parent.indexOfChild(childID) < 0 {
		restore()
		return errors.Errorf("attach %q to %q: parent link not established", child.name, parent.name)
	}

	if oldParent != nil {
		t.hooks.AfterDetach(child, oldParent)
	}
	t.hooks.AfterAttach(child, parent)
	return nil
}

// Detach unlinks child from its parent. The node stays in the arena and
// can be attached again; use Remove to drop it.
func (t *Tree) Detach(childID NodeID) error {
	child, err := t.mustNode(childID)
	if err != nil {
		return err
	}
	if child.parent == InvalidNode {
		return errors.Wrapf(ErrNotAttached, "%q", child.name)
	}
	parent := t.nodes[child.parent]
	if err := t.hooks.BeforeDetach(child, parent); err != nil {
		return errors.Wrapf(err, "detach %q", child.name)
	}
	t.unlink(child)
	t.hooks.AfterDetach(child, parent)
	return nil
}

// Remove detaches id and drops it and its whole subtree from the arena.
func (t *Tree) Remove(id NodeID) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	if id == t.root {
		return errors.Wrapf(ErrRootNode, "remove %q", n.name)
	}
	if n.parent != InvalidNode {
		if err := t.Detach(id); err != nil {
			return err
		}
	}
	var drop []*Node
	t.walk(n, func(n *Node) error {
		drop = append(drop, n)
		return nil
	})
	for _, d := range drop {
		t.forget(d)
	}
	return nil
}

func (t *Tree) forget(n *Node) {
	delete(t.byName, n.name)
	t.nodes[n.id] = nil
	n.tree = nil
}

func (t *Tree) unlink(child *Node) int {
	parent := t.nodes[child.parent]
	i := parent.indexOfChild(child.id)
	if i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
	child.parent = InvalidNode
	return i
}

func (t *Tree) link(child, parent *Node, index int) {
	if index < 0 || index > len(parent.children) {
		parent.children = append(parent.children, child.id)
	} else {
		parent.children = append(parent.children, InvalidNode)
		copy(parent.children[index+1:], parent.children[index:])
		parent.children[index] = child.id
	}
	child.parent = parent.id
}

// Walk visits the nodes reachable from the root in pre-order.
func (t *Tree) Walk(fn func(n *Node) error) error {
	return t.walk(t.Root(), fn)
}

func (t *Tree) WalkFrom(id NodeID, fn func(n *Node) error) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	return t.walk(n, fn)
}

func (t *Tree) walk(n *Node, fn func(n *Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := t.walk(t.nodes[c], fn); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns the nodes reachable from the root in pre-order.
func (t *Tree) Nodes() []*Node {
	var out []*Node
	t.Walk(func(n *Node) error {
		out = append(out, n)
		return nil
	})
	return out
}

func (t *Tree) Path(id NodeID) string {
	var parts []string
	for cur := id; cur != InvalidNode; {
		n := t.Node(cur)
		if n == nil {
			break
		}
		parts = append(parts, n.name)
		cur = n.parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (t *Tree) WorldMatrix(id NodeID) mgl32.Mat4 {
	m := mgl32.Ident4()
	for cur := id; cur != InvalidNode; {
		n := t.Node(cur)
		if n == nil {
			break
		}
		m = n.Transform.Matrix().Mul4(m)
		cur = n.parent
	}
	return m
}

// SetGlobal stores a document-scoped component, replacing any previous
// one of the same kind.
func (t *Tree) SetGlobal(c Component) {
	t.globals[c.ExtensionName()] = c
}

func (t *Tree) Global(extension string) (Component, bool) {
	c, ok := t.globals[extension]
	return c, ok
}

// Globals returns the document-scoped components sorted by extension.
func (t *Tree) Globals() []Component {
	names := make([]string, 0, len(t.globals))
	for name := range t.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Component, len(names))
	for i, name := range names {
		out[i] = t.globals[name]
	}
	return out
}
