package scene

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T) (*Tree, *Node, *Node, *Node) {
	tree, err := NewTree("root")
	require.NoError(t, err)
	a, err := tree.Add(tree.Root().ID(), "A")
	require.NoError(t, err)
	b, err := tree.Add(a.ID(), "B")
	require.NoError(t, err)
	c, err := tree.Add(b.ID(), "C")
	require.NoError(t, err)
	return tree, a, b, c
}

func TestAttachRejectsCycle(t *testing.T) {
	tree, a, b, c := buildChain(t)

	err := tree.Attach(a.ID(), c.ID())
	require.True(t, errors.Is(err, ErrCycle))
	assert.Equal(t, tree.Root().ID(), a.Parent(), "parent must be unchanged")
	assert.Equal(t, []NodeID{b.ID()}, a.Children())

	err = tree.Attach(b.ID(), b.ID())
	require.True(t, errors.Is(err, ErrCycle))
	assert.Equal(t, a.ID(), b.Parent())

	err = tree.Attach(tree.Root().ID(), c.ID())
	require.True(t, errors.Is(err, ErrRootNode))
}

func TestAttachMovesChild(t *testing.T) {
	tree, a, b, c := buildChain(t)

	require.NoError(t, tree.Attach(c.ID(), a.ID()))
	assert.Equal(t, a.ID(), c.Parent())
	assert.Equal(t, []NodeID{b.ID(), c.ID()}, a.Children())
	assert.Empty(t, b.Children())
	assert.Equal(t, "root/A/C", tree.Path(c.ID()))
}

func TestNamesAreUnique(t *testing.T) {
	tree, a, _, _ := buildChain(t)

	_, err := tree.Add(a.ID(), "B")
	require.True(t, errors.Is(err, ErrDuplicateName))
	_, err = tree.NewNode("")
	require.True(t, errors.Is(err, ErrEmptyName))

	require.True(t, errors.Is(tree.Rename(a.ID(), "C"), ErrDuplicateName))
	require.NoError(t, tree.Rename(a.ID(), "A2"))
	n, ok := tree.FindByName("A2")
	require.True(t, ok)
	assert.Equal(t, a, n)
	_, ok = tree.FindByName("A")
	assert.False(t, ok)
}

type vetoHooks struct {
	NopHooks
	vetoAttach bool
	log        []string
}

func (h *vetoHooks) BeforeAttach(child, parent *Node) error {
	if h.vetoAttach {
		return errors.New("vetoed")
	}
	return nil
}

func (h *vetoHooks) AfterAttach(child, parent *Node) {
	h.log = append(h.log, "attach "+child.Name()+" "+parent.Name())
}

func (h *vetoHooks) AfterDetach(child, parent *Node) {
	h.log = append(h.log, "detach "+child.Name()+" "+parent.Name())
}

func TestHookVetoRestoresParent(t *testing.T) {
	tree, a, b, c := buildChain(t)
	d, err := tree.Add(a.ID(), "D")
	require.NoError(t, err)

	hooks := &vetoHooks{vetoAttach: true}
	tree.SetHooks(hooks)

	require.Error(t, tree.Attach(b.ID(), d.ID()))
	assert.Equal(t, a.ID(), b.Parent())
	assert.Equal(t, []NodeID{b.ID(), d.ID()}, a.Children(), "sibling order restored")
	assert.Empty(t, hooks.log)

	hooks.vetoAttach = false
	require.NoError(t, tree.Attach(c.ID(), d.ID()))
	assert.Equal(t, []string{"detach C B", "attach C D"}, hooks.log)
}

func TestDetachAndRemove(t *testing.T) {
	tree, a, b, c := buildChain(t)

	require.NoError(t, tree.Detach(b.ID()))
	assert.Equal(t, InvalidNode, b.Parent())
	assert.Empty(t, a.Children())
	require.True(t, errors.Is(tree.Detach(b.ID()), ErrNotAttached))
	assert.Equal(t, 4, tree.Len())
	assert.Len(t, tree.Nodes(), 2)

	require.NoError(t, tree.Remove(b.ID()))
	assert.Equal(t, 2, tree.Len())
	assert.Nil(t, tree.Node(c.ID()))
	_, ok := tree.FindByName("C")
	assert.False(t, ok)

	_, err := tree.Add(a.ID(), "C")
	require.NoError(t, err, "removed names are free again")
}

func TestWalkPreOrder(t *testing.T) {
	tree, a, _, _ := buildChain(t)
	_, err := tree.Add(a.ID(), "D")
	require.NoError(t, err)

	var names []string
	require.NoError(t, tree.Walk(func(n *Node) error {
		names = append(names, n.Name())
		return nil
	}))
	assert.Equal(t, []string{"root", "A", "B", "C", "D"}, names)
}

func TestComponentsUniquePerExtension(t *testing.T) {
	tree, a, _, _ := buildChain(t)
	_ = tree
	require.NoError(t, a.AddComponent(&testComponent{}))
	require.True(t, errors.Is(a.AddComponent(&testComponent{}), ErrDuplicateComponent))
	assert.True(t, a.RemoveComponent("TEST_component"))
	assert.Empty(t, a.Components())
}

type testComponent struct {
	Target Ref `json:"target"`
}

func (*testComponent) ExtensionName() string { return "TEST_component" }
