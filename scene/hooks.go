package scene

// Hooks observe hierarchy changes. Before* hooks may veto the change by
// returning an error; the tree is then left as it was.
type Hooks interface {
	BeforeAttach(child, parent *Node) error
	AfterAttach(child, parent *Node)
	BeforeDetach(child, parent *Node) error
	AfterDetach(child, parent *Node)
}

// NopHooks can be embedded to implement only some of the hooks.
type NopHooks struct{}

func (NopHooks) BeforeAttach(child, parent *Node) error { return nil }
func (NopHooks) AfterAttach(child, parent *Node)        {}
func (NopHooks) BeforeDetach(child, parent *Node) error { return nil }
func (NopHooks) AfterDetach(child, parent *Node)        {}
