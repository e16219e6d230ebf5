package scene

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Component is typed extra data attached to a node or to the whole tree.
// ExtensionName is the identifier the component is registered under.
type Component interface {
	ExtensionName() string
}

// Named components provide the display name written next to their
// object pointer. Components without one use the owning node's name.
type Named interface {
	ComponentName() string
}

// Referrer is implemented by components holding cross-references to
// other nodes of the same tree.
type Referrer interface {
	NodeRefs() []*Ref
}

// Ref is a cross-reference to another node. It serializes as the target
// node's name, since the container cannot express pointers; after a decode
// it stays unresolved (ID == InvalidNode) until the tree exists.
type Ref struct {
	ID   NodeID
	Name string
	set  bool
}

func RefTo(n *Node) Ref {
	return Ref{ID: n.ID(), Name: n.Name(), set: true}
}

func RefID(id NodeID) Ref {
	return Ref{ID: id, set: true}
}

// RefName builds an unresolved reference by name.
func RefName(name string) Ref {
	return Ref{ID: InvalidNode, Name: name, set: true}
}

func (r Ref) IsSet() bool { return r.set }

func (r Ref) Resolved() bool { return r.set && r.ID != InvalidNode }

func (r *Ref) Resolve(id NodeID) {
	r.ID = id
	r.set = true
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	if r.Name == "" {
		return nil, errors.Errorf("reference to node %d has no name", r.ID)
	}
	return json.Marshal(r.Name)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ref{}
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrapf(err, "node reference")
	}
	*r = RefName(name)
	return nil
}
