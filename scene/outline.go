package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Outline is a printable summary of a subtree.
type Outline struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Translation [3]float32 `json:"translation"`
	Rotation    [3]float32 `json:"rotation_degrees"`
	Matrix      bool       `json:"matrix,omitempty"`
	Vertices    int        `json:"vertices,omitempty"`
	Faces       int        `json:"faces,omitempty"`
	Lines       int        `json:"lines,omitempty"`
	Components  []string   `json:"components,omitempty"`
	Children    []*Outline `json:"children,omitempty"`
}

var _ yaml.Marshaler = (*Outline)(nil)

func NewOutline(t *Tree) *Outline {
	return outline(t, t.Root())
}

func outline(t *Tree, n *Node) *Outline {
	o := &Outline{
		Name:        n.Name(),
		Kind:        n.Kind().String(),
		Translation: [3]float32(n.Transform.Matrix().Col(3).Vec3()),
		Matrix:      n.Transform.IsMatrix(),
	}
	if !o.Matrix {
		e := n.Transform.EulerRotation()
		o.Rotation = [3]float32{mgl32.RadToDeg(e[0]), mgl32.RadToDeg(e[1]), mgl32.RadToDeg(e[2])}
	}
	if n.Geometry != nil {
		o.Vertices = n.Geometry.NumVerts()
		o.Faces = n.Geometry.NumFaces()
		o.Lines = n.Geometry.NumLines()
	}
	for _, c := range n.Components() {
		o.Components = append(o.Components, c.ExtensionName())
	}
	sort.Strings(o.Components)
	for _, id := range n.Children() {
		o.Children = append(o.Children, outline(t, t.Node(id)))
	}
	return o
}

type outlineYAML struct {
	Name       yaml.Node
	Geometry   string     `yaml:",omitempty"`
	Components []string   `yaml:",flow,omitempty"`
	Children   []*Outline `yaml:",omitempty"`
}

func (o *Outline) MarshalYAML() (interface{}, error) {
	comment := o.Kind
	if o.Matrix {
		comment += ", matrix"
	}
	out := &outlineYAML{
		Name: yaml.Node{
			Kind:        yaml.ScalarNode,
			Value:       o.Name,
			LineComment: comment,
		},
		Components: o.Components,
		Children:   o.Children,
	}
	if o.Vertices != 0 || o.Faces != 0 || o.Lines != 0 {
		out.Geometry = fmt.Sprintf("%d verts, %d faces, %d lines", o.Vertices, o.Faces, o.Lines)
	}
	return out, nil
}
