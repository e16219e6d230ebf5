package scene

import (
	"github.com/mogaika/gltfscene/ndarray"
)

// Geometry is the view of a mesh the container codec needs. Points,
// normals and texture coordinates are (n, k) arrays; lines and faces are
// lists of point indices.
type Geometry interface {
	NumVerts() int
	NumLines() int
	NumFaces() int
	Points() *ndarray.Array
	ActiveNormals() *ndarray.Array
	ActiveTCoords() *ndarray.Array
	Lines() [][]uint32
	Faces() [][]uint32
}

// PolyData is the plain Geometry implementation used by the decoder.
type PolyData struct {
	points  *ndarray.Array
	normals *ndarray.Array
	tcoords *ndarray.Array
	lines   [][]uint32
	faces   [][]uint32
}

func NewPolyData(points *ndarray.Array, faces [][]uint32) *PolyData {
	return &PolyData{points: points, faces: faces}
}

func (p *PolyData) SetNormals(a *ndarray.Array)   { p.normals = a }
func (p *PolyData) SetTCoords(a *ndarray.Array)   { p.tcoords = a }
func (p *PolyData) SetLines(lines [][]uint32)     { p.lines = lines }
func (p *PolyData) SetFaces(faces [][]uint32)     { p.faces = faces }
func (p *PolyData) Points() *ndarray.Array        { return p.points }
func (p *PolyData) ActiveNormals() *ndarray.Array { return p.normals }
func (p *PolyData) ActiveTCoords() *ndarray.Array { return p.tcoords }
func (p *PolyData) Lines() [][]uint32             { return p.lines }
func (p *PolyData) Faces() [][]uint32             { return p.faces }
func (p *PolyData) NumLines() int                 { return len(p.lines) }
func (p *PolyData) NumFaces() int                 { return len(p.faces) }

func (p *PolyData) NumVerts() int {
	if p.points == nil {
		return 0
	}
	return p.points.Rows()
}

// Triangulate fans every face of g into triangles. Faces with fewer than
// three points are dropped.
func Triangulate(g Geometry) [][3]uint32 {
	var tris [][3]uint32
	for _, f := range g.Faces() {
		for i := 2; i < len(f); i++ {
			tris = append(tris, [3]uint32{f[0], f[i-1], f[i]})
		}
	}
	return tris
}

// Segments splits every polyline of g into line segments.
func Segments(g Geometry) [][2]uint32 {
	var segs [][2]uint32
	for _, l := range g.Lines() {
		for i := 1; i < len(l); i++ {
			segs = append(segs, [2]uint32{l[i-1], l[i]})
		}
	}
	return segs
}
