// Package geometry builds the meshes the carousel draws: a subdivided
// icosphere whose vertices anchor the item discs, and the flat disc itself.
package geometry

import (
	gomath "math"

	"github.com/Faultbox/pulpcarousel/pkg/math"
)

// Vertex is a single mesh vertex.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// Face is a triangle of vertex indices. Winding is counter-clockwise when
// viewed from the front.
type Face struct {
	A, B, C int
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face
}

// Buffers holds flat arrays ready for GPU upload.
type Buffers struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint16
}

// IndexCount returns the number of indices to draw.
func (b Buffers) IndexCount() int {
	return len(b.Indices)
}

// edgeKey identifies an undirected edge.
type edgeKey struct {
	lo, hi int
}

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

func (m *Mesh) addVertex(p math.Vec3) int {
	m.Vertices = append(m.Vertices, Vertex{Position: p})
	return len(m.Vertices) - 1
}

// Subdivide splits every face into four by inserting edge midpoints.
// Midpoints are shared between the faces of an edge, so no duplicate vertex
// is ever created and existing vertices keep their indices.
func (m *Mesh) Subdivide(divisions int) *Mesh {
	cache := make(map[edgeKey]int)
	faces := m.Faces

	for d := 0; d < divisions; d++ {
		next := make([]Face, len(faces)*4)
		for i, f := range faces {
			ab := m.midpoint(f.A, f.B, cache)
			bc := m.midpoint(f.B, f.C, cache)
			ca := m.midpoint(f.C, f.A, cache)

			next[i*4+0] = Face{f.A, ab, ca}
			next[i*4+1] = Face{f.B, bc, ab}
			next[i*4+2] = Face{f.C, ca, bc}
			next[i*4+3] = Face{ab, bc, ca}
		}
		faces = next
	}

	m.Faces = faces
	return m
}

func (m *Mesh) midpoint(a, b int, cache map[edgeKey]int) int {
	key := newEdgeKey(a, b)
	if idx, ok := cache[key]; ok {
		return idx
	}
	pa := m.Vertices[a].Position
	pb := m.Vertices[b].Position
	idx := m.addVertex(pa.Add(pb).Scale(0.5))
	cache[key] = idx
	return idx
}

// Spherize projects every vertex onto a sphere of the given radius and sets
// its normal to the outward direction.
func (m *Mesh) Spherize(radius float32) *Mesh {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Normal = v.Position.Normalize()
		v.Position = v.Normal.Scale(radius)
	}
	return m
}

// Positions returns a copy of the vertex positions.
func (m *Mesh) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

// Buffers flattens the mesh into upload-ready arrays. Indices are 16-bit,
// so the mesh must have at most 65536 vertices; every constructor in this
// package stays under that.
func (m *Mesh) Buffers() Buffers {
	b := Buffers{
		Positions: make([]float32, 0, len(m.Vertices)*3),
		Normals:   make([]float32, 0, len(m.Vertices)*3),
		UVs:       make([]float32, 0, len(m.Vertices)*2),
		Indices:   make([]uint16, 0, len(m.Faces)*3),
	}
	for _, v := range m.Vertices {
		b.Positions = append(b.Positions, v.Position.X, v.Position.Y, v.Position.Z)
		b.Normals = append(b.Normals, v.Normal.X, v.Normal.Y, v.Normal.Z)
		b.UVs = append(b.UVs, v.UV.X, v.UV.Y)
	}
	for _, f := range m.Faces {
		b.Indices = append(b.Indices, uint16(f.A), uint16(f.B), uint16(f.C))
	}
	return b
}

// NewIcosahedron returns the regular 12-vertex, 20-face icosahedron.
func NewIcosahedron() *Mesh {
	t := float32(gomath.Sqrt(5)*0.5 + 0.5)
	m := &Mesh{}
	for _, p := range []math.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	} {
		m.addVertex(p)
	}
	m.Faces = []Face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return m
}

// MaxSubdivisions bounds icosphere detail. Five subdivisions already give
// 10242 vertices.
const MaxSubdivisions = 5

// NewIcosphere returns an icosahedron subdivided n times and projected onto
// a sphere of the given radius. n is clamped to [0, MaxSubdivisions].
func NewIcosphere(subdivisions int, radius float32) *Mesh {
	subdivisions = max(0, min(subdivisions, MaxSubdivisions))
	return NewIcosahedron().Subdivide(subdivisions).Spherize(radius)
}

// Ring resolution limits for NewDisc.
const (
	MinDiscSteps = 4
	MaxDiscSteps = 4096
)

// NewDisc returns a flat disc in the XY plane facing +Z, built as a triangle
// fan from a centre vertex to a closed ring of steps perimeter vertices.
// UVs map the centre to (0.5, 0.5) and the ring onto the unit circle.
func NewDisc(steps int, radius float32) *Mesh {
	steps = max(MinDiscSteps, min(steps, MaxDiscSteps))
	m := &Mesh{
		Vertices: make([]Vertex, 0, steps+1),
		Faces:    make([]Face, 0, steps),
	}

	m.Vertices = append(m.Vertices, Vertex{Normal: math.AxisZ, UV: math.Vec2{X: 0.5, Y: 0.5}})

	alpha := 2 * gomath.Pi / float64(steps)
	for i := 0; i < steps; i++ {
		x := float32(gomath.Cos(alpha * float64(i)))
		y := float32(gomath.Sin(alpha * float64(i)))
		m.Vertices = append(m.Vertices, Vertex{
			Position: math.Vec3{X: radius * x, Y: radius * y},
			Normal:   math.AxisZ,
			UV:       math.Vec2{X: x*0.5 + 0.5, Y: y*0.5 + 0.5},
		})
		if i > 0 {
			m.Faces = append(m.Faces, Face{0, i, i + 1})
		}
	}
	m.Faces = append(m.Faces, Face{0, steps, 1})
	return m
}

// SubdividedVertexCount is the closed-form vertex count of an icosahedron
// subdivided n times: 10*4^n + 2.
func SubdividedVertexCount(n int) int {
	return 10*pow4(n) + 2
}

// SubdividedFaceCount is the closed-form face count: 20*4^n.
func SubdividedFaceCount(n int) int {
	return 20 * pow4(n)
}

func pow4(n int) int {
	return 1 << (2 * n)
}
