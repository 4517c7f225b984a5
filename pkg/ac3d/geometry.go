package ac3d

import (
	"fmt"

	"github.com/skymesh/actools/pkg/math"
)

// DefaultCreaseAngle is the smoothing threshold, in degrees, applied to
// objects whose file carries no crease line.
const DefaultCreaseAngle float32 = 30

// ResolveOptions control geometry resolution.
type ResolveOptions struct {
	// DefaultCrease is the fallback smoothing angle in degrees.
	// Zero means DefaultCreaseAngle.
	DefaultCrease float32

	// CreaseOverride, when non-nil, wins over both the file's crease
	// field and the default.
	CreaseOverride *float32
}

// MeshFace is one renderable face: 3 or 4 vertex indices with per-corner
// UVs and a mesh-local material index.
type MeshFace struct {
	Vertices []int
	UVs      [][2]float32
	Material int // index into Mesh.Materials
	Smooth   bool
}

// Mesh is the renderable form of one poly object: polygon surfaces become
// faces, line surfaces become edges, and global material indices are
// remapped to a compact local table.
type Mesh struct {
	Name      string
	Vertices  [][3]float32
	Faces     []MeshFace
	Edges     [][2]int
	Materials []int // local index -> global material table index

	// TwoSided is the OR across every surface of the object, for sinks
	// that only support object-level two-sidedness.
	TwoSided bool

	Crease  float32 // resolved smoothing angle, degrees
	Texture string
	TexRep  [2]float32
	TexOff  [2]float32
}

// BuildMesh resolves the object's raw surfaces into faces and edges.
// Degenerate polygon surfaces and out-of-range vertex references drop the
// face with a warning; they never fail the object.
func (o *Object) BuildMesh(opts ResolveOptions) (*Mesh, []Warning) {
	mesh := &Mesh{
		Name:     o.MeshName(),
		Vertices: o.Vertices,
		Crease:   o.resolveCrease(opts),
		Texture:  o.Texture,
		TexRep:   o.TexRep,
		TexOff:   o.TexOff,
	}

	var warnings []Warning
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(format, args...)})
	}

	localMat := make(map[int]int)
	for si, surf := range o.Surfaces {
		mesh.TwoSided = mesh.TwoSided || surf.TwoSided

		if surf.Type != SurfacePolygon {
			mesh.Edges = append(mesh.Edges, surf.edges()...)
			continue
		}

		if !surf.IsValidPolygon() {
			warn("object %q surface %d: polygon with %d refs dropped", o.Name, si, len(surf.Refs))
			continue
		}
		if bad, idx := surf.outOfRange(len(o.Vertices)); bad {
			warn("object %q surface %d: vertex index %d out of range (numvert %d), face dropped",
				o.Name, si, idx, len(o.Vertices))
			continue
		}

		local, seen := localMat[surf.Material]
		if !seen {
			local = len(mesh.Materials)
			mesh.Materials = append(mesh.Materials, surf.Material)
			localMat[surf.Material] = local
		}

		face := MeshFace{
			Vertices: make([]int, len(surf.Refs)),
			UVs:      make([][2]float32, len(surf.Refs)),
			Material: local,
			Smooth:   surf.Shaded,
		}
		for i, ref := range surf.Refs {
			face.Vertices[i] = ref.Vertex
			face.UVs[i] = [2]float32{ref.U, ref.V}
		}
		mesh.Faces = append(mesh.Faces, face)
	}

	return mesh, warnings
}

// MeshName prefers the data annotation over the object name, matching how
// imported meshes keep their original names across round-trips.
func (o *Object) MeshName() string {
	if o.Data != "" {
		return o.Data
	}
	return o.Name
}

// resolveCrease picks the smoothing angle in priority order: explicit
// override, the file's own crease field, configured default.
func (o *Object) resolveCrease(opts ResolveOptions) float32 {
	if opts.CreaseOverride != nil {
		return *opts.CreaseOverride
	}
	if o.CreaseSet {
		return o.Crease
	}
	if opts.DefaultCrease > 0 {
		return opts.DefaultCrease
	}
	return DefaultCreaseAngle
}

// edges expands a line surface into edge segments. A closed line with a
// single ref degenerates to a zero-length self-edge; kept for
// compatibility with files AC3D itself produces.
func (s Surface) edges() [][2]int {
	var edges [][2]int
	for i := 0; i+1 < len(s.Refs); i++ {
		edges = append(edges, [2]int{s.Refs[i].Vertex, s.Refs[i+1].Vertex})
	}
	if s.Type == SurfaceClosedLine && len(s.Refs) > 0 {
		edges = append(edges, [2]int{s.Refs[len(s.Refs)-1].Vertex, s.Refs[0].Vertex})
	}
	return edges
}

func (s Surface) outOfRange(numVerts int) (bool, int) {
	for _, ref := range s.Refs {
		if ref.Vertex < 0 || ref.Vertex >= numVerts {
			return true, ref.Vertex
		}
	}
	return false, 0
}

// LocalTransform returns the node's parent-relative transform as a 4x4
// matrix: translation composed with the row-major rotation.
func (o *Object) LocalTransform() math.Mat4 {
	rot := math.Mat3(o.Rot)
	return math.Translate(o.Loc[0], o.Loc[1], o.Loc[2]).Mul(rot.Mat4())
}

// WalkTransforms visits every object depth-first pre-order along with its
// composed world transform. Transforms are resolved in a single top-down
// pass starting from the supplied axis-conversion matrix at the root:
// world(node) = world(parent) * local(node).
func (d *Document) WalkTransforms(axis math.Mat4, fn func(*Object, math.Mat4)) {
	var rec func(o *Object, parentWorld math.Mat4)
	rec = func(o *Object, parentWorld math.Mat4) {
		world := parentWorld.Mul(o.LocalTransform())
		fn(o, world)
		for _, c := range o.Children {
			rec(c, world)
		}
	}
	rec(d.Root, axis)
}

// FlatMesh pairs a resolved mesh with its object and world transform.
type FlatMesh struct {
	*Mesh
	Object *Object
	World  math.Mat4
}

// Flatten resolves every poly object in the document into a FlatMesh.
// Objects without geometry (world, groups, lights, empty polys) are
// skipped but still contribute their transform to descendants.
func (d *Document) Flatten(axis math.Mat4, opts ResolveOptions) ([]FlatMesh, []Warning) {
	var meshes []FlatMesh
	var warnings []Warning
	d.WalkTransforms(axis, func(o *Object, world math.Mat4) {
		if o.Kind != KindPoly || len(o.Vertices) == 0 {
			return
		}
		mesh, w := o.BuildMesh(opts)
		warnings = append(warnings, w...)
		meshes = append(meshes, FlatMesh{Mesh: mesh, Object: o, World: world})
	})
	return meshes, warnings
}
