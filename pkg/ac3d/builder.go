package ac3d

import (
	"fmt"

	"github.com/skymesh/actools/pkg/math"
)

// SceneObject is the exporter-facing description of one scene-graph node.
// Transforms are absolute world matrices; BuildDocument derives the
// parent-relative loc/rot the format stores.
type SceneObject struct {
	Name     string
	Kind     ObjectKind // KindGroup is assumed when Mesh is nil
	World    math.Mat4
	Mesh     *SceneMesh
	Children []*SceneObject

	URL    string
	Subdiv int
	Hidden bool
	Locked bool
}

// SceneMesh carries the geometry of one poly node.
type SceneMesh struct {
	Vertices [][3]float32
	Faces    []SceneFace
	Lines    []SceneLine

	Texture string
	TexRep  [2]float32
	TexOff  [2]float32

	Crease    float32
	CreaseSet bool
}

// SceneFace is a polygon of any arity. Faces with more than four vertices
// are fan-triangulated during the build; faces with fewer than three are
// dropped with a warning.
type SceneFace struct {
	Vertices []int
	UVs      [][2]float32 // nil or len(Vertices)
	Material Material
	Smooth   bool
	TwoSided bool
}

// SceneLine is an open or closed polyline emitted as a line surface.
type SceneLine struct {
	Vertices []int
	Closed   bool
	Material Material
}

// BuildOptions control document construction.
type BuildOptions struct {
	// WorldName names the synthesized root when the input has no single
	// world node. Empty means no name line is written.
	WorldName string

	// Axis converts source-application world coordinates into the
	// format's coordinate frame. Zero value means identity.
	Axis math.Mat4
}

func (o BuildOptions) axis() math.Mat4 {
	if o.Axis == (math.Mat4{}) {
		return math.Identity()
	}
	return o.Axis
}

// BuildDocument assembles a serializable document from world-space scene
// objects. The material table is built first by walking the whole tree,
// so every surface index is known before any object is emitted.
func BuildDocument(objects []*SceneObject, opts BuildOptions) (*Document, error) {
	doc := &Document{Version: VersionB}

	for _, so := range objects {
		collectMaterials(so, &doc.Materials)
	}
	if len(doc.Materials) == 0 {
		// A file with geometry but no material table breaks most readers.
		doc.Materials.Add(DefaultMaterial())
	}

	axis := opts.axis()

	// A lone world input becomes the root directly instead of nesting.
	if len(objects) == 1 && objects[0].Kind == KindWorld && objects[0].Mesh == nil {
		root, err := buildObject(objects[0], axis, doc)
		if err != nil {
			return nil, err
		}
		root.Kind = KindWorld
		doc.Root = root
		return doc, nil
	}

	root := &Object{Kind: KindWorld, Name: opts.WorldName, Rot: identityRot(), TexRep: [2]float32{1, 1}}
	for _, so := range objects {
		child, err := buildObject(so, axis, doc)
		if err != nil {
			return nil, err
		}
		child.parent = root
		root.Children = append(root.Children, child)
	}
	doc.Root = root
	return doc, nil
}

func collectMaterials(so *SceneObject, table *MaterialTable) {
	if so.Mesh != nil {
		for _, f := range so.Mesh.Faces {
			table.Add(f.Material)
		}
		for _, l := range so.Mesh.Lines {
			table.Add(l.Material)
		}
	}
	for _, c := range so.Children {
		collectMaterials(c, table)
	}
}

func buildObject(so *SceneObject, parentWorld math.Mat4, doc *Document) (*Object, error) {
	// There is exactly one world per document and BuildDocument owns it,
	// so anything else without geometry is a group.
	kind := KindGroup
	switch {
	case so.Kind == KindLight:
		kind = KindLight
	case so.Mesh != nil:
		kind = KindPoly
	}

	o := &Object{
		Kind:   kind,
		Name:   so.Name,
		URL:    so.URL,
		Subdiv: so.Subdiv,
		Hidden: so.Hidden,
		Locked: so.Locked,
		TexRep: [2]float32{1, 1},
	}

	// The format stores parent-relative placement only.
	rel := parentWorld.Inverse().Mul(so.World)
	o.Loc = rel.Translation().Array()
	o.Rot = [9]float32(rel.Mat3())

	if so.Mesh != nil {
		if err := buildGeometry(o, so.Mesh, doc); err != nil {
			return nil, fmt.Errorf("object %q: %w", so.Name, err)
		}
	}

	for _, c := range so.Children {
		child, err := buildObject(c, so.World, doc)
		if err != nil {
			return nil, err
		}
		child.parent = o
		o.Children = append(o.Children, child)
	}
	return o, nil
}

func buildGeometry(o *Object, m *SceneMesh, doc *Document) error {
	o.Vertices = m.Vertices
	o.Texture = m.Texture
	if m.Texture != "" {
		if m.TexRep != [2]float32{} {
			o.TexRep = m.TexRep
		}
		o.TexOff = m.TexOff
	}
	o.Crease = m.Crease
	o.CreaseSet = m.CreaseSet

	for i, f := range m.Faces {
		if len(f.Vertices) < 3 {
			doc.warnf(0, "object %q: face %d has %d vertices, dropped", o.Name, i, len(f.Vertices))
			continue
		}
		if f.UVs != nil && len(f.UVs) != len(f.Vertices) {
			return fmt.Errorf("%w: face %d has %d uvs for %d vertices",
				ErrBadSurface, i, len(f.UVs), len(f.Vertices))
		}
		for nv, v := range f.Vertices {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d ref %d out of range", ErrBadSurface, i, nv)
			}
		}

		mat := doc.Materials.Add(f.Material)
		if len(f.Vertices) <= 4 {
			o.Surfaces = append(o.Surfaces, faceSurface(f, mat, f.Vertices, f.UVs))
			continue
		}
		// Fan triangulation around the first vertex.
		for k := 1; k+1 < len(f.Vertices); k++ {
			idx := []int{0, k, k + 1}
			verts := []int{f.Vertices[0], f.Vertices[k], f.Vertices[k+1]}
			var uvs [][2]float32
			if f.UVs != nil {
				uvs = [][2]float32{f.UVs[idx[0]], f.UVs[idx[1]], f.UVs[idx[2]]}
			}
			o.Surfaces = append(o.Surfaces, faceSurface(f, mat, verts, uvs))
		}
	}

	for i, l := range m.Lines {
		if len(l.Vertices) == 0 {
			doc.warnf(0, "object %q: line %d is empty, dropped", o.Name, i)
			continue
		}
		for _, v := range l.Vertices {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: line %d ref out of range", ErrBadSurface, i)
			}
		}
		s := Surface{
			Type:     SurfaceLine,
			Material: doc.Materials.Add(l.Material),
		}
		if l.Closed {
			s.Type = SurfaceClosedLine
		}
		for _, v := range l.Vertices {
			s.Refs = append(s.Refs, SurfaceRef{Vertex: v})
		}
		o.Surfaces = append(o.Surfaces, s)
	}
	return nil
}

func faceSurface(f SceneFace, mat int, verts []int, uvs [][2]float32) Surface {
	s := Surface{
		Type:     SurfacePolygon,
		Shaded:   f.Smooth,
		TwoSided: f.TwoSided,
		Material: mat,
	}
	for i, v := range verts {
		ref := SurfaceRef{Vertex: v}
		if uvs != nil {
			ref.U, ref.V = uvs[i][0], uvs[i][1]
		}
		s.Refs = append(s.Refs, ref)
	}
	return s
}
