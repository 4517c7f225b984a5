package viewer

import (
	gomath "math"

	"github.com/skymesh/actools/pkg/ac3d"
	"github.com/skymesh/actools/pkg/math"
)

// vertexFloats is the interleaved layout: position, normal, uv, color.
const vertexFloats = 3 + 3 + 2 + 3

// Bounds is a world-space axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

func newBounds() Bounds {
	return Bounds{
		Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
}

func (b *Bounds) extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Primitive is one draw call: a triangle range sharing a texture and
// sidedness.
type Primitive struct {
	Name     string
	Texture  string // file reference from the model, empty for untextured
	TwoSided bool
	First    int32 // first vertex
	Count    int32 // vertex count
}

// RenderData is the flattened, triangulated, world-space form of a
// document, ready for a single VBO upload.
type RenderData struct {
	Vertices   []float32 // interleaved, vertexFloats per vertex
	Primitives []Primitive
	Bounds     Bounds
	Warnings   []ac3d.Warning
}

// BuildRenderData resolves the document's geometry into triangles with
// flat normals. Quads are split along 0-2; per-face colors come from the
// global material table.
func BuildRenderData(doc *ac3d.Document, opts ac3d.ResolveOptions) *RenderData {
	rd := &RenderData{Bounds: newBounds()}

	meshes, warnings := doc.Flatten(math.Identity(), opts)
	rd.Warnings = warnings

	for _, fm := range meshes {
		first := int32(len(rd.Vertices) / vertexFloats)

		for _, face := range fm.Faces {
			color := faceColor(doc, fm.Mesh, face)
			rd.appendFace(fm, face, color)
		}

		count := int32(len(rd.Vertices)/vertexFloats) - first
		if count == 0 {
			continue
		}
		rd.Primitives = append(rd.Primitives, Primitive{
			Name:     fm.Name,
			Texture:  fm.Texture,
			TwoSided: fm.TwoSided,
			First:    first,
			Count:    count,
		})
	}
	return rd
}

func faceColor(doc *ac3d.Document, mesh *ac3d.Mesh, face ac3d.MeshFace) [3]float32 {
	if face.Material < len(mesh.Materials) {
		global := mesh.Materials[face.Material]
		if global < len(doc.Materials) {
			return doc.Materials[global].Diffuse
		}
	}
	return [3]float32{1, 1, 1}
}

// appendFace emits the face as one or two triangles in world space.
func (rd *RenderData) appendFace(fm ac3d.FlatMesh, face ac3d.MeshFace, color [3]float32) {
	pos := make([][3]float32, len(face.Vertices))
	for i, vi := range face.Vertices {
		pos[i] = fm.World.TransformPoint(fm.Vertices[vi])
		rd.Bounds.extend(pos[i])
	}

	tris := [][3]int{{0, 1, 2}}
	if len(face.Vertices) == 4 {
		tris = append(tris, [3]int{0, 2, 3})
	}

	for _, tri := range tris {
		n := flatNormal(pos[tri[0]], pos[tri[1]], pos[tri[2]])
		for _, ci := range tri {
			u := face.UVs[ci][0]*fm.TexRep[0] + fm.TexOff[0]
			v := face.UVs[ci][1]*fm.TexRep[1] + fm.TexOff[1]
			rd.Vertices = append(rd.Vertices,
				pos[ci][0], pos[ci][1], pos[ci][2],
				n[0], n[1], n[2],
				u, v,
				color[0], color[1], color[2],
			)
		}
	}
}

func flatNormal(a, b, c [3]float32) [3]float32 {
	e1 := math.Vec3{X: b[0] - a[0], Y: b[1] - a[1], Z: b[2] - a[2]}
	e2 := math.Vec3{X: c[0] - a[0], Y: c[1] - a[1], Z: c[2] - a[2]}
	n := e1.Cross(e2)
	if n.Length() < 1e-10 {
		return [3]float32{0, 1, 0}
	}
	n = n.Normalize()
	return [3]float32{n.X, n.Y, n.Z}
}
