package ac3d

import (
	"strings"
	"testing"

	"github.com/skymesh/actools/pkg/math"
)

func triangleObject() *Object {
	return &Object{
		Kind:     KindPoly,
		Name:     "tri",
		Rot:      identityRot(),
		TexRep:   [2]float32{1, 1},
		Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Surfaces: []Surface{{
			Type: SurfacePolygon,
			Refs: []SurfaceRef{{Vertex: 0}, {Vertex: 1}, {Vertex: 2}},
		}},
	}
}

func TestBuildMesh_Faces(t *testing.T) {
	mesh, warnings := triangleObject().BuildMesh(ResolveOptions{})
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(mesh.Faces) != 1 {
		t.Fatalf("got %d faces, want 1", len(mesh.Faces))
	}
	face := mesh.Faces[0]
	if len(face.Vertices) != 3 || face.Vertices[1] != 1 {
		t.Errorf("face vertices = %v", face.Vertices)
	}
	if len(mesh.Materials) != 1 || mesh.Materials[0] != 0 {
		t.Errorf("materials = %v", mesh.Materials)
	}
}

func TestBuildMesh_DropsDegeneratePolygons(t *testing.T) {
	obj := triangleObject()
	obj.Surfaces = append(obj.Surfaces, Surface{
		Type: SurfacePolygon,
		Refs: []SurfaceRef{{Vertex: 0}, {Vertex: 1}},
	})

	mesh, warnings := obj.BuildMesh(ResolveOptions{})
	if len(mesh.Faces) != 1 {
		t.Errorf("got %d faces, want degenerate surface dropped", len(mesh.Faces))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "2 refs") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestBuildMesh_DropsOutOfRangeVertices(t *testing.T) {
	obj := triangleObject()
	obj.Surfaces[0].Refs[2].Vertex = 99

	mesh, warnings := obj.BuildMesh(ResolveOptions{})
	if len(mesh.Faces) != 0 {
		t.Errorf("got %d faces, want face dropped", len(mesh.Faces))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "out of range") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestBuildMesh_TwoSidedIsUnionAcrossSurfaces(t *testing.T) {
	obj := triangleObject()
	obj.Surfaces = append(obj.Surfaces, Surface{
		Type:     SurfaceLine,
		TwoSided: true,
		Refs:     []SurfaceRef{{Vertex: 0}, {Vertex: 1}},
	})

	mesh, _ := obj.BuildMesh(ResolveOptions{})
	if !mesh.TwoSided {
		t.Error("one two-sided surface should mark the whole mesh")
	}
}

func TestBuildMesh_MaterialRemap(t *testing.T) {
	obj := triangleObject()
	tri := obj.Surfaces[0].Refs
	obj.Surfaces = []Surface{
		{Type: SurfacePolygon, Material: 3, Refs: tri},
		{Type: SurfacePolygon, Material: 1, Refs: tri},
		{Type: SurfacePolygon, Material: 3, Refs: tri},
	}

	mesh, _ := obj.BuildMesh(ResolveOptions{})
	if len(mesh.Materials) != 2 || mesh.Materials[0] != 3 || mesh.Materials[1] != 1 {
		t.Fatalf("materials = %v, want compact [3 1]", mesh.Materials)
	}
	got := []int{mesh.Faces[0].Material, mesh.Faces[1].Material, mesh.Faces[2].Material}
	if got[0] != 0 || got[1] != 1 || got[2] != 0 {
		t.Errorf("face materials = %v, want [0 1 0]", got)
	}
}

func TestSurface_Edges(t *testing.T) {
	mk := func(typ SurfaceType, verts ...int) Surface {
		s := Surface{Type: typ}
		for _, v := range verts {
			s.Refs = append(s.Refs, SurfaceRef{Vertex: v})
		}
		return s
	}

	tests := []struct {
		name string
		s    Surface
		want [][2]int
	}{
		{"open line", mk(SurfaceLine, 0, 1, 2), [][2]int{{0, 1}, {1, 2}}},
		{"closed line gets closing edge", mk(SurfaceClosedLine, 0, 1), [][2]int{{0, 1}, {1, 0}}},
		{"single-ref closed line is a self edge", mk(SurfaceClosedLine, 4), [][2]int{{4, 4}}},
		{"single-ref open line has no edges", mk(SurfaceLine, 4), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.edges()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("edge %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveCrease_Priority(t *testing.T) {
	override := float32(75)

	tests := []struct {
		name string
		obj  Object
		opts ResolveOptions
		want float32
	}{
		{"override wins over file value", Object{Crease: 45, CreaseSet: true}, ResolveOptions{CreaseOverride: &override}, 75},
		{"file value wins over default", Object{Crease: 45, CreaseSet: true}, ResolveOptions{DefaultCrease: 60}, 45},
		{"configured default", Object{}, ResolveOptions{DefaultCrease: 60}, 60},
		{"builtin default", Object{}, ResolveOptions{}, DefaultCreaseAngle},
		{"explicit zero crease honored", Object{Crease: 0, CreaseSet: true}, ResolveOptions{DefaultCrease: 60}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.resolveCrease(tt.opts); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeshName_PrefersData(t *testing.T) {
	obj := Object{Name: "node", Data: "original_mesh"}
	if got := obj.MeshName(); got != "original_mesh" {
		t.Errorf("got %q, want data annotation", got)
	}
	obj.Data = ""
	if got := obj.MeshName(); got != "node" {
		t.Errorf("got %q, want object name", got)
	}
}

func TestWalkTransforms_Composition(t *testing.T) {
	// Parent translated and rotated 90 degrees about Z; the child's local
	// x offset must come out the parent's y axis.
	parent := &Object{
		Kind: KindGroup,
		Loc:  [3]float32{10, 0, 0},
		Rot: [9]float32{
			0, -1, 0,
			1, 0, 0,
			0, 0, 1,
		},
	}
	child := &Object{
		Kind: KindPoly,
		Loc:  [3]float32{1, 0, 0},
		Rot:  identityRot(),
	}
	parent.Children = []*Object{child}
	root := &Object{Kind: KindWorld, Rot: identityRot(), Children: []*Object{parent}}
	doc := &Document{Root: root}

	var got map[*Object]math.Vec3
	got = make(map[*Object]math.Vec3)
	doc.WalkTransforms(math.Identity(), func(o *Object, world math.Mat4) {
		got[o] = world.Translation()
	})

	const eps = 1e-5
	checkVec := func(name string, v, want math.Vec3) {
		t.Helper()
		if d := v.Sub(want).Length(); d > eps {
			t.Errorf("%s world translation = %v, want %v", name, v, want)
		}
	}
	checkVec("root", got[root], math.Vec3{})
	checkVec("parent", got[parent], math.Vec3{X: 10})
	checkVec("child", got[child], math.Vec3{X: 10, Y: 1})
}

func TestFlatten(t *testing.T) {
	input := "AC3Db\n" + sampleMaterialLine + "\n" +
		"OBJECT world\nkids 2\n" +
		"OBJECT group\nname \"g\"\nloc 0 5 0\nkids 1\n" +
		"OBJECT poly\nname \"inner\"\nloc 1 0 0\nnumvert 3\n0 0 0\n1 0 0\n0 1 0\nnumsurf 1\nSURF 0x0\nmat 0\nrefs 3\n0 0 0\n1 0 0\n2 0 0\nkids 0\n" +
		"OBJECT poly\nname \"empty\"\nkids 0\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meshes, warnings := doc.Flatten(math.Identity(), ResolveOptions{})
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	// The group and the vertex-less poly contribute no meshes.
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}

	fm := meshes[0]
	if fm.Name != "inner" {
		t.Errorf("mesh name = %q", fm.Name)
	}
	want := math.Vec3{X: 1, Y: 5}
	if d := fm.World.Translation().Sub(want).Length(); d > 1e-5 {
		t.Errorf("world translation = %v, want %v", fm.World.Translation(), want)
	}
}
