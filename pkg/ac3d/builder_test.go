package ac3d

import (
	"bytes"
	"errors"
	"testing"

	"github.com/skymesh/actools/pkg/math"
)

func redMaterial() Material {
	return Material{Name: "red", Diffuse: [3]float32{1, 0, 0}, Shininess: 10}
}

func quadMesh(mat Material) *SceneMesh {
	return &SceneMesh{
		Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Faces: []SceneFace{{
			Vertices: []int{0, 1, 2, 3},
			Material: mat,
		}},
	}
}

func TestBuildDocument_MaterialDedup(t *testing.T) {
	// Three objects, two distinct materials: the near-identical red
	// (within tolerance) must collapse into one table entry.
	nearlyRed := redMaterial()
	nearlyRed.Diffuse[0] += 5e-5

	blue := Material{Name: "blue", Diffuse: [3]float32{0, 0, 1}}

	objects := []*SceneObject{
		{Name: "a", World: math.Identity(), Mesh: quadMesh(redMaterial())},
		{Name: "b", World: math.Identity(), Mesh: quadMesh(nearlyRed)},
		{Name: "c", World: math.Identity(), Mesh: quadMesh(blue)},
	}

	doc, err := BuildDocument(objects, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Materials) != 2 {
		t.Fatalf("got %d materials, want 2: %+v", len(doc.Materials), doc.Materials)
	}
	if doc.Root.Children[1].Surfaces[0].Material != 0 {
		t.Errorf("near-duplicate material not deduplicated")
	}
	if doc.Root.Children[2].Surfaces[0].Material != 1 {
		t.Errorf("distinct material collapsed")
	}
}

func TestBuildDocument_DistinctShininessKept(t *testing.T) {
	a := redMaterial()
	b := redMaterial()
	b.Shininess += 0.5

	doc, err := BuildDocument([]*SceneObject{
		{Name: "a", World: math.Identity(), Mesh: quadMesh(a)},
		{Name: "b", World: math.Identity(), Mesh: quadMesh(b)},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Materials) != 2 {
		t.Errorf("got %d materials, want shininess delta to keep both", len(doc.Materials))
	}
}

func TestBuildDocument_FanTriangulation(t *testing.T) {
	pentagon := &SceneMesh{
		Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1.5, 1, 0}, {0.5, 2, 0}, {-0.5, 1, 0}},
		Faces: []SceneFace{{
			Vertices: []int{0, 1, 2, 3, 4},
			UVs:      [][2]float32{{0, 0}, {1, 0}, {1, 0.5}, {0.5, 1}, {0, 0.5}},
			Material: redMaterial(),
		}},
	}

	doc, err := BuildDocument([]*SceneObject{
		{Name: "pent", World: math.Identity(), Mesh: pentagon},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obj := doc.Root.Children[0]
	if len(obj.Surfaces) != 3 {
		t.Fatalf("got %d surfaces, want 3 fan triangles", len(obj.Surfaces))
	}
	// Every triangle pivots on vertex 0 and keeps its UVs.
	for i, s := range obj.Surfaces {
		if len(s.Refs) != 3 || s.Refs[0].Vertex != 0 {
			t.Errorf("triangle %d refs = %+v", i, s.Refs)
		}
	}
	last := obj.Surfaces[2].Refs
	if last[1].Vertex != 3 || last[2].Vertex != 4 {
		t.Errorf("last triangle = %+v, want fan 0-3-4", last)
	}
	if last[2].U != 0 || last[2].V != 0.5 {
		t.Errorf("uv not carried through triangulation: %+v", last[2])
	}
}

func TestBuildDocument_SmallFaceDroppedWithWarning(t *testing.T) {
	mesh := quadMesh(redMaterial())
	mesh.Faces = append(mesh.Faces, SceneFace{Vertices: []int{0, 1}, Material: redMaterial()})

	doc, err := BuildDocument([]*SceneObject{
		{Name: "a", World: math.Identity(), Mesh: mesh},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children[0].Surfaces) != 1 {
		t.Errorf("degenerate face should be dropped")
	}
	if len(doc.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for the dropped face", doc.Warnings)
	}
}

func TestBuildDocument_BadRefsAreErrors(t *testing.T) {
	tests := []struct {
		name string
		face SceneFace
	}{
		{"vertex out of range", SceneFace{Vertices: []int{0, 1, 99}, Material: redMaterial()}},
		{"uv count mismatch", SceneFace{Vertices: []int{0, 1, 2}, UVs: [][2]float32{{0, 0}}, Material: redMaterial()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := quadMesh(redMaterial())
			mesh.Faces = []SceneFace{tt.face}
			_, err := BuildDocument([]*SceneObject{
				{Name: "a", World: math.Identity(), Mesh: mesh},
			}, BuildOptions{})
			if !errors.Is(err, ErrBadSurface) {
				t.Errorf("got %v, want ErrBadSurface", err)
			}
		})
	}
}

func TestBuildDocument_RelativeTransforms(t *testing.T) {
	parentWorld := math.Translate(1, 2, 3)
	childWorld := math.Translate(1, 2, 8)

	doc, err := BuildDocument([]*SceneObject{{
		Name:  "parent",
		World: parentWorld,
		Children: []*SceneObject{{
			Name:  "child",
			World: childWorld,
			Mesh:  quadMesh(redMaterial()),
		}},
	}}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parent := doc.Root.Children[0]
	if parent.Loc != [3]float32{1, 2, 3} {
		t.Errorf("parent loc = %v", parent.Loc)
	}
	child := parent.Children[0]
	if child.Loc != [3]float32{0, 0, 5} {
		t.Errorf("child loc = %v, want parent-relative (0 0 5)", child.Loc)
	}
	if child.Rot != identityRot() {
		t.Errorf("child rot = %v, want identity", child.Rot)
	}
	if child.Parent() != parent {
		t.Error("parent backref not set")
	}
}

func TestBuildDocument_Kinds(t *testing.T) {
	doc, err := BuildDocument([]*SceneObject{
		{Name: "grp", World: math.Identity()},
		{Name: "geo", World: math.Identity(), Mesh: quadMesh(redMaterial())},
		{Name: "sun", World: math.Identity(), Kind: KindLight},
	}, BuildOptions{WorldName: "scene"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Root.Kind != KindWorld || doc.Root.Name != "scene" {
		t.Errorf("root = %v %q", doc.Root.Kind, doc.Root.Name)
	}
	kinds := []ObjectKind{KindGroup, KindPoly, KindLight}
	for i, want := range kinds {
		if got := doc.Root.Children[i].Kind; got != want {
			t.Errorf("child %d kind = %v, want %v", i, got, want)
		}
	}
}

func TestBuildDocument_LoneWorldBecomesRoot(t *testing.T) {
	doc, err := BuildDocument([]*SceneObject{{
		Name:  "top",
		Kind:  KindWorld,
		World: math.Identity(),
		Children: []*SceneObject{
			{Name: "geo", World: math.Identity(), Mesh: quadMesh(redMaterial())},
		},
	}}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Root.Name != "top" || doc.Root.Kind != KindWorld {
		t.Errorf("root = %v %q, want the input world itself", doc.Root.Kind, doc.Root.Name)
	}
	if len(doc.Root.Children) != 1 {
		t.Errorf("root children = %d, want 1", len(doc.Root.Children))
	}
}

func TestBuildDocument_Lines(t *testing.T) {
	mesh := &SceneMesh{
		Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		Lines: []SceneLine{
			{Vertices: []int{0, 1, 2}, Closed: true, Material: redMaterial()},
			{Vertices: []int{0, 2}, Material: redMaterial()},
		},
	}

	doc, err := BuildDocument([]*SceneObject{
		{Name: "wire", World: math.Identity(), Mesh: mesh},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	surfs := doc.Root.Children[0].Surfaces
	if len(surfs) != 2 {
		t.Fatalf("got %d surfaces, want 2", len(surfs))
	}
	if surfs[0].Type != SurfaceClosedLine || len(surfs[0].Refs) != 3 {
		t.Errorf("surface 0 = %+v", surfs[0])
	}
	if surfs[1].Type != SurfaceLine || len(surfs[1].Refs) != 2 {
		t.Errorf("surface 1 = %+v", surfs[1])
	}
}

func TestBuildDocument_EmptySceneGetsDefaultMaterial(t *testing.T) {
	doc, err := BuildDocument(nil, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Materials) != 1 {
		t.Errorf("got %d materials, want the default entry", len(doc.Materials))
	}
	if doc.Root == nil || doc.Root.Kind != KindWorld {
		t.Error("expected a world root even for an empty scene")
	}
}

func TestBuildDocument_WriteParseRoundTrip(t *testing.T) {
	mesh := quadMesh(redMaterial())
	mesh.Texture = "hull.png"
	mesh.Crease = 61
	mesh.CreaseSet = true

	doc, err := BuildDocument([]*SceneObject{{
		Name:  "hull",
		World: math.Translate(0, 0, 4),
		Mesh:  mesh,
	}}, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(back.Warnings) != 0 {
		t.Errorf("reparse warnings: %v", back.Warnings)
	}

	hull := back.Root.Children[0]
	if hull.Name != "hull" || hull.Kind != KindPoly {
		t.Errorf("hull = %v %q", hull.Kind, hull.Name)
	}
	if hull.Loc != [3]float32{0, 0, 4} {
		t.Errorf("loc = %v", hull.Loc)
	}
	if hull.Texture != "hull.png" || !hull.CreaseSet || hull.Crease != 61 {
		t.Errorf("texture/crease state drifted: %+v", hull)
	}
	if !back.Materials[hull.Surfaces[0].Material].SameAs(redMaterial()) {
		t.Error("material did not survive the round trip")
	}
}
