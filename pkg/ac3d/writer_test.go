package ac3d

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_MaterialLineGrammar(t *testing.T) {
	doc := &Document{
		Version: VersionB,
		Materials: MaterialTable{{
			Name:      "DefaultWhite",
			Diffuse:   [3]float32{1, 1, 1},
			Ambient:   [3]float32{0.2, 0.2, 0.2},
			Specular:  [3]float32{0.5, 0.5, 0.5},
			Shininess: 10,
		}},
		Root: &Object{Kind: KindWorld, Rot: identityRot(), TexRep: [2]float32{1, 1}},
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "AC3Db\n" +
		`MATERIAL "DefaultWhite" rgb 1 1 1  amb 0.2 0.2 0.2  emis 0 0 0  spec 0.5 0.5 0.5  shi 10 trans 0` + "\n" +
		"OBJECT world\n" +
		"kids 0\n"
	if got := buf.String(); got != want {
		t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWrite_MaterialNameSpacesSanitized(t *testing.T) {
	doc := &Document{
		Version:   VersionB,
		Materials: MaterialTable{{Name: "hull paint"}},
		Root:      &Object{Kind: KindWorld, Rot: identityRot()},
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `MATERIAL "hull_paint" `) {
		t.Errorf("material name not sanitized:\n%s", buf.String())
	}
}

func TestWrite_RevisionCMaterialBlocks(t *testing.T) {
	doc := &Document{
		Version: VersionC,
		Materials: MaterialTable{{
			Name:    "glow",
			Diffuse: [3]float32{1, 0, 0},
			Data:    "note",
		}},
		Root: &Object{Kind: KindWorld, Rot: identityRot(), Hidden: true},
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{Version: VersionC}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"AC3Dc\n",
		"MAT \"glow\"\n",
		"rgb 1 0 0\n",
		"data 4\nnote\n",
		"ENDMAT\n",
		"hidden\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_HiddenSkippedInRevisionB(t *testing.T) {
	doc := &Document{
		Version:   VersionB,
		Materials: MaterialTable{DefaultMaterial()},
		Root:      &Object{Kind: KindWorld, Rot: identityRot(), Hidden: true},
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Error("revision b output must not carry revision c tokens")
	}
}

func TestWrite_VertexPrecision(t *testing.T) {
	poly := &Object{
		Kind:     KindPoly,
		Rot:      identityRot(),
		Vertices: [][3]float32{{0.123456789, 1, -2}},
	}
	doc := &Document{
		Version:   VersionB,
		Materials: MaterialTable{DefaultMaterial()},
		Root:      &Object{Kind: KindWorld, Rot: identityRot(), Children: []*Object{poly}},
	}

	var buf bytes.Buffer
	if err := Write(doc, &buf, WriteOptions{Precision: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "0.123 1.000 -2.000\n") {
		t.Errorf("vertex precision not honored:\n%s", buf.String())
	}

	buf.Reset()
	if err := Write(doc, &buf, WriteOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "0.1234568 1.0000000 -2.0000000\n") {
		t.Errorf("default precision not honored:\n%s", buf.String())
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	orig, err := Parse(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(orig, &buf, WriteOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v\noutput was:\n%s", err, buf.String())
	}
	if len(back.Warnings) != 0 {
		t.Errorf("reparse warnings: %v", back.Warnings)
	}

	if len(back.Materials) != len(orig.Materials) {
		t.Fatalf("materials: got %d, want %d", len(back.Materials), len(orig.Materials))
	}
	for i := range orig.Materials {
		if !back.Materials[i].SameAs(orig.Materials[i]) {
			t.Errorf("material %d drifted: %+v vs %+v", i, back.Materials[i], orig.Materials[i])
		}
	}
	compareObjects(t, back.Root, orig.Root)
}

func compareObjects(t *testing.T, got, want *Object) {
	t.Helper()
	if got.Kind != want.Kind || got.Name != want.Name {
		t.Errorf("object %q/%v, want %q/%v", got.Name, got.Kind, want.Name, want.Kind)
	}
	if got.Loc != want.Loc {
		t.Errorf("object %q loc = %v, want %v", want.Name, got.Loc, want.Loc)
	}
	if got.Rot != want.Rot {
		t.Errorf("object %q rot = %v, want %v", want.Name, got.Rot, want.Rot)
	}
	if got.Texture != want.Texture || got.TexRep != want.TexRep || got.TexOff != want.TexOff {
		t.Errorf("object %q texture state drifted", want.Name)
	}
	if got.CreaseSet != want.CreaseSet || got.Crease != want.Crease {
		t.Errorf("object %q crease = %v/%v, want %v/%v", want.Name, got.Crease, got.CreaseSet, want.Crease, want.CreaseSet)
	}
	if len(got.Vertices) != len(want.Vertices) {
		t.Fatalf("object %q has %d vertices, want %d", want.Name, len(got.Vertices), len(want.Vertices))
	}
	for i := range want.Vertices {
		for c := 0; c < 3; c++ {
			d := got.Vertices[i][c] - want.Vertices[i][c]
			if d < -1e-6 || d > 1e-6 {
				t.Errorf("object %q vertex %d = %v, want %v", want.Name, i, got.Vertices[i], want.Vertices[i])
			}
		}
	}
	if len(got.Surfaces) != len(want.Surfaces) {
		t.Fatalf("object %q has %d surfaces, want %d", want.Name, len(got.Surfaces), len(want.Surfaces))
	}
	for i := range want.Surfaces {
		gs, ws := got.Surfaces[i], want.Surfaces[i]
		if gs.Flags() != ws.Flags() || gs.Material != ws.Material || len(gs.Refs) != len(ws.Refs) {
			t.Errorf("object %q surface %d drifted", want.Name, i)
		}
	}
	if len(got.Children) != len(want.Children) {
		t.Fatalf("object %q has %d children, want %d", want.Name, len(got.Children), len(want.Children))
	}
	for i := range want.Children {
		compareObjects(t, got.Children[i], want.Children[i])
	}
}

func TestWriteFile_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.ac")

	doc, err := Parse(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := WriteFile(doc, path, WriteOptions{}); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := ParseFile(path); err != nil {
		t.Errorf("written file does not parse: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the output file", len(entries))
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	doc := &Document{Version: VersionB, Root: &Object{Kind: KindWorld, Rot: identityRot()}}
	err := WriteFile(doc, filepath.Join(t.TempDir(), "no", "such", "dir", "x.ac"), WriteOptions{})
	if err == nil {
		t.Fatal("expected error for missing destination directory")
	}
}

func TestWrite_BadVersion(t *testing.T) {
	doc := &Document{Version: VersionB, Root: &Object{Kind: KindWorld, Rot: identityRot()}}
	var buf bytes.Buffer
	err := Write(doc, &buf, WriteOptions{Version: Version('z')})
	if err == nil {
		t.Fatal("expected error for unknown revision")
	}
}
