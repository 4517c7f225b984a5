package ac3d

import (
	"fmt"
	"strconv"
	"strings"
)

// colorEps is the absolute tolerance used when comparing material values.
// The format writes colors with few digits, so exact float comparison
// would defeat deduplication.
const colorEps = 1e-4

// Material is one entry of the global material table. Materials are
// created while parsing MATERIAL/MAT entries and never mutated afterwards.
type Material struct {
	Name         string
	Diffuse      [3]float32
	Ambient      [3]float32
	Emissive     [3]float32
	Specular     [3]float32
	Shininess    float32 // historically written as int or float; both accepted
	Transparency float32 // 0 opaque, 1 fully transparent
	Data         string  // optional annotation (revision c MAT blocks only)
}

// DefaultMaterial returns the material used when a file defines none.
func DefaultMaterial() Material {
	return Material{
		Name:     "Default",
		Diffuse:  [3]float32{1, 1, 1},
		Ambient:  [3]float32{0.2, 0.2, 0.2},
		Specular: [3]float32{0.2, 0.2, 0.2},
	}
}

// SameAs reports whether two materials are equal within colorEps on every
// color channel, shininess and transparency. Names are ignored: legacy
// exporters repeat identical materials per object under different names.
func (m Material) SameAs(other Material) bool {
	return tripleEq(m.Diffuse, other.Diffuse) &&
		tripleEq(m.Ambient, other.Ambient) &&
		tripleEq(m.Emissive, other.Emissive) &&
		tripleEq(m.Specular, other.Specular) &&
		floatEq(m.Shininess, other.Shininess) &&
		floatEq(m.Transparency, other.Transparency)
}

func tripleEq(a, b [3]float32) bool {
	return floatEq(a[0], b[0]) && floatEq(a[1], b[1]) && floatEq(a[2], b[2])
}

func floatEq(a, b float32) bool {
	d := a - b
	return d > -colorEps && d < colorEps
}

// MaterialTable is the ordered, deduplicating global material collection.
// Surfaces reference entries by index.
type MaterialTable []Material

// Find returns the index of the first entry equal to m within tolerance.
func (t MaterialTable) Find(m Material) (int, bool) {
	for i := range t {
		if t[i].SameAs(m) {
			return i, true
		}
	}
	return 0, false
}

// Add appends m unless an equal entry already exists, and returns the
// index to reference it by. Linear scan; material tables are tens of
// entries, not thousands.
func (t *MaterialTable) Add(m Material) int {
	if i, ok := t.Find(m); ok {
		return i
	}
	*t = append(*t, m)
	return len(*t) - 1
}

// parseMaterialLine reads the single-line revision-b grammar:
//
//	MATERIAL "name" rgb r g b  amb r g b  emis r g b  spec r g b  shi s trans t
//
// Keywords are matched positionally; any deviation is a hard error.
func parseMaterialLine(toks []string, line int) (Material, error) {
	if len(toks) < 22 {
		return Material{}, fmt.Errorf("%w: MATERIAL line has %d tokens, want 22 (line %d)", ErrBadMaterial, len(toks), line)
	}

	mat := Material{Name: materialName(toks[1])}

	fields := []struct {
		keyword string
		at      int
		dst     *[3]float32
	}{
		{"rgb", 2, &mat.Diffuse},
		{"amb", 6, &mat.Ambient},
		{"emis", 10, &mat.Emissive},
		{"spec", 14, &mat.Specular},
	}
	for _, f := range fields {
		if toks[f.at] != f.keyword {
			return Material{}, fmt.Errorf("%w: expected %q at token %d, got %q (line %d)", ErrBadMaterial, f.keyword, f.at, toks[f.at], line)
		}
		v, err := parseTriple(toks[f.at+1 : f.at+4])
		if err != nil {
			return Material{}, fmt.Errorf("%w: %s: %v (line %d)", ErrBadMaterial, f.keyword, err, line)
		}
		*f.dst = v
	}

	if toks[18] != "shi" || toks[20] != "trans" {
		return Material{}, fmt.Errorf("%w: expected shi/trans keywords (line %d)", ErrBadMaterial, line)
	}
	shi, err := strconv.ParseFloat(toks[19], 32)
	if err != nil {
		return Material{}, fmt.Errorf("%w: shi: %v (line %d)", ErrBadMaterial, err, line)
	}
	trans, err := strconv.ParseFloat(toks[21], 32)
	if err != nil {
		return Material{}, fmt.Errorf("%w: trans: %v (line %d)", ErrBadMaterial, err, line)
	}
	mat.Shininess = float32(shi)
	mat.Transparency = float32(trans)

	return mat, nil
}

// parseMaterialBlock reads the multi-line revision-c grammar introduced by
// a MAT line and closed by ENDMAT.
func parseMaterialBlock(lr *lineReader, toks []string) (Material, error) {
	mat := DefaultMaterial()
	mat.Specular = [3]float32{}
	if len(toks) > 1 {
		mat.Name = materialName(toks[1])
	}
	startLine := lr.Line()

	for {
		line, ok := lr.Next()
		if !ok {
			return Material{}, fmt.Errorf("%w: MAT %q missing ENDMAT (line %d)", ErrBadMaterial, mat.Name, startLine)
		}
		t := strings.Fields(line)
		if len(t) == 0 {
			continue
		}

		var err error
		switch t[0] {
		case "ENDMAT":
			return mat, nil
		case "rgb":
			mat.Diffuse, err = parseTripleTok(t)
		case "amb":
			mat.Ambient, err = parseTripleTok(t)
		case "emis":
			mat.Emissive, err = parseTripleTok(t)
		case "spec":
			mat.Specular, err = parseTripleTok(t)
		case "shi":
			mat.Shininess, err = parseScalarTok(t)
		case "trans":
			mat.Transparency, err = parseScalarTok(t)
		case "data":
			n := 0
			if len(t) > 1 {
				n, _ = strconv.Atoi(t[1])
			}
			raw, ok := lr.NextRaw()
			if !ok {
				return Material{}, fmt.Errorf("%w: MAT %q data payload missing (line %d)", ErrBadMaterial, mat.Name, lr.Line())
			}
			if n > len(raw) {
				n = len(raw)
			}
			mat.Data = raw[:n]
		default:
			return Material{}, fmt.Errorf("%w: unknown MAT token %q (line %d)", ErrBadMaterial, t[0], lr.Line())
		}
		if err != nil {
			return Material{}, fmt.Errorf("%w: %s: %v (line %d)", ErrBadMaterial, t[0], err, lr.Line())
		}
	}
}

// materialName strips quotes and substitutes the default name for empty
// ones, mirroring what AC3D itself displays.
func materialName(tok string) string {
	name := unquote(tok)
	if name == "" {
		name = "Default"
	}
	return name
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}

func parseTriple(toks []string) ([3]float32, error) {
	var v [3]float32
	if len(toks) < 3 {
		return v, fmt.Errorf("want 3 values, got %d", len(toks))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(toks[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseTripleTok(toks []string) ([3]float32, error) {
	if len(toks) < 4 {
		return [3]float32{}, fmt.Errorf("want 3 values, got %d", len(toks)-1)
	}
	return parseTriple(toks[1:4])
}

func parseScalarTok(toks []string) (float32, error) {
	if len(toks) < 2 {
		return 0, fmt.Errorf("want 1 value, got 0")
	}
	f, err := strconv.ParseFloat(toks[1], 32)
	return float32(f), err
}
