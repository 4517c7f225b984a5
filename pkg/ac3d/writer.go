package ac3d

import (
	"bufio"
	"fmt"
	"io"
	gomath "math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/skymesh/actools/pkg/math"
)

// DefaultPrecision is the number of fractional digits used for vertex
// coordinates. Held constant across a whole export so round-trips stay
// inside a 1e-6 tolerance.
const DefaultPrecision = 7

// WriteOptions control serialization.
type WriteOptions struct {
	// Version selects the emitted format revision. Zero means revision b,
	// which every third-party reader understands.
	Version Version

	// Precision is the fractional digit count for vertex coordinates.
	// Zero means DefaultPrecision.
	Precision int
}

func (o WriteOptions) version() Version {
	if o.Version == 0 {
		return VersionB
	}
	return o.Version
}

func (o WriteOptions) precision() int {
	if o.Precision == 0 {
		return DefaultPrecision
	}
	return o.Precision
}

// Write serializes the document to w. Objects are emitted depth-first,
// pre-order, children in insertion order; the material block always
// precedes the first OBJECT so surface indices are stable.
func Write(doc *Document, w io.Writer, opts WriteOptions) error {
	if !opts.version().Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, opts.Version)
	}

	aw := &acWriter{w: bufio.NewWriter(w), opts: opts}
	aw.printf("AC3D%s\n", opts.version())

	for _, mat := range doc.Materials {
		aw.material(mat)
	}
	if doc.Root != nil {
		aw.object(doc.Root)
	}

	if aw.err != nil {
		return aw.err
	}
	return aw.w.Flush()
}

// WriteFile serializes the document to path. The output is staged in a
// temporary file next to the destination and renamed into place only on
// success, so a failed export never leaves a claimed-valid file behind.
func WriteFile(doc *Document, path string, opts WriteOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ac-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Write(doc, tmp, opts); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// acWriter emits the token grammar with a sticky error, so the emission
// code reads like the format instead of error plumbing.
type acWriter struct {
	w    *bufio.Writer
	opts WriteOptions
	err  error
}

func (aw *acWriter) printf(format string, args ...interface{}) {
	if aw.err != nil {
		return
	}
	_, aw.err = fmt.Fprintf(aw.w, format, args...)
}

// material writes one table entry: the fixed single-line grammar for
// revision b, the MAT block for revision c. Keyword order and spacing of
// the single-line form are load-bearing for third-party readers.
func (aw *acWriter) material(m Material) {
	shi := int(gomath.Round(float64(m.Shininess)))
	if aw.opts.version() >= VersionC {
		aw.printf("MAT %q\n", m.Name)
		aw.printf("rgb %s\n", triple(m.Diffuse))
		aw.printf("amb %s\n", triple(m.Ambient))
		aw.printf("emis %s\n", triple(m.Emissive))
		aw.printf("spec %s\n", triple(m.Specular))
		aw.printf("shi %d\n", shi)
		aw.printf("trans %s\n", num(m.Transparency))
		if m.Data != "" {
			aw.printf("data %d\n%s\n", len(m.Data), m.Data)
		}
		aw.printf("ENDMAT\n")
		return
	}

	// The single-line grammar is positional, so the quoted name must stay
	// a single token.
	name := strings.ReplaceAll(m.Name, " ", "_")
	aw.printf("MATERIAL %q rgb %s  amb %s  emis %s  spec %s  shi %d trans %s\n",
		name, triple(m.Diffuse), triple(m.Ambient), triple(m.Emissive),
		triple(m.Specular), shi, num(m.Transparency))
}

func (aw *acWriter) object(o *Object) {
	aw.printf("OBJECT %s\n", o.Kind)
	if o.Name != "" {
		aw.printf("name %q\n", o.Name)
	}
	if o.Data != "" {
		aw.printf("data %d\n%s\n", len(o.Data), o.Data)
	}
	if o.URL != "" {
		aw.printf("url %s\n", o.URL)
	}
	if aw.opts.version() >= VersionC {
		if o.Hidden {
			aw.printf("hidden\n")
		}
		if o.Locked {
			aw.printf("locked\n")
		}
		if o.Folded {
			aw.printf("folded\n")
		}
	}
	if o.Texture != "" {
		aw.printf("texture %q\n", o.Texture)
		if o.TexRep != [2]float32{1, 1} {
			aw.printf("texrep %s %s\n", num(o.TexRep[0]), num(o.TexRep[1]))
		}
		if o.TexOff != [2]float32{} {
			aw.printf("texoff %s %s\n", num(o.TexOff[0]), num(o.TexOff[1]))
		}
	}
	if o.Subdiv > 0 {
		aw.printf("subdiv %d\n", o.Subdiv)
	}
	if o.CreaseSet {
		aw.printf("crease %s\n", num(o.Crease))
	}
	if o.Loc != [3]float32{} {
		aw.printf("loc %s %s %s\n", num(o.Loc[0]), num(o.Loc[1]), num(o.Loc[2]))
	}
	if !math.Mat3(o.Rot).IsIdentity(0) {
		aw.printf("rot")
		for _, f := range o.Rot {
			aw.printf(" %s", num(f))
		}
		aw.printf("\n")
	}
	if len(o.Vertices) > 0 {
		aw.printf("numvert %d\n", len(o.Vertices))
		prec := aw.opts.precision()
		for _, v := range o.Vertices {
			aw.printf("%s %s %s\n", coord(v[0], prec), coord(v[1], prec), coord(v[2], prec))
		}
	}
	if len(o.Surfaces) > 0 {
		aw.printf("numsurf %d\n", len(o.Surfaces))
		for _, s := range o.Surfaces {
			aw.surface(s)
		}
	}

	// kids is the terminal field line for every object.
	aw.printf("kids %d\n", len(o.Children))
	for _, c := range o.Children {
		aw.object(c)
	}
}

func (aw *acWriter) surface(s Surface) {
	aw.printf("SURF 0x%x\n", s.Flags())
	aw.printf("mat %d\n", s.Material)
	aw.printf("refs %d\n", len(s.Refs))
	for _, r := range s.Refs {
		aw.printf("%d %s %s\n", r.Vertex, num(r.U), num(r.V))
	}
}

// coord formats a vertex coordinate with fixed precision.
func coord(f float32, prec int) string {
	return strconv.FormatFloat(float64(f), 'f', prec, 32)
}

// num formats a scalar in the compact form AC3D itself writes.
func num(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func triple(v [3]float32) string {
	return num(v[0]) + " " + num(v[1]) + " " + num(v[2])
}
