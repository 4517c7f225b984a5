// Package ac3d implements a reader and writer for the AC3D (.ac) scene
// format: a line-oriented text format describing a hierarchy of named
// objects carrying geometry, materials, textures and parent-relative
// transforms.
//
// The reader is tolerant of the malformed and legacy files that circulate
// in the wild: missing optional tokens, inconsistent whitespace, repeated
// materials and integer/float drift in the shininess field are all
// accepted. Structural damage (a bad header, a kids count that overruns
// the end of input) is a hard error; everything else is recorded as a
// Warning on the Document and parsing continues.
package ac3d

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format errors.
var (
	ErrInvalidHeader      = errors.New("invalid AC3D header")
	ErrUnsupportedVersion = errors.New("unsupported AC3D version")
	ErrTruncatedObject    = errors.New("truncated OBJECT block")
	ErrBadMaterial        = errors.New("malformed material")
	ErrBadSurface         = errors.New("malformed surface")
)

// Version is the format revision tag from the file header. Only revisions
// 'b' and 'c' are recognized.
type Version byte

const (
	VersionB Version = 'b'
	VersionC Version = 'c'
)

// String returns the version as it appears in the header.
func (v Version) String() string {
	return string(rune(v))
}

// Valid reports whether the version is a recognized revision.
func (v Version) Valid() bool {
	return v == VersionB || v == VersionC
}

// Warning is a recoverable problem encountered while parsing. Line is the
// physical line number in the source, or 0 when the problem was detected
// after reading (for example an out-of-range material index).
type Warning struct {
	Line    int
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// Document is a fully parsed .ac file: a global material table and a tree
// of objects rooted at a world object.
type Document struct {
	Version   Version
	Materials MaterialTable
	Root      *Object
	Warnings  []Warning
}

func (d *Document) warnf(line int, format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

// ParseOptions control reader strictness.
type ParseOptions struct {
	// Strict records additional warnings for tolerated legacy quirks,
	// such as a SURF block with no mat line.
	Strict bool
}

// Parse reads a .ac document from r with default options.
func Parse(r io.Reader) (*Document, error) {
	return ParseWithOptions(r, ParseOptions{})
}

// ParseFile parses a .ac file from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening AC3D file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseWithOptions reads a .ac document from r.
func ParseWithOptions(r io.Reader, opts ParseOptions) (*Document, error) {
	lr := newLineReader(r)

	header, ok := lr.Next()
	if !ok {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHeader)
	}
	// Some hand-edited files put a space between the magic and the
	// revision tag.
	if toks := strings.Fields(header); len(toks) == 2 && toks[0] == "AC3D" && len(toks[1]) == 1 {
		header = toks[0] + toks[1]
	}
	if len(header) != 5 || header[:4] != "AC3D" {
		return nil, fmt.Errorf("%w: %q (line %d)", ErrInvalidHeader, header, lr.Line())
	}

	doc := &Document{Version: Version(header[4])}
	if !doc.Version.Valid() {
		return nil, fmt.Errorf("%w: %q (line %d)", ErrUnsupportedVersion, header[4:], lr.Line())
	}

	var topLevel []*Object
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		toks := strings.Fields(line)
		if len(toks) == 0 {
			continue
		}

		switch toks[0] {
		case "MATERIAL":
			mat, err := parseMaterialLine(toks, lr.Line())
			if err != nil {
				return nil, err
			}
			doc.Materials = append(doc.Materials, mat)
		case "MAT":
			if doc.Version < VersionC {
				doc.warnf(lr.Line(), "MAT block in revision %s file", doc.Version)
			}
			mat, err := parseMaterialBlock(lr, toks)
			if err != nil {
				return nil, err
			}
			doc.Materials = append(doc.Materials, mat)
		case "OBJECT":
			if len(toks) < 2 {
				doc.warnf(lr.Line(), "OBJECT with no type")
				continue
			}
			obj, err := parseObject(lr, doc, toks[1], opts)
			if err != nil {
				return nil, err
			}
			topLevel = append(topLevel, obj)
		default:
			doc.warnf(lr.Line(), "unknown token %q", toks[0])
		}
	}

	doc.Root = assembleRoot(doc, topLevel)
	doc.clampMaterialIndices()
	return doc, nil
}

// assembleRoot reduces the top-level object list to a single world root.
// A lone world object becomes the root directly; anything else is hung off
// a (possibly synthesized) world.
func assembleRoot(doc *Document, topLevel []*Object) *Object {
	var world *Object
	var rest []*Object
	for _, obj := range topLevel {
		if obj.Kind == KindWorld && world == nil {
			world = obj
			continue
		}
		if obj.Kind == KindWorld {
			doc.warnf(0, "extra world object %q attached as group", obj.Name)
			obj.Kind = KindGroup
		}
		rest = append(rest, obj)
	}

	if world == nil {
		world = &Object{Kind: KindWorld, Rot: identityRot()}
		if len(topLevel) > 0 {
			doc.warnf(0, "no world object; synthesized one")
		}
	}
	for _, obj := range rest {
		obj.parent = world
		world.Children = append(world.Children, obj)
	}
	return world
}

// clampMaterialIndices forces every surface material index into the global
// table, defaulting to 0. Runs after the whole file is read so that
// material definitions may follow the objects that reference them.
func (d *Document) clampMaterialIndices() {
	if len(d.Materials) == 0 {
		if d.Root.hasSurfaces() {
			d.warnf(0, "no materials defined; using default")
		}
		d.Materials = append(d.Materials, DefaultMaterial())
	}
	d.Root.walk(func(o *Object) {
		for i := range o.Surfaces {
			s := &o.Surfaces[i]
			if s.Material < 0 || s.Material >= len(d.Materials) {
				d.warnf(0, "object %q surface %d: material index %d out of range, using 0", o.Name, i, s.Material)
				s.Material = 0
			}
		}
	})
}
