package ac3d

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectKind identifies the role of an object in the scene hierarchy.
type ObjectKind int

// KindGroup is deliberately the zero value: it is the safe fallback for
// anything that is neither the sole world root nor geometry.
const (
	KindGroup ObjectKind = iota
	KindWorld
	KindPoly
	KindLight
)

// String returns the kind keyword as written in .ac files.
func (k ObjectKind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindGroup:
		return "group"
	case KindPoly:
		return "poly"
	case KindLight:
		return "light"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// parseObjectKind maps an OBJECT type token to a kind. Unknown types fall
// back to group so the rest of the subtree still parses.
func parseObjectKind(tok string) (ObjectKind, bool) {
	switch unquote(tok) {
	case "world":
		return KindWorld, true
	case "group":
		return KindGroup, true
	case "poly":
		return KindPoly, true
	case "light":
		return KindLight, true
	default:
		return KindGroup, false
	}
}

// Object is one OBJECT entry: a node of the scene graph. Loc and Rot are
// relative to the parent, not world space; see Document-level transform
// resolution in geometry.go.
type Object struct {
	Kind ObjectKind
	Name string
	Data string // optional free-text annotation (length-prefixed in the file)
	URL  string

	Loc [3]float32 // translation relative to parent origin
	Rot [9]float32 // 3x3 rotation, row-major exactly as read

	Crease    float32 // smoothing threshold, degrees
	CreaseSet bool    // whether the file carried a crease line
	Subdiv    int

	Texture string
	TexRep  [2]float32
	TexOff  [2]float32

	// Hierarchy-state flags, revision c only.
	Hidden bool
	Locked bool
	Folded bool

	Vertices [][3]float32
	Surfaces []Surface
	Children []*Object

	parent *Object // non-owning back-reference, diagnostics only
}

// Parent returns the owning parent object, or nil for the root.
func (o *Object) Parent() *Object {
	return o.parent
}

func identityRot() [9]float32 {
	return [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// walk visits o and all descendants depth-first, pre-order.
func (o *Object) walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.walk(fn)
	}
}

func (o *Object) hasSurfaces() bool {
	found := false
	o.walk(func(n *Object) {
		if len(n.Surfaces) > 0 {
			found = true
		}
	})
	return found
}

// Count returns the number of objects in the subtree rooted at o.
func (o *Object) Count() int {
	n := 0
	o.walk(func(*Object) { n++ })
	return n
}

// parseObject reads one OBJECT block. The OBJECT line itself has already
// been consumed; kindTok is its type token. Dispatch is a fixed switch on
// the first token of each line: any unrecognized token ends the block and
// is pushed back for the enclosing context, since the format has no end
// marker other than whatever comes next. A kids line is always terminal.
func parseObject(lr *lineReader, doc *Document, kindTok string, opts ParseOptions) (*Object, error) {
	kind, known := parseObjectKind(kindTok)
	if !known {
		doc.warnf(lr.Line(), "unknown object type %q, treating as group", kindTok)
	}
	obj := &Object{
		Kind:   kind,
		Rot:    identityRot(),
		TexRep: [2]float32{1, 1},
	}

	for {
		line, ok := lr.Next()
		if !ok {
			doc.warnf(lr.Line(), "object %q not closed by kids line before end of input", obj.Name)
			return obj, nil
		}
		toks := strings.Fields(line)
		if len(toks) == 0 {
			continue
		}

		switch toks[0] {
		case "name":
			if len(toks) > 1 {
				// Names may contain spaces inside the quotes.
				obj.Name = unquote(strings.Join(toks[1:], " "))
			}
		case "data":
			if err := obj.readData(lr, toks); err != nil {
				return nil, err
			}
		case "url":
			if len(toks) > 1 {
				obj.URL = toks[1]
			}
		case "loc":
			v, err := parseTripleArgs(toks, lr.Line())
			if err != nil {
				return nil, err
			}
			obj.Loc = v
		case "rot":
			if err := obj.readRotation(toks, lr.Line()); err != nil {
				return nil, err
			}
		case "texture":
			if len(toks) > 1 {
				obj.Texture = unquote(strings.Join(toks[1:], " "))
			}
		case "texrep":
			v, err := parsePairArgs(toks, lr.Line())
			if err != nil {
				return nil, err
			}
			obj.TexRep = v
		case "texoff":
			v, err := parsePairArgs(toks, lr.Line())
			if err != nil {
				return nil, err
			}
			obj.TexOff = v
		case "subdiv":
			if len(toks) > 1 {
				obj.Subdiv, _ = strconv.Atoi(toks[1])
			}
		case "crease":
			f, err := parseScalarTok(toks)
			if err != nil {
				return nil, fmt.Errorf("%w: crease: %v (line %d)", ErrTruncatedObject, err, lr.Line())
			}
			obj.Crease = f
			obj.CreaseSet = true
		case "hidden":
			obj.Hidden = true
		case "locked":
			obj.Locked = true
		case "folded":
			obj.Folded = true
		case "numvert":
			if err := obj.readVertices(lr, toks); err != nil {
				return nil, err
			}
		case "numsurf":
			if err := obj.readSurfaces(lr, doc, toks, opts); err != nil {
				return nil, err
			}
		case "kids":
			return obj, obj.readChildren(lr, doc, toks, opts)
		default:
			doc.warnf(lr.Line(), "unknown object token %q ends %s %q", toks[0], obj.Kind, obj.Name)
			lr.Unread()
			return obj, nil
		}
	}
}

// readData consumes a length-prefixed payload from the next physical line.
// The payload is not tokenized: it may contain embedded whitespace.
func (o *Object) readData(lr *lineReader, toks []string) error {
	n := 0
	if len(toks) > 1 {
		var err error
		if n, err = strconv.Atoi(toks[1]); err != nil {
			return fmt.Errorf("%w: data length %q (line %d)", ErrTruncatedObject, toks[1], lr.Line())
		}
	}
	raw, ok := lr.NextRaw()
	if !ok {
		return fmt.Errorf("%w: data payload missing (line %d)", ErrTruncatedObject, lr.Line())
	}
	if n > len(raw) {
		n = len(raw)
	}
	o.Data = raw[:n]
	return nil
}

// readRotation stores the nine floats row-major exactly as given. No
// transposition happens anywhere in the codec; the writer emits the same
// layout, which keeps round-trips bit-stable.
func (o *Object) readRotation(toks []string, line int) error {
	if len(toks) < 10 {
		return fmt.Errorf("%w: rot wants 9 values, got %d (line %d)", ErrTruncatedObject, len(toks)-1, line)
	}
	for i := 0; i < 9; i++ {
		f, err := strconv.ParseFloat(toks[i+1], 32)
		if err != nil {
			return fmt.Errorf("%w: rot: %v (line %d)", ErrTruncatedObject, err, line)
		}
		o.Rot[i] = float32(f)
	}
	return nil
}

func (o *Object) readVertices(lr *lineReader, toks []string) error {
	count, err := countArg(toks, lr.Line())
	if err != nil {
		return err
	}
	o.Vertices = make([][3]float32, 0, count)
	for i := 0; i < count; i++ {
		line, ok := lr.Next()
		if !ok {
			return fmt.Errorf("%w: numvert %d overruns end of input at vertex %d", ErrTruncatedObject, count, i)
		}
		v, err := parseTriple(strings.Fields(line))
		if err != nil {
			return fmt.Errorf("%w: vertex %d: %v (line %d)", ErrTruncatedObject, i, err, lr.Line())
		}
		o.Vertices = append(o.Vertices, v)
	}
	return nil
}

// readSurfaces reads up to count SURF blocks. A non-SURF line where one is
// expected ends the list early with a warning; declared surface counts in
// legacy files are not always honest.
func (o *Object) readSurfaces(lr *lineReader, doc *Document, toks []string, opts ParseOptions) error {
	count, err := countArg(toks, lr.Line())
	if err != nil {
		return err
	}
	o.Surfaces = make([]Surface, 0, count)
	for i := 0; i < count; i++ {
		line, ok := lr.Next()
		if !ok {
			doc.warnf(lr.Line(), "numsurf %d overruns end of input at surface %d", count, i)
			return nil
		}
		t := strings.Fields(line)
		if len(t) == 0 || t[0] != "SURF" {
			doc.warnf(lr.Line(), "expected SURF, got %q; ending surface list", line)
			lr.Unread()
			return nil
		}
		surf, err := parseSurface(lr, doc, t, opts)
		if err != nil {
			return err
		}
		o.Surfaces = append(o.Surfaces, surf)
	}
	return nil
}

// readChildren consumes exactly the declared number of child OBJECT
// blocks. The declared count is authoritative: running out of input is a
// hard error, not a silently truncated tree.
func (o *Object) readChildren(lr *lineReader, doc *Document, toks []string, opts ParseOptions) error {
	count, err := countArg(toks, lr.Line())
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		line, ok := lr.Next()
		if !ok {
			return fmt.Errorf("%w: object %q declares %d kids but input ends after %d", ErrTruncatedObject, o.Name, count, i)
		}
		t := strings.Fields(line)
		if len(t) < 2 || t[0] != "OBJECT" {
			return fmt.Errorf("%w: object %q kid %d: expected OBJECT, got %q (line %d)", ErrTruncatedObject, o.Name, i, line, lr.Line())
		}
		child, err := parseObject(lr, doc, t[1], opts)
		if err != nil {
			return err
		}
		child.parent = o
		o.Children = append(o.Children, child)
	}
	return nil
}

func countArg(toks []string, line int) (int, error) {
	if len(toks) < 2 {
		return 0, fmt.Errorf("%w: %s missing count (line %d)", ErrTruncatedObject, toks[0], line)
	}
	n, err := strconv.Atoi(toks[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad %s count %q (line %d)", ErrTruncatedObject, toks[0], toks[1], line)
	}
	return n, nil
}

func parseTripleArgs(toks []string, line int) ([3]float32, error) {
	v, err := parseTripleTok(toks)
	if err != nil {
		return v, fmt.Errorf("%w: %s: %v (line %d)", ErrTruncatedObject, toks[0], err, line)
	}
	return v, nil
}

func parsePairArgs(toks []string, line int) ([2]float32, error) {
	var v [2]float32
	if len(toks) < 3 {
		return v, fmt.Errorf("%w: %s wants 2 values, got %d (line %d)", ErrTruncatedObject, toks[0], len(toks)-1, line)
	}
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(toks[i+1], 32)
		if err != nil {
			return v, fmt.Errorf("%w: %s: %v (line %d)", ErrTruncatedObject, toks[0], err, line)
		}
		v[i] = float32(f)
	}
	return v, nil
}
