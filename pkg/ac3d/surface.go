package ac3d

import (
	"fmt"
	"strconv"
	"strings"
)

// SurfaceType is the low nibble of the SURF flags byte.
type SurfaceType int

const (
	SurfacePolygon    SurfaceType = 0
	SurfaceClosedLine SurfaceType = 1
	SurfaceLine       SurfaceType = 2
)

// Flag bits above the type nibble.
const (
	flagShaded   = 0x10
	flagTwoSided = 0x20
)

// String returns a human-readable surface type name.
func (t SurfaceType) String() string {
	switch t {
	case SurfacePolygon:
		return "polygon"
	case SurfaceClosedLine:
		return "closed-line"
	case SurfaceLine:
		return "line"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// SurfaceRef is one vertex reference with its UV coordinate.
type SurfaceRef struct {
	Vertex int
	U, V   float32
}

// Surface is one SURF block, owned by exactly one object. Material is an
// index into the document-global material table, not a node-local one.
type Surface struct {
	Type     SurfaceType
	Shaded   bool
	TwoSided bool
	Material int
	Refs     []SurfaceRef
}

// Flags re-encodes the surface attributes as the SURF flags byte.
func (s Surface) Flags() int {
	f := int(s.Type) & 0xF
	if s.Shaded {
		f |= flagShaded
	}
	if s.TwoSided {
		f |= flagTwoSided
	}
	return f
}

// IsValidPolygon reports whether a polygon surface carries a renderable
// vertex count. Surfaces failing this stay in the model but produce no
// faces.
func (s Surface) IsValidPolygon() bool {
	return s.Type == SurfacePolygon && len(s.Refs) >= 3 && len(s.Refs) <= 4
}

// parseSurface reads one SURF block. The SURF line has been consumed;
// toks are its tokens. The optional mat line defaults to material 0 when
// absent (legacy files omit it); the mandatory refs list terminates the
// block.
func parseSurface(lr *lineReader, doc *Document, toks []string, opts ParseOptions) (Surface, error) {
	if len(toks) < 2 {
		return Surface{}, fmt.Errorf("%w: SURF missing flags (line %d)", ErrBadSurface, lr.Line())
	}
	flags, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(toks[1]), "0x"), 16, 32)
	if err != nil {
		return Surface{}, fmt.Errorf("%w: flags %q: %v (line %d)", ErrBadSurface, toks[1], err, lr.Line())
	}

	surf := Surface{
		Type:     SurfaceType(flags & 0xF),
		Shaded:   flags&flagShaded != 0,
		TwoSided: flags&flagTwoSided != 0,
	}

	sawMat := false
	for {
		line, ok := lr.Next()
		if !ok {
			return Surface{}, fmt.Errorf("%w: surface not closed by refs before end of input", ErrBadSurface)
		}
		t := strings.Fields(line)
		if len(t) == 0 {
			continue
		}

		switch t[0] {
		case "mat":
			if len(t) < 2 {
				return Surface{}, fmt.Errorf("%w: mat missing index (line %d)", ErrBadSurface, lr.Line())
			}
			idx, err := strconv.Atoi(t[1])
			if err != nil {
				return Surface{}, fmt.Errorf("%w: mat index %q (line %d)", ErrBadSurface, t[1], lr.Line())
			}
			surf.Material = idx
			sawMat = true
		case "refs":
			if !sawMat && opts.Strict {
				doc.warnf(lr.Line(), "SURF without mat line, defaulting to material 0")
			}
			return surf, surf.readRefs(lr, t)
		default:
			// Speculative read went one line too far: hand it back.
			doc.warnf(lr.Line(), "unexpected token %q in SURF block", t[0])
			lr.Unread()
			return surf, nil
		}
	}
}

func (s *Surface) readRefs(lr *lineReader, toks []string) error {
	count, err := countArg(toks, lr.Line())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSurface, err)
	}
	s.Refs = make([]SurfaceRef, 0, count)
	for i := 0; i < count; i++ {
		line, ok := lr.Next()
		if !ok {
			return fmt.Errorf("%w: refs %d overruns end of input at ref %d", ErrBadSurface, count, i)
		}
		t := strings.Fields(line)
		if len(t) < 3 {
			return fmt.Errorf("%w: ref %d wants `index u v`, got %q (line %d)", ErrBadSurface, i, line, lr.Line())
		}
		idx, err := strconv.Atoi(t[0])
		if err != nil {
			return fmt.Errorf("%w: ref %d index: %v (line %d)", ErrBadSurface, i, err, lr.Line())
		}
		u, err1 := strconv.ParseFloat(t[1], 32)
		v, err2 := strconv.ParseFloat(t[2], 32)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%w: ref %d uv (line %d)", ErrBadSurface, i, lr.Line())
		}
		s.Refs = append(s.Refs, SurfaceRef{Vertex: idx, U: float32(u), V: float32(v)})
	}
	return nil
}
