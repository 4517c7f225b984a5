// Package viewer renders a parsed scene in an interactive preview window:
// drag to orbit, scroll to zoom, escape to quit.
package viewer

import (
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/skymesh/actools/internal/logger"
	"github.com/skymesh/actools/internal/texture"
	"github.com/skymesh/actools/pkg/ac3d"
	"github.com/skymesh/actools/pkg/math"
)

// Options configure the preview session.
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool

	// ModelDir is where the .ac file lives; its textures are searched
	// there first.
	ModelDir string

	// TextureDir is the configured fallback texture directory.
	TextureDir string

	Resolve ac3d.ResolveOptions
}

// Run opens a window and displays the document until the user quits.
func Run(doc *ac3d.Document, opts Options) error {
	win, err := NewWindow(WindowConfig{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Fullscreen: opts.Fullscreen,
		VSync:      opts.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	renderer, err := NewRenderer(opts.Width, opts.Height)
	if err != nil {
		return err
	}
	defer renderer.Close()

	rd := BuildRenderData(doc, opts.Resolve)
	for _, w := range rd.Warnings {
		logger.Warn("geometry", zap.String("detail", w.String()))
	}
	renderer.Upload(rd)
	loadTextures(renderer, rd, opts)

	camera := NewOrbitCamera()
	camera.FitToBounds(rd.Bounds)

	width, height := opts.Width, opts.Height
	dragging := false

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return nil

			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					return nil
				}

			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_RESIZED {
					width, height = int(e.Data1), int(e.Data2)
					renderer.Resize(width, height)
				}

			case *sdl.MouseButtonEvent:
				if e.Button == sdl.BUTTON_LEFT {
					dragging = e.Type == sdl.MOUSEBUTTONDOWN
				}

			case *sdl.MouseMotionEvent:
				if dragging {
					camera.HandleDrag(float32(e.XRel), float32(e.YRel))
				}

			case *sdl.MouseWheelEvent:
				camera.HandleZoom(float32(e.Y))
			}
		}

		aspect := float32(width) / float32(height)
		proj := math.Perspective(45, aspect, 0.01, 100000)
		renderer.Draw(proj.Mul(camera.ViewMatrix()))
		win.SwapBuffers()
	}
}

// loadTextures resolves and uploads every distinct texture reference.
// A missing or undecodable file downgrades its meshes to vertex colors.
func loadTextures(renderer *Renderer, rd *RenderData, opts Options) {
	seen := make(map[string]bool)
	for _, p := range rd.Primitives {
		if p.Texture == "" || seen[p.Texture] {
			continue
		}
		seen[p.Texture] = true

		path, err := texture.Resolve(p.Texture, opts.ModelDir, opts.TextureDir)
		if err != nil {
			logger.Warn("texture not found",
				zap.String("texture", p.Texture),
				zap.String("object", p.Name),
			)
			continue
		}
		img, err := texture.Load(path)
		if err != nil {
			logger.Warn("texture load failed",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		renderer.AddTexture(p.Texture, img)
		logger.Debug("texture loaded",
			zap.String("texture", p.Texture),
			zap.String("path", filepath.Clean(path)),
		)
	}
}
