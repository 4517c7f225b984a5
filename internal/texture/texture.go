// Package texture resolves and decodes the image files referenced by
// model texture fields.
package texture

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"

	_ "image/jpeg"
	_ "image/png"
)

// extensions is the search order when the referenced file is missing and
// a sibling with another extension exists.
var extensions = []string{".tga", ".png", ".jpg", ".jpeg"}

// Resolve finds the on-disk file for a texture reference. Model files
// routinely carry paths from the author's machine, so the search is:
// the path as given (when absolute), then the model's own directory,
// then the configured fallback directory. In each directory the exact
// name is tried first, then the basename with each known extension.
func Resolve(name, modelDir, fallbackDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty texture name")
	}

	var dirs []string
	if filepath.IsAbs(name) {
		if path, ok := tryName(name); ok {
			return path, nil
		}
		// Fall through: keep only the basename and search the usual places.
		name = filepath.Base(name)
	}
	dirs = append(dirs, modelDir)
	if fallbackDir != "" {
		dirs = append(dirs, fallbackDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if path, ok := tryName(filepath.Join(dir, name)); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("texture %q not found", name)
}

// tryName checks the exact path, then siblings with each known extension.
func tryName(path string) (string, bool) {
	if fileExists(path) {
		return path, true
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range extensions {
		if candidate := base + ext; fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads and decodes the image at path into RGBA, ready for GL
// upload. TGA needs an explicit decoder since it has no magic bytes for
// sniffing; everything else goes through the registered formats.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
