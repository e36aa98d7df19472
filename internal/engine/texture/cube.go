package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/skyscene/internal/logger"
)

// Errors returned when loading a cube map.
var (
	ErrMissingFace  = errors.New("skybox face not found")
	ErrFaceMismatch = errors.New("skybox faces differ in size")
)

// FaceSuffixes names the six skybox files in cube map face order
// +X, -X, +Y, -Y, +Z, -Z. The "front" image looks down -Z.
var FaceSuffixes = [6]string{"rt", "lf", "up", "dn", "bk", "ft"}

// Extensions are tried in order when looking for a face.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".tga"}

// Decode reads an image file. TGA is chosen by extension since it has no
// signature; everything else goes through the registered decoders.
func Decode(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to *image.RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FacePath finds <dir>/<name>_<suffix> with any supported extension.
func FacePath(dir, name, suffix string) (string, error) {
	base := filepath.Join(dir, name+"_"+suffix)
	for _, ext := range Extensions {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s.*", ErrMissingFace, base)
}

// LoadCubeFaces decodes the six faces of skybox name in parallel. All
// faces must exist and be square images of one size.
func LoadCubeFaces(dir, name string) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA
	var g errgroup.Group
	for i, suffix := range FaceSuffixes {
		g.Go(func() error {
			path, err := FacePath(dir, name, suffix)
			if err != nil {
				return err
			}
			img, err := Decode(path)
			if err != nil {
				return err
			}
			faces[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return faces, fmt.Errorf("skybox %q: %w", name, err)
	}

	size := faces[0].Bounds().Size()
	for i, f := range faces {
		if s := f.Bounds().Size(); s != size || s.X != s.Y {
			return faces, fmt.Errorf("%w: %s is %v, %s is %v", ErrFaceMismatch, FaceSuffixes[0], size, FaceSuffixes[i], s)
		}
	}
	logger.Debug("skybox loaded", zap.String("name", name), zap.Int("size", size.X))
	return faces, nil
}
