package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// tgaHeader builds a header for a width x height image.
func tgaHeader(imageType byte, width, height, bpp int, descriptor byte) []byte {
	h := make([]byte, tgaHeaderSize)
	h[2] = imageType
	h[12], h[13] = byte(width), byte(width>>8)
	h[14], h[15] = byte(height), byte(height>>8)
	h[16] = byte(bpp)
	h[17] = descriptor
	return h
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	// BGR rows, bottom row first.
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)
	img, err := DecodeTGA(data)
	require.NoError(t, err)

	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, rgba.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgba.RGBAAt(1, 1))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 40, // run of two
		0x00, 1, 2, 3, 4, // one raw pixel
	)
	img, err := DecodeTGA(data)
	require.NoError(t, err)

	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 40}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 40}, rgba.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 4}, rgba.RGBAAt(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte {
			h := tgaHeader(TGATypeUncompressed, 1, 1, 24, 0)
			h[1] = 1
			return h
		}()},
		{"grayscale", tgaHeader(3, 1, 1, 8, 0)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated raw", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, 0), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 4, 1, 24, 0), 0x81, 1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.Error(t, err)
		})
	}
}

func solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// writeSkybox writes the six faces of name into dir, mixing formats.
func writeSkybox(t *testing.T, dir, name string, size int) {
	t.Helper()
	for i, suffix := range FaceSuffixes {
		img := solid(size, color.RGBA{R: uint8(40 * i), G: 100, B: 200, A: 255})
		base := filepath.Join(dir, name+"_"+suffix)
		var err error
		switch i {
		case 0:
			f, ferr := os.Create(base + ".bmp")
			require.NoError(t, ferr)
			err = bmp.Encode(f, img)
			require.NoError(t, f.Close())
		case 1:
			f, ferr := os.Create(base + ".tiff")
			require.NoError(t, ferr)
			err = tiff.Encode(f, img, nil)
			require.NoError(t, f.Close())
		case 2:
			data := tgaHeader(TGATypeUncompressed, size, size, 32, 0x20)
			for p := 0; p < len(img.Pix); p += 4 {
				data = append(data, img.Pix[p+2], img.Pix[p+1], img.Pix[p], img.Pix[p+3])
			}
			err = os.WriteFile(base+".tga", data, 0o644)
		default:
			f, ferr := os.Create(base + ".png")
			require.NoError(t, ferr)
			err = png.Encode(f, img)
			require.NoError(t, f.Close())
		}
		require.NoError(t, err)
	}
}

func TestLoadCubeFaces(t *testing.T) {
	dir := t.TempDir()
	writeSkybox(t, dir, "rainbow", 4)

	faces, err := LoadCubeFaces(dir, "rainbow")
	require.NoError(t, err)
	for i, f := range faces {
		require.NotNil(t, f, FaceSuffixes[i])
		assert.Equal(t, image.Pt(4, 4), f.Bounds().Size())
		assert.Equal(t, color.RGBA{R: uint8(40 * i), G: 100, B: 200, A: 255}, f.RGBAAt(2, 2), FaceSuffixes[i])
	}
}

func TestLoadCubeFacesMissing(t *testing.T) {
	dir := t.TempDir()
	writeSkybox(t, dir, "rainbow", 4)
	require.NoError(t, os.Remove(filepath.Join(dir, "rainbow_dn.png")))

	_, err := LoadCubeFaces(dir, "rainbow")
	assert.ErrorIs(t, err, ErrMissingFace)

	_, err = LoadCubeFaces(dir, "nothing")
	assert.ErrorIs(t, err, ErrMissingFace)
}

func TestLoadCubeFacesMismatch(t *testing.T) {
	dir := t.TempDir()
	writeSkybox(t, dir, "rainbow", 4)
	f, err := os.Create(filepath.Join(dir, "rainbow_ft.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(8, color.RGBA{A: 255})))
	require.NoError(t, f.Close())

	_, err = LoadCubeFaces(dir, "rainbow")
	assert.ErrorIs(t, err, ErrFaceMismatch)
}

func TestDecodeGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad_rt.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := Decode(path)
	assert.Error(t, err)
}

func TestToRGBAMovesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	src.Set(5, 5, color.NRGBA{R: 255, A: 255})
	out := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(0, 0))
}
