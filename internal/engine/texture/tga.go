// Package texture decodes the images the renderer uploads: skybox faces in
// any of PNG, JPEG, BMP, TIFF or TGA.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2  // true-color
	TGATypeRLE          = 10 // run-length encoded true-color
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("TGA pixel data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA of 24 or 32 bits.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	w := &tgaWriter{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		size:        bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}
	src := data[offset:]
	if imageType == TGATypeUncompressed {
		if len(src) < width*height*w.size {
			return nil, errTGATruncated
		}
		for len(src) >= w.size && !w.full() {
			w.put(w.pixel(src))
			src = src[w.size:]
		}
	} else if err := w.decodeRLE(src); err != nil {
		return nil, err
	}
	return w.img, nil
}

// tgaWriter stores pixels in file order, which is bottom-up unless the
// descriptor says otherwise.
type tgaWriter struct {
	img         *image.RGBA
	size        int // bytes per pixel
	topToBottom bool
	n           int // pixels written
}

func (w *tgaWriter) full() bool {
	b := w.img.Bounds()
	return w.n >= b.Dx()*b.Dy()
}

func (w *tgaWriter) pixel(p []byte) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if w.size == 4 {
		c.A = p[3]
	}
	return c
}

func (w *tgaWriter) put(c color.RGBA) {
	width, height := w.img.Bounds().Dx(), w.img.Bounds().Dy()
	x, y := w.n%width, w.n/width
	if !w.topToBottom {
		y = height - 1 - y
	}
	w.img.SetRGBA(x, y, c)
	w.n++
}

func (w *tgaWriter) decodeRLE(src []byte) error {
	for !w.full() {
		if len(src) == 0 {
			return errTGATruncated
		}
		packet := src[0]
		src = src[1:]
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if len(src) < w.size {
				return errTGATruncated
			}
			c := w.pixel(src)
			src = src[w.size:]
			for i := 0; i < count && !w.full(); i++ {
				w.put(c)
			}
			continue
		}
		for i := 0; i < count && !w.full(); i++ {
			if len(src) < w.size {
				return errTGATruncated
			}
			w.put(w.pixel(src))
			src = src[w.size:]
		}
	}
	return nil
}
