// Package texture decodes item images into RGBA bitmaps ready for the atlas.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types this decoder handles.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// tgaReader walks TGA pixel data and writes pixels into an image in file order.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int
	bpp         int
	width       int
	height      int
	topToBottom bool
	written     int
}

func (r *tgaReader) next() (color.RGBA, error) {
	if r.pos+r.bpp > len(r.data) {
		return color.RGBA{}, errTGATruncated
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, nil
}

func (r *tgaReader) put(c color.RGBA) {
	x := r.written % r.width
	y := r.written / r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.written++
}

func (r *tgaReader) done() bool {
	return r.written >= r.width*r.height
}

// DecodeTGA decodes an uncompressed or RLE true-color TGA image.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, errors.New("tga: header too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bitsPerPixel := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bitsPerPixel != 24 && bitsPerPixel != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bitsPerPixel)
	}
	if 18+idLength > len(data) {
		return nil, errTGATruncated
	}

	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		data:        data[18+idLength:],
		bpp:         bitsPerPixel / 8,
		width:       width,
		height:      height,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = r.readRaw()
	} else {
		err = r.readRLE()
	}
	if err != nil {
		return nil, err
	}
	return r.img, nil
}

func (r *tgaReader) readRaw() error {
	for !r.done() {
		c, err := r.next()
		if err != nil {
			return err
		}
		r.put(c)
	}
	return nil
}

func (r *tgaReader) readRLE() error {
	for !r.done() {
		if r.pos >= len(r.data) {
			return errTGATruncated
		}
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, err := r.next()
			if err != nil {
				return err
			}
			for i := 0; i < count && !r.done(); i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && !r.done(); i++ {
			c, err := r.next()
			if err != nil {
				return err
			}
			r.put(c)
		}
	}
	return nil
}
