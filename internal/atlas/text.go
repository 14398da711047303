package atlas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func bold() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// drawCentered draws s in bold at the given pixel size, centred on (cx, cy)
// both horizontally and vertically.
func drawCentered(dst *image.RGBA, s string, size float64, col color.Color, cx, cy int) error {
	if s == "" {
		return nil
	}
	f, err := bold()
	if err != nil {
		return fmt.Errorf("parsing bold font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("creating face: %w", err)
	}
	defer face.Close()

	s = norm.NFC.String(s)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	m := face.Metrics()
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(cx) - width/2,
		Y: fixed.I(cy) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)
	return nil
}
