package atlas

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	gomath "math"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/pulpcarousel/internal/catalog"
	"github.com/Faultbox/pulpcarousel/internal/logger"
)

const (
	// cellFill is the share of a cell an image may cover.
	cellFill = 0.9

	titleSize   = 32
	loadingSize = 48

	// LoadingSize is the edge length of the loading texture.
	LoadingSize = 512
)

var palette = []color.RGBA{
	{R: 0xFF, G: 0xE5, B: 0xB4, A: 0xFF},
	{R: 0xFF, G: 0xD1, B: 0xDC, A: 0xFF},
	{R: 0xE6, G: 0xE6, B: 0xFA, A: 0xFF},
	{R: 0xB0, G: 0xE0, B: 0xE6, A: 0xFF},
	{R: 0x98, G: 0xFB, B: 0x98, A: 0xFF},
	{R: 0xFF, G: 0xDA, B: 0xB9, A: 0xFF},
}

var (
	loadingFrom = color.RGBA{R: 0xF1, G: 0xF5, B: 0xF9, A: 0xFF}
	loadingTo   = color.RGBA{R: 0xE2, G: 0xE8, B: 0xF0, A: 0xFF}
	loadingInk  = color.RGBA{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF}
)

var errEmptyImage = errors.New("source returned no image")

// PlaceholderColor returns the fill used for item i when its image fails.
func PlaceholderColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Source loads item images by reference.
type Source interface {
	Image(ctx context.Context, ref string) (image.Image, error)
}

// Outcome reports how one item's cell was filled.
type Outcome struct {
	Index int
	Item  catalog.Item
	Image image.Image
	Err   error
}

// OK reports whether the item image loaded.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Image != nil
}

// Compose loads every item image in order, one at a time, and draws each
// result into its cell as soon as it arrives. A failed load becomes a
// coloured placeholder carrying the item title. Cells of the returned atlas
// that hold no item stay transparent.
//
// observe, if non-nil, is called after each cell is drawn. Compose returns
// early with ctx's error once ctx is done.
func Compose(ctx context.Context, layout Layout, items []catalog.Item, src Source, observe func(Outcome)) (*image.RGBA, error) {
	log := logger.Named("atlas")
	size := layout.Size()
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := src.Image(ctx, item.Image)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil && img == nil {
			err = errEmptyImage
		}

		out := Outcome{Index: i, Item: item, Image: img, Err: err}
		if out.OK() {
			drawFitted(dst, layout.Rect(i), img)
			b := img.Bounds()
			log.Debug("image placed",
				zap.Int("index", i),
				zap.String("ref", item.Image),
				zap.Int("width", b.Dx()),
				zap.Int("height", b.Dy()))
		} else {
			log.Warn("image failed, using placeholder",
				zap.Int("index", i),
				zap.String("ref", item.Image),
				zap.Error(err))
			if perr := drawPlaceholder(dst, layout.Rect(i), PlaceholderColor(i), item.Title); perr != nil {
				log.Warn("placeholder title not drawn", zap.Error(perr))
			}
		}

		if observe != nil {
			observe(out)
		}
	}
	return dst, nil
}

// FitSize scales w x h down to fit within limit x limit, keeping the aspect
// ratio. Images already inside the limit keep their size.
func FitSize(w, h int, limit float64) (int, int) {
	fw, fh := float64(w), float64(h)
	if fw <= 0 || fh <= 0 {
		return 0, 0
	}
	aspect := fw / fh
	if fw > limit {
		fw = limit
		fh = fw / aspect
	}
	if fh > limit {
		fh = limit
		fw = fh * aspect
	}
	return int(gomath.Round(fw)), int(gomath.Round(fh))
}

func drawFitted(dst *image.RGBA, cell image.Rectangle, img image.Image) {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), float64(cell.Dx())*cellFill)
	if w == 0 || h == 0 {
		return
	}
	off := image.Pt((cell.Dx()-w)/2, (cell.Dy()-h)/2)
	target := image.Rectangle{Min: cell.Min.Add(off), Max: cell.Min.Add(off).Add(image.Pt(w, h))}
	xdraw.CatmullRom.Scale(dst, target, img, b, xdraw.Over, nil)
}

func drawPlaceholder(dst *image.RGBA, cell image.Rectangle, fill color.RGBA, title string) error {
	draw.Draw(dst, cell, image.NewUniform(fill), image.Point{}, draw.Src)
	centre := cell.Min.Add(image.Pt(cell.Dx()/2, cell.Dy()/2))
	return drawCentered(dst.SubImage(cell).(*image.RGBA), title, titleSize, color.Black, centre.X, centre.Y)
}

// LoadingImage returns the texture shown on every disc until the atlas is
// ready: a light diagonal gradient with "Loading..." in the middle.
func LoadingImage(size int) *image.RGBA {
	if size <= 0 {
		size = LoadingSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	span := float64(2 * size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// Projection onto the (0,0)-(size,size) diagonal.
			t := (float64(x) + float64(y) + 1) / span
			img.SetRGBA(x, y, lerpRGBA(loadingFrom, loadingTo, t))
		}
	}
	if err := drawCentered(img, "Loading...", loadingSize*float64(size)/LoadingSize, loadingInk, size/2, size/2); err != nil {
		logger.Named("atlas").Warn("loading label not drawn", zap.Error(err))
	}
	return img
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(gomath.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
