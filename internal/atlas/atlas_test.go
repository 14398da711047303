package atlas

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/pulpcarousel/internal/catalog"
)

type fakeSource struct {
	mu     sync.Mutex
	images map[string]image.Image
	calls  []string
	block  bool
}

func (f *fakeSource) Image(ctx context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	img, ok := f.images[ref]
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 2 || y-x <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func items(n int) []catalog.Item {
	all := catalog.DefaultProducts()
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = all[i%len(all)]
	}
	return out
}

func TestNewLayout(t *testing.T) {
	tests := []struct {
		count, side int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{4, 2},
		{5, 3},
		{6, 3},
		{42, 7},
	}
	for _, tt := range tests {
		l := NewLayout(tt.count, 0)
		if l.Side != tt.side {
			t.Errorf("NewLayout(%d).Side = %d, want %d", tt.count, l.Side, tt.side)
		}
		if l.CellSize != DefaultCellSize {
			t.Errorf("CellSize = %d, want %d", l.CellSize, DefaultCellSize)
		}
	}
}

func TestLayoutCells(t *testing.T) {
	l := NewLayout(6, 100)
	if l.Size() != 300 {
		t.Errorf("Size() = %d, want 300", l.Size())
	}
	col, row := l.Cell(4)
	if col != 1 || row != 1 {
		t.Errorf("Cell(4) = (%d,%d), want (1,1)", col, row)
	}
	if got, want := l.Rect(5), image.Rect(200, 100, 300, 200); got != want {
		t.Errorf("Rect(5) = %v, want %v", got, want)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h   int
		limit  float64
		ww, wh int
	}{
		{400, 300, 921.6, 400, 300},
		{2000, 1000, 921.6, 922, 461},
		{1000, 2000, 921.6, 461, 922},
		{1024, 1024, 921.6, 922, 922},
		{0, 10, 921.6, 0, 0},
	}
	for _, tt := range tests {
		w, h := FitSize(tt.w, tt.h, tt.limit)
		if w != tt.ww || h != tt.wh {
			t.Errorf("FitSize(%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.ww, tt.wh)
		}
	}
}

func TestPlaceholderColor(t *testing.T) {
	want := color.RGBA{R: 0xFF, G: 0xE5, B: 0xB4, A: 0xFF}
	if got := PlaceholderColor(0); got != want {
		t.Errorf("PlaceholderColor(0) = %v, want %v", got, want)
	}
	if PlaceholderColor(6) != PlaceholderColor(0) {
		t.Error("palette should repeat every six items")
	}
	if PlaceholderColor(4) != (color.RGBA{R: 0x98, G: 0xFB, B: 0x98, A: 0xFF}) {
		t.Errorf("PlaceholderColor(4) = %v", PlaceholderColor(4))
	}
}

func TestComposeCentresSmallImage(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	its := []catalog.Item{{Title: "Red", Image: "/red.png"}}
	src := &fakeSource{images: map[string]image.Image{"/red.png": solid(50, 50, red)}}

	atlas, err := Compose(context.Background(), NewLayout(1, 100), its, src, nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if atlas.Bounds().Dx() != 100 {
		t.Fatalf("atlas width = %d, want 100", atlas.Bounds().Dx())
	}
	if got := atlas.RGBAAt(50, 50); !near(got, red) {
		t.Errorf("centre = %v, want %v", got, red)
	}
	if got := atlas.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("padding = %v, want transparent", got)
	}
}

func TestComposeShrinksLargeImage(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	its := []catalog.Item{{Title: "Wide", Image: "/wide.png"}}
	src := &fakeSource{images: map[string]image.Image{"/wide.png": solid(400, 200, blue)}}

	atlas, err := Compose(context.Background(), NewLayout(1, 100), its, src, nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	// 90x45 centred: x 5..95, y 27..72.
	if got := atlas.RGBAAt(50, 50); !near(got, blue) {
		t.Errorf("centre = %v, want %v", got, blue)
	}
	if got := atlas.RGBAAt(50, 10); got.A != 0 {
		t.Errorf("above image = %v, want transparent", got)
	}
	if got := atlas.RGBAAt(2, 50); got.A != 0 {
		t.Errorf("left padding = %v, want transparent", got)
	}
}

func TestComposeFailureDrawsPlaceholder(t *testing.T) {
	its := []catalog.Item{{Title: "Mango", Image: "/products/mango.png"}}
	src := &fakeSource{}

	var outcomes []Outcome
	atlas, err := Compose(context.Background(), NewLayout(1, 256), its, src, func(o Outcome) {
		outcomes = append(outcomes, o)
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if len(outcomes) != 1 || outcomes[0].OK() {
		t.Fatalf("outcomes = %+v, want one failure", outcomes)
	}
	if got, want := atlas.RGBAAt(3, 3), PlaceholderColor(0); got != want {
		t.Errorf("corner = %v, want %v", got, want)
	}

	dark := 0
	for y := 100; y < 156; y++ {
		for x := 64; x < 192; x++ {
			c := atlas.RGBAAt(x, y)
			if c.R < 64 && c.G < 64 && c.B < 64 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected title glyphs near the cell centre")
	}
}

func TestComposeSixItemsOnThreeByThree(t *testing.T) {
	its := items(6)
	src := &fakeSource{images: map[string]image.Image{}}
	for _, it := range its {
		src.images[it.Image] = solid(10, 10, color.RGBA{G: 200, A: 255})
	}

	var order []int
	atlas, err := Compose(context.Background(), NewLayout(len(its), 64), its, src, func(o Outcome) {
		order = append(order, o.Index)
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if atlas.Bounds().Dx() != 192 {
		t.Errorf("atlas size = %d, want 192", atlas.Bounds().Dx())
	}
	for i, idx := range order {
		if idx != i {
			t.Fatalf("outcome order = %v, want ascending", order)
		}
	}
	for i := 0; i < 6; i++ {
		r := NewLayout(6, 64).Rect(i)
		c := atlas.RGBAAt(r.Min.X+32, r.Min.Y+32)
		if !near(c, color.RGBA{G: 200, A: 255}) {
			t.Errorf("cell %d centre = %v, want image", i, c)
		}
	}
	for i := 6; i < 9; i++ {
		r := NewLayout(6, 64).Rect(i)
		if c := atlas.RGBAAt(r.Min.X+32, r.Min.Y+32); c.A != 0 {
			t.Errorf("unused cell %d = %v, want transparent", i, c)
		}
	}
	if len(src.calls) != 6 {
		t.Errorf("source calls = %d, want 6", len(src.calls))
	}
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compose(ctx, NewLayout(2, 16), items(2), &fakeSource{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compose() error = %v, want context.Canceled", err)
	}
}

func TestLoaderDelivers(t *testing.T) {
	its := items(2)
	src := &fakeSource{images: map[string]image.Image{
		its[0].Image: solid(8, 8, color.RGBA{R: 1, A: 255}),
	}}
	l := NewLoader(NewLayout(len(its), 32), its, src)
	defer l.Close()

	var mu sync.Mutex
	seen := 0
	l.OnOutcome = func(Outcome) {
		mu.Lock()
		seen++
		mu.Unlock()
	}
	l.Start(context.Background())

	select {
	case img := <-l.Ready():
		if img.Bounds().Dx() != 64 {
			t.Errorf("atlas width = %d, want 64", img.Bounds().Dx())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("atlas not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if seen != 2 {
		t.Errorf("outcomes = %d, want 2", seen)
	}
}

func TestLoaderCloseDropsResult(t *testing.T) {
	src := &fakeSource{block: true}
	l := NewLoader(NewLayout(3, 16), items(3), src)
	l.Start(context.Background())
	l.Close()

	select {
	case <-l.Ready():
		t.Error("result delivered after Close")
	default:
	}

	// Idempotent.
	l.Close()
}

func TestLoaderNoItems(t *testing.T) {
	l := NewLoader(NewLayout(0, 16), nil, &fakeSource{})
	l.Start(context.Background())
	defer l.Close()

	select {
	case <-l.Ready():
		t.Error("empty loader delivered an atlas")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLoadingImage(t *testing.T) {
	img := LoadingImage(LoadingSize)
	if img.Bounds().Dx() != 512 {
		t.Fatalf("size = %d, want 512", img.Bounds().Dx())
	}
	if got := img.RGBAAt(0, 0); got != loadingFrom {
		t.Errorf("top-left = %v, want %v", got, loadingFrom)
	}
	if got := img.RGBAAt(511, 511); got != loadingTo {
		t.Errorf("bottom-right = %v, want %v", got, loadingTo)
	}

	ink := 0
	for y := 226; y < 286; y++ {
		for x := 128; x < 384; x++ {
			if img.RGBAAt(x, y).R < 0xA0 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("expected label pixels in the middle")
	}
}
