// Package app runs the carousel viewer: window, input, renderer and the
// carousel engine in one main loop.
package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pulpcarousel/internal/assets"
	"github.com/Faultbox/pulpcarousel/internal/carousel"
	"github.com/Faultbox/pulpcarousel/internal/catalog"
	"github.com/Faultbox/pulpcarousel/internal/config"
	"github.com/Faultbox/pulpcarousel/internal/engine/debug"
	"github.com/Faultbox/pulpcarousel/internal/engine/input"
	"github.com/Faultbox/pulpcarousel/internal/engine/renderer"
	"github.com/Faultbox/pulpcarousel/internal/engine/window"
	"github.com/Faultbox/pulpcarousel/internal/logger"
)

// App is the viewer instance.
type App struct {
	cfg   *config.Config
	items []catalog.Item
	log   *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Manager
	engine   *carousel.Engine

	ctx    context.Context
	cancel context.CancelFunc

	running bool
	title   string
	active  catalog.Item
	moving  bool
}

// New opens the window. The carousel itself starts on the first frames of
// Run, after the configured delay.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		items: catalog.Resolve(cfg.Items),
		log:   logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("items", len(a.items)),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		HighDPI:    cfg.Window.MaxDPR > 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.renderer = renderer.New()
	a.input = input.New(nil)
	a.assets = assets.NewManager(cfg.Assets.Root, cfg.Assets.HTTPTimeout)
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a, nil
}

func (a *App) startEngine() {
	c := a.cfg.Carousel
	opts := carousel.DefaultOptions()
	opts.Scale = c.Scale
	opts.SphereRadius = c.SphereRadius
	opts.Subdivisions = c.Subdivisions
	opts.DiscSteps = c.DiscSteps
	opts.CellSize = c.CellSize

	// The renderer is set up here, after the GL context exists.
	e := carousel.New(a.renderer, a.items, a.assets, opts)
	a.engine = e
	if e.Disabled() {
		a.log.Warn("carousel unavailable, showing an empty window")
		return
	}

	e.OnActiveItem(func(_ int, item catalog.Item) {
		a.active = item
		a.refreshTitle()
	})
	e.OnMovement(func(moving bool) {
		a.moving = moving
		a.refreshTitle()
	})
	if dir := a.cfg.Debug.DumpAtlas; dir != "" {
		e.OnAtlas(func(img *image.RGBA) {
			a.dumpAtlas(dir, img)
		})
	}

	a.input.SetPointer(e.Pointer())
	a.resize()
	e.Start(a.ctx)
}

func (a *App) dumpAtlas(dir string, img *image.RGBA) {
	name, err := debug.NewCapture(dir, "atlas").FromImage(img)
	if err != nil {
		a.log.Warn("atlas dump failed", zap.Error(err))
		return
	}
	a.log.Info("atlas written", zap.String("file", name))
}

func (a *App) screenshot() {
	if a.engine == nil || a.engine.Disabled() {
		a.log.Warn("screenshot skipped, carousel is not rendering")
		return
	}
	w, h := a.window.DrawableSize()
	name, err := debug.NewCapture("screenshots", "carousel").FromPixels(a.renderer.ReadPixels(w, h), w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("file", name))
}

func (a *App) resize() {
	if a.engine == nil {
		return
	}
	w, h := a.window.GetSize()
	dw, dh := a.window.DrawableSize()
	a.engine.Resize(w, h, dw, dh)
	a.log.Debug("resized",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float32("pixel_ratio", a.window.PixelRatio()),
	)
}

func (a *App) refreshTitle() {
	t := Title(a.cfg.Window.Title, a.active, a.moving)
	if t != a.title {
		a.title = t
		a.window.SetTitle(t)
	}
}

// Title returns the window title: the base title, plus the active item
// while the carousel is at rest.
func Title(base string, item catalog.Item, moving bool) string {
	if moving || item.Title == "" {
		return base
	}
	if item.Description == "" {
		return fmt.Sprintf("%s | %s", base, item.Title)
	}
	return fmt.Sprintf("%s | %s: %s", base, item.Title, item.Description)
}

// Run starts the main loop and blocks until the window is closed.
func (a *App) Run() error {
	a.running = true

	start := time.Now()
	frameCount := 0
	fpsTimer := start

	a.log.Info("starting main loop", zap.Duration("start_delay", a.cfg.Carousel.StartDelay))

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}

		for _, event := range a.input.Events() {
			if event.Type == input.EventWindowResize {
				a.resize()
			}
		}
		if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
			a.running = false
		}
		if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
			a.screenshot()
		}

		now := time.Since(start)
		if a.engine == nil && now >= a.cfg.Carousel.StartDelay {
			a.startEngine()
		}
		if a.engine != nil {
			a.engine.Frame(now)
		}
		a.window.SetGrabbing(a.input.Dragging())
		a.window.SwapBuffers()

		frameCount++
		if a.cfg.Debug.ShowFPS && time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close stops the carousel and releases the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	a.cancel()
	if a.engine != nil {
		a.engine.Stop()
	}
	if a.assets != nil {
		hits, misses := a.assets.Stats()
		a.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		a.assets.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
