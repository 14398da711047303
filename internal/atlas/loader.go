package atlas

import (
	"context"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pulpcarousel/internal/catalog"
	"github.com/Faultbox/pulpcarousel/internal/logger"
)

// Loader composes the atlas in the background and hands it over once.
type Loader struct {
	layout Layout
	items  []catalog.Item
	src    Source
	log    *zap.Logger

	// OnOutcome, if set before Start, is called from the loader goroutine
	// after each cell is drawn.
	OnOutcome func(Outcome)

	ready chan *image.RGBA

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

// NewLoader creates a loader for items using layout and src.
func NewLoader(layout Layout, items []catalog.Item, src Source) *Loader {
	return &Loader{
		layout: layout,
		items:  items,
		src:    src,
		log:    logger.Named("atlas"),
		ready:  make(chan *image.RGBA, 1),
	}
}

// Layout returns the grid the atlas is composed on.
func (l *Loader) Layout() Layout {
	return l.layout
}

// Start begins loading. With no items nothing is loaded and Ready never
// delivers. Calling Start more than once, or after Close, does nothing.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.closed {
		return
	}
	l.started = true
	if len(l.items) == 0 {
		return
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx)
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	start := time.Now()
	failed := 0
	img, err := Compose(ctx, l.layout, l.items, l.src, func(o Outcome) {
		if !o.OK() {
			failed++
		}
		if l.OnOutcome != nil {
			l.OnOutcome(o)
		}
	})
	if err != nil {
		l.log.Debug("atlas load abandoned", zap.Error(err))
		return
	}
	if ctx.Err() != nil {
		return
	}

	l.log.Info("atlas ready",
		zap.Int("items", len(l.items)),
		zap.Int("failed", failed),
		zap.Int("size", l.layout.Size()),
		zap.Duration("took", time.Since(start)))
	l.ready <- img
}

// Ready delivers the finished atlas exactly once.
func (l *Loader) Ready() <-chan *image.RGBA {
	return l.ready
}

// Close cancels an in-flight load and waits for it to stop. A result that
// was not yet delivered is discarded.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	select {
	case <-l.ready:
	default:
	}
}
