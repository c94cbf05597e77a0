//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"pirdisplay/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const windowScale = 3

// RunWindow starts a desktop window that displays the framebuffer and maps
// the keyboard onto the PIR line. run executes on its own goroutine; the
// window closes when run returns and RunWindow returns its error. Closing
// the window cancels run's context.
func RunWindow(cfg HostConfig, run func(ctx context.Context, h HAL) error) error {
	h := newHostHAL(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, h) }()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle("PIR display (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(hostPanelHeight*windowScale, hostPanelWidth*windowScale)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	cancel()
	if errors.Is(err, ebiten.Termination) {
		return g.runErr
	}
	return err
}

type hostGame struct {
	h       *hostHAL
	done    <-chan error
	runErr  error
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	w, h0   int
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	select {
	case err := <-g.done:
		g.runErr = err
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.scratch == nil {
		g.scratch = make([]byte, len(fb.buf))
	}
	w, h := fb.snapshotRGB565(g.scratch)
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.w != w || g.h0 != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
		g.w, g.h0 = w, h
		ebiten.SetWindowSize(w*windowScale, h*windowScale)
	}

	rgbaFromRGB565(g.img.Pix, g.scratch)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.w == 0 || g.h0 == 0 {
		return g.h.fb.Width(), g.h.fb.Height()
	}
	return g.w, g.h0
}
