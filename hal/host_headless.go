//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Duration stops the run after this long (0 = until ctx is done).
	Duration time.Duration
	// Snapshot, if set, is a PNG path the final framebuffer is written to.
	Snapshot string
}

// RunHeadless runs the firmware without opening a window. Reaching
// Duration is a clean stop and returns nil.
func RunHeadless(ctx context.Context, hostCfg HostConfig, cfg HeadlessConfig, run func(ctx context.Context, h HAL) error) error {
	if cfg.Duration < 0 {
		return fmt.Errorf("invalid headless duration: %s", cfg.Duration)
	}

	h := newHostHAL(hostCfg)

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	err := run(runCtx, h)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		err = nil
	}

	if cfg.Snapshot != "" {
		if serr := writeSnapshot(cfg.Snapshot, h.fb); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func writeSnapshot(path string, fb *memFramebuffer) error {
	scratch := make([]byte, len(fb.buf))
	w, h := fb.snapshotRGB565(scratch)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rgbaFromRGB565(img.Pix, scratch)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	return f.Close()
}
