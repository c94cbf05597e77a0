//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"time"

	"pirdisplay/app"
	"pirdisplay/hal"
	"pirdisplay/internal/buildinfo"

	"github.com/rs/zerolog"
)

func main() {
	var (
		headless hal.HeadlessConfig
		hostCfg  hal.HostConfig
		pirMode  string
		logLevel string
	)
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&headless.Duration, "duration", 0, "Stop after this long in headless mode (0 = run until interrupted).")
	flag.StringVar(&headless.Snapshot, "snapshot", "", "Write the final framebuffer to this PNG file in headless mode.")
	flag.StringVar(&pirMode, "pir", "", "PIR simulation: key, walk, high or low (default key with a window, walk headless).")
	pir := hal.DefaultPIRTiming()
	flag.DurationVar(&pir.Period, "pir-period", pir.Period, "Time between passers-by in walk mode.")
	flag.DurationVar(&pir.Walk, "pir-walk", pir.Walk, "How long each passer-by stays in view.")
	flag.DurationVar(&pir.Hold, "pir-hold", pir.Hold, "Sensor time-delay after the last movement.")
	flag.DurationVar(&pir.Warmup, "pir-warmup", 0, "Sensor warm-up after power-on, output held low.")
	flag.StringVar(&logLevel, "log-level", "info", "Operational log level (debug, info, warn, error).")
	flag.Parse()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
	hostCfg.Log = log
	hostCfg.PIR = pir

	if pirMode == "" {
		pirMode = string(hal.SensorKey)
		if headless.Enabled {
			pirMode = string(hal.SensorWalk)
		}
	}
	mode, err := hal.ParseSensorMode(pirMode)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -pir")
	}
	hostCfg.Sensor = mode

	log.Info().
		Str("version", buildinfo.Short()).
		Bool("headless", headless.Enabled).
		Str("pir", string(mode)).
		Msg("starting motion display")

	run := func(ctx context.Context, h hal.HAL) error {
		return app.Run(ctx, h, app.Config{})
	}

	if headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, hostCfg, headless, run); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Err(err).Msg("headless run failed")
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(hostCfg, run); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("window run failed")
		os.Exit(1)
	}
}
