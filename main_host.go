package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"newtown/app"
	"newtown/hal"
	"newtown/internal/config"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, ".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sys := app.New(cfg)
	err = run(sys, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := sys.Close(ctx); cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
	}
	if cfg.Dump {
		fmt.Println(sys.Screen())
	}

	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, hal.ErrHalted):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(sys *app.System, cfg config.Config) error {
	if !cfg.Headless {
		return hal.RunWindow(sys.Boot, cfg.Hz)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return hal.RunHeadless(ctx, sys.Boot, hal.HeadlessConfig{
		Enabled: true,
		Hz:      cfg.Hz,
		Ticks:   cfg.Ticks,
		Input:   os.Stdin,
	})
}
