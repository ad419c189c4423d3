package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"denoise/cmd"
	"denoise/internal/build"
	"denoise/internal/denoise"
	"denoise/internal/hostaudio"
)

// main is the entry point. Program flow:
//
// 1. Startup (Cold Path): build info, argument parsing, one-off commands
// 2. Run (Hot Path): drive a Manager from the selected Host until EOF or a
//    termination signal
// 3. Shutdown (Cold Path): close hosts and telemetry sinks
func main() {
	if err := build.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch {
	case args.List:
		err = runList()
	case args.Run != nil:
		err = runFile(args.Run)
	case args.Mic != nil:
		err = runMic(args.Mic)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runList() error {
	if err := hostaudio.Initialize(); err != nil {
		return err
	}
	defer hostaudio.Terminate()

	devices, err := hostaudio.ListDevices()
	if err != nil {
		return err
	}
	fmt.Printf("\nAvailable capture devices\n\n")
	for _, d := range devices {
		fmt.Printf("[%d] %s (in=%d out=%d, %.0f Hz)\n", d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}
	return nil
}

func runFile(opts *cmd.RunOptions) error {
	host, err := hostaudio.OpenWAVFile(opts.InPath, opts.OutPath)
	if err != nil {
		return err
	}

	cfg := opts.Config
	cfg.SampleRate = host.SampleRate()
	manager, err := denoise.New(cfg)
	if err != nil {
		host.Close()
		return err
	}

	sink, err := cmd.BuildTelemetry(cfg)
	if err != nil {
		host.Close()
		return err
	}
	manager.SetTelemetry(sink)

	runErr := denoise.Run(host, manager)
	closeErr := host.Close()
	sinkErr := sink.Close()

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	return sinkErr
}

func runMic(opts *cmd.MicOptions) error {
	if err := hostaudio.Initialize(); err != nil {
		return err
	}
	defer hostaudio.Terminate()

	cfg := opts.Config
	var host denoise.Host
	mic, err := hostaudio.NewMicrophone(opts.DeviceID, float64(cfg.SampleRate), cfg.HopSize)
	if err != nil {
		return err
	}
	host = mic

	if opts.RecordOut != "" {
		rec, err := hostaudio.NewRecorder(mic, opts.RecordOut, cfg.SampleRate)
		if err != nil {
			mic.Close()
			return err
		}
		host = rec
	}
	defer func() {
		if closer, ok := host.(interface{ Close() error }); ok {
			closer.Close()
		}
	}()

	manager, err := denoise.New(cfg)
	if err != nil {
		return err
	}

	sink, err := cmd.BuildTelemetry(cfg)
	if err != nil {
		return err
	}
	manager.SetTelemetry(sink)
	defer sink.Close()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- denoise.Run(host, manager) }()

	select {
	case err := <-errCh:
		return err
	case <-done:
		return nil
	}
}
