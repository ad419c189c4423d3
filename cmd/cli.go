package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"denoise/internal/build"
	"denoise/internal/config"
	"denoise/internal/hostaudio"
	"denoise/internal/telemetry"
)

// RunOptions collects everything the "run" (file-to-file) command needs.
type RunOptions struct {
	InPath  string
	OutPath string
	Config  config.Config
}

// MicOptions collects everything the "mic" (live capture) command needs.
type MicOptions struct {
	DeviceID  int
	RecordOut string
	Config    config.Config
}

// Args is the result of parsing argv: exactly one of Run, Mic, or List is
// set, matching the closed set of subcommands.
type Args struct {
	Run  *RunOptions
	Mic  *MicOptions
	List bool
}

// ParseArgs builds the cobra command tree and parses argv, returning the
// selected subcommand's options. Grounded on the teacher's cmd/cli.go: a
// persistent root command carrying shared flags, with one child command
// per one-off action.
func ParseArgs(argv []string) (*Args, error) {
	buildInfo := build.GetBuildFlags()
	result := &Args{}

	cfg := *config.Default()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&cfg.FFTSize, "fft-size", cfg.FFTSize, "Transform size (power of two)")
	rootCmd.PersistentFlags().IntVar(&cfg.HopSize, "hop-size", cfg.HopSize, "Hop size between analysis frames")
	rootCmd.PersistentFlags().StringVar((*string)(&cfg.Window), "window", string(cfg.Window), "Analysis window: hann|hamming|rectangular")
	rootCmd.PersistentFlags().StringVar((*string)(&cfg.Estimator), "estimator", string(cfg.Estimator), "Noise estimator: simple|martin")
	rootCmd.PersistentFlags().StringVar((*string)(&cfg.Subtractor), "subtractor", string(cfg.Subtractor), "Subtraction rule: standard|two-step|berouti")
	rootCmd.PersistentFlags().Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "Oversubtraction factor")
	rootCmd.PersistentFlags().Float64Var(&cfg.Beta, "beta", cfg.Beta, "Spectral floor factor")
	rootCmd.PersistentFlags().IntVar(&cfg.Telemetry.WebSocketPort, "telemetry-ws-port", 0, "WebSocket telemetry port (0 disables)")
	rootCmd.PersistentFlags().StringVar(&cfg.Telemetry.UDPTarget, "telemetry-udp", "", "UDP telemetry target host:port (empty disables)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Denoise a WAV file",
		RunE: func(c *cobra.Command, args []string) error {
			inPath, err := c.Flags().GetString("in")
			if err != nil {
				return err
			}
			outPath, err := c.Flags().GetString("out")
			if err != nil {
				return err
			}
			if inPath == "" || outPath == "" {
				return fmt.Errorf("run: --in and --out are required")
			}
			resolved, err := resolveConfig(configPath, cfg)
			if err != nil {
				return err
			}
			result.Run = &RunOptions{InPath: inPath, OutPath: outPath, Config: *resolved}
			return nil
		},
	}
	runCmd.Flags().String("in", "", "Input WAV file")
	runCmd.Flags().String("out", "", "Output WAV file")
	rootCmd.AddCommand(runCmd)

	micCmd := &cobra.Command{
		Use:   "mic",
		Short: "Denoise live microphone input",
		RunE: func(c *cobra.Command, args []string) error {
			device, err := c.Flags().GetInt("device")
			if err != nil {
				return err
			}
			record, err := c.Flags().GetString("record")
			if err != nil {
				return err
			}
			resolved, err := resolveConfig(configPath, cfg)
			if err != nil {
				return err
			}
			result.Mic = &MicOptions{DeviceID: device, RecordOut: record, Config: *resolved}
			return nil
		},
	}
	micCmd.Flags().Int("device", hostaudio.DefaultDeviceID, "Input device ID; -1 for the system default")
	micCmd.Flags().String("record", "", "Also record the denoised stream to this WAV file")
	rootCmd.AddCommand(micCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available capture devices",
		RunE: func(c *cobra.Command, args []string) error {
			result.List = true
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.SetArgs(argv)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if result.Run == nil && result.Mic == nil && !result.List {
		return nil, fmt.Errorf("no command specified; use run, mic, or list")
	}
	return result, nil
}

// resolveConfig loads configPath if set (falling back to defaults on an
// empty path per config.LoadConfig's own search), then overlays the flag
// values onto it, so flags take precedence over the config file.
func resolveConfig(configPath string, flagCfg config.Config) (*config.Config, error) {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("cmd: %w", err)
	}
	loaded.FFTSize = flagCfg.FFTSize
	loaded.HopSize = flagCfg.HopSize
	loaded.Window = flagCfg.Window
	loaded.Estimator = flagCfg.Estimator
	loaded.Subtractor = flagCfg.Subtractor
	loaded.Alpha = flagCfg.Alpha
	loaded.Beta = flagCfg.Beta
	if flagCfg.Telemetry.WebSocketPort != 0 {
		loaded.Telemetry.WebSocketPort = flagCfg.Telemetry.WebSocketPort
	}
	if flagCfg.Telemetry.UDPTarget != "" {
		loaded.Telemetry.UDPTarget = flagCfg.Telemetry.UDPTarget
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("cmd: %w", err)
	}
	return loaded, nil
}

// BuildTelemetry constructs the sinks named by cfg.Telemetry, or a no-op
// Multi if none are configured.
func BuildTelemetry(cfg config.Config) (*telemetry.Multi, error) {
	var sinks []telemetry.Sink
	if cfg.Telemetry.WebSocketPort != 0 {
		sinks = append(sinks, telemetry.NewWebSocket(fmt.Sprintf(":%d", cfg.Telemetry.WebSocketPort)))
	}
	if cfg.Telemetry.UDPTarget != "" {
		interval := time.Duration(cfg.Telemetry.UDPIntervalMS) * time.Millisecond
		udp, err := telemetry.NewUDP(cfg.Telemetry.UDPTarget, interval)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, udp)
	}
	return telemetry.NewMulti(sinks...), nil
}
