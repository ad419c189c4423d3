// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at path. If path is
// empty, it searches default locations ("config.yaml"). If none is found,
// the built-in defaults are used. After loading, environment variable
// overrides are applied and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := *Default()

	if path == "" {
		candidates := []string{"config.yaml"}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides reads DENOISE_* environment variables on top of
// whatever the YAML file (or the defaults) set. Malformed values are
// ignored, leaving the prior setting in place.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("DENOISE_SAMPLE_RATE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.SampleRate = n
		}
	}
	if val, ok := os.LookupEnv("DENOISE_FFT_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.FFTSize = n
		}
	}
	if val, ok := os.LookupEnv("DENOISE_HOP_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.HopSize = n
		}
	}
	if val, ok := os.LookupEnv("DENOISE_WINDOW"); ok {
		cfg.Window = WindowKind(val)
	}
	if val, ok := os.LookupEnv("DENOISE_ESTIMATOR"); ok {
		cfg.Estimator = EstimatorKind(val)
	}
	if val, ok := os.LookupEnv("DENOISE_SUBTRACTOR"); ok {
		cfg.Subtractor = SubtractorKind(val)
	}
	if val, ok := os.LookupEnv("DENOISE_ALPHA"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Alpha = f
		}
	}
	if val, ok := os.LookupEnv("DENOISE_BETA"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Beta = f
		}
	}
	if val, ok := os.LookupEnv("DENOISE_UDP_TARGET"); ok {
		cfg.Telemetry.UDPTarget = val
	}
}
