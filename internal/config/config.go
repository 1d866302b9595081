// Package config resolves ringwolf's ambient settings: where to find the
// ring, where to write telemetry, how to wire confirmation feedback. Gesture
// thresholds are not configurable here; they are compile-time constants in
// package ring, the same way the teacher keeps its modem/protocol tunables
// out of the command-line surface.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is ringwolf's full set of ambient settings, loadable from an
// optional YAML file with flags layered on top (flags win).
type Config struct {
	DeviceNamePattern string `yaml:"device_name_pattern"`
	DiscoveryName     string `yaml:"discovery_name"`
	DiscoveryEnabled  bool   `yaml:"discovery_enabled"`

	TelemetryDir  string `yaml:"telemetry_dir"`
	TelemetryFile string `yaml:"telemetry_file"`

	GPIOChip string `yaml:"gpio_chip"`
	GPIOLine int    `yaml:"gpio_line"`

	ToneEnabled bool `yaml:"tone_enabled"`

	VerifySelectToUserInput bool `yaml:"verify_select_to_user_input"`

	TTYSymlink string `yaml:"tty_symlink"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings ringwolfd runs with when neither a config
// file nor flags override them.
func Default() Config {
	return Config{
		DeviceNamePattern: `^R0\d_[0-9A-Z]{4}$`,
		DiscoveryName:     "",
		DiscoveryEnabled:  true,
		TelemetryDir:      "",
		GPIOChip:          "",
		GPIOLine:          -1,
		ToneEnabled:       false,
		TTYSymlink:        "/tmp/ringwolf",
		LogLevel:          "info",
	}
}

// Load reads an optional YAML file (if configFile is non-empty) into the
// defaults, then parses args against a flag set seeded from the merged
// result, so command-line flags always take precedence (spec: config file
// provides ambient defaults, flags override per invocation).
func Load(progName string, args []string, configFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", configFile, err)
		}
	}

	fs := pflag.NewFlagSet(progName, pflag.ContinueOnError)

	devicePattern := fs.StringP("device-name-pattern", "d", cfg.DeviceNamePattern, "Regex an advertised BLE device name must match")
	discoveryName := fs.String("discovery-name", cfg.DiscoveryName, "mDNS service instance name (defaults to hostname)")
	discoveryEnabled := fs.Bool("discovery", cfg.DiscoveryEnabled, "Announce a local status service via DNS-SD")
	telemetryDir := fs.StringP("telemetry-dir", "l", cfg.TelemetryDir, "Directory for daily-named telemetry CSV files")
	telemetryFile := fs.StringP("telemetry-file", "L", cfg.TelemetryFile, "Single telemetry CSV file path (mutually exclusive with --telemetry-dir)")
	gpioChip := fs.String("gpio-chip", cfg.GPIOChip, "GPIO chip device for confirmation feedback, e.g. gpiochip0")
	gpioLine := fs.Int("gpio-line", cfg.GPIOLine, "GPIO line offset to pulse on a confirmed gesture")
	toneEnabled := fs.Bool("tone", cfg.ToneEnabled, "Play a confirmation tone through the default audio device")
	selectToUserInput := fs.Bool("select-returns-to-user-input", cfg.VerifySelectToUserInput, "Return to UserInput instead of Idle after a confirmed selection")
	ttySymlink := fs.String("tty-symlink", cfg.TTYSymlink, "Symlink path for the virtual TTY bridge (not read by ringwolf-tty, which takes its own --symlink flag)")
	logLevel := fs.StringP("log-level", "v", cfg.LogLevel, "Log level: debug, info, warn, error")
	help := fs.BoolP("help", "h", false, "Display help text")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - BlueX RF03 smart ring gesture daemon.\n\n", progName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *help {
		fs.Usage()
		os.Exit(0)
	}

	cfg.DeviceNamePattern = *devicePattern
	cfg.DiscoveryName = *discoveryName
	cfg.DiscoveryEnabled = *discoveryEnabled
	cfg.TelemetryDir = *telemetryDir
	cfg.TelemetryFile = *telemetryFile
	cfg.GPIOChip = *gpioChip
	cfg.GPIOLine = *gpioLine
	cfg.ToneEnabled = *toneEnabled
	cfg.VerifySelectToUserInput = *selectToUserInput
	cfg.TTYSymlink = *ttySymlink
	cfg.LogLevel = *logLevel

	if cfg.TelemetryDir != "" && cfg.TelemetryFile != "" {
		return cfg, fmt.Errorf("config: --telemetry-dir and --telemetry-file are mutually exclusive")
	}

	return cfg, nil
}
