// Package config provides configuration types and defaults for tabdock.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/tabdock/internal/flags"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/tracing"
)

// Config holds all configuration options for tabdock.
type Config struct {
	// Directory is the context directory of windows opened at startup.
	Directory string          `mapstructure:"directory"`
	Windows   int             `mapstructure:"windows"`
	Transfer  TransferConfig  `mapstructure:"transfer"`
	Drag      DragConfig      `mapstructure:"drag"`
	Bus       BusConfig       `mapstructure:"bus"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	UI        UIConfig        `mapstructure:"ui"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// TransferConfig tunes the cross-window transfer protocol.
type TransferConfig struct {
	// Timeout is how long a source window waits for the target's answer.
	// Default: 3s
	Timeout time.Duration `mapstructure:"timeout"`

	// DedupTTL is how long a window remembers request IDs it has answered.
	// Must not be shorter than Timeout.
	// Default: 1m
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

// DragConfig tunes drag feedback.
type DragConfig struct {
	// SettleDuration is how long the drop animation flag stays up.
	// Default: 300ms
	SettleDuration time.Duration `mapstructure:"settle_duration"`
}

// BusConfig sizes the broadcast channel.
type BusConfig struct {
	// BufferSize is the per-subscriber buffer. Events beyond it are dropped.
	// Default: 64
	BufferSize int `mapstructure:"buffer_size"`
}

// WatchConfig tunes file watching (enabled with the watch-files flag).
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	// Mouse enables drag and drop with the mouse.
	Mouse bool `mapstructure:"mouse"`
}

// TracingConfig configures transfer spans.
type TracingConfig = tracing.Config

// DefaultTracesFilePath is ~/.config/tabdock/traces/traces.jsonl, or empty
// without a home directory.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tabdock", "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if cfg.Windows < 1 {
		return fmt.Errorf("windows must be at least 1, got %d", cfg.Windows)
	}
	if err := ValidateTransfer(cfg.Transfer); err != nil {
		return err
	}
	if cfg.Drag.SettleDuration < 0 {
		return fmt.Errorf("drag.settle_duration must not be negative, got %s", cfg.Drag.SettleDuration)
	}
	if cfg.Bus.BufferSize < 1 {
		return fmt.Errorf("bus.buffer_size must be at least 1, got %d", cfg.Bus.BufferSize)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTransfer checks transfer timing.
func ValidateTransfer(t TransferConfig) error {
	if t.Timeout <= 0 {
		return fmt.Errorf("transfer.timeout must be positive, got %s", t.Timeout)
	}
	if t.DedupTTL < t.Timeout {
		return fmt.Errorf("transfer.dedup_ttl (%s) must not be shorter than transfer.timeout (%s)", t.DedupTTL, t.Timeout)
	}
	return nil
}

// ValidateTracing checks tracing settings. Empty values fall back to
// defaults and are accepted.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if t.Exporter != "" && !slices.Contains(tracing.Exporters(), t.Exporter) {
		return fmt.Errorf("tracing.exporter must be one of %s, got %q", strings.Join(tracing.Exporters(), ", "), t.Exporter)
	}
	if !t.Enabled {
		return nil
	}
	switch {
	case t.Exporter == "file" && t.FilePath == "":
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	case t.Exporter == "otlp" && t.OTLPEndpoint == "":
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// Defaults is the configuration used when no file or flag overrides it.
func Defaults() Config {
	return Config{
		Windows: 2,
		Transfer: TransferConfig{
			Timeout:  3 * time.Second,
			DedupTTL: time.Minute,
		},
		Drag: DragConfig{
			SettleDuration: 300 * time.Millisecond,
		},
		Bus: BusConfig{
			BufferSize: 64,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			Mouse:         true,
		},
		Tracing: tracing.DefaultConfig(),
		Flags: flags.Defaults(),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# tabdock configuration

# Context directory for windows opened at startup (default: current directory)
# directory: /path/to/project

# Number of windows opened at startup
windows: 2

# Cross-window tab transfers
transfer:
  timeout: 3s      # How long a window waits for the target to accept a tab
  dedup_ttl: 1m    # How long answered request IDs are remembered (>= timeout)

drag:
  settle_duration: 300ms   # How long the drop highlight stays visible

bus:
  buffer_size: 64   # Per-window event buffer on the broadcast channel

watch:
  debounce: 200ms   # Coalescing window for file change events

ui:
  show_status_bar: true
  mouse: true       # Drag tabs with the mouse

# Feature flags
flags:
  detach-new-window: true   # Dropping a tab outside every window opens a new one
  watch-files: false        # Mark tabs whose file was removed from disk

# One OpenTelemetry span per transfer, off by default.
# tracing:
#   enabled: true
#   exporter: file        # none, file, stdout or otlp
#   file_path: ~/.config/tabdock/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig writes the commented template to path, creating its
// directory. An existing file is overwritten.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Writing default config failed", err, "path", path)
		return fmt.Errorf("writing config file: %w", err)
	}
	log.Info(log.CatConfig, "Wrote default config", "path", path)
	return nil
}
