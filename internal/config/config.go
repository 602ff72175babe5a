// Package config loads the optional loom.yaml daemon configuration and
// resolves defaults and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loomui/loom/common"
)

// Config represents the optional loom.yaml configuration.
type Config struct {
	Daemon DaemonConfig `yaml:"daemon"`
	Trace  TraceConfig  `yaml:"trace"`
	Script ScriptConfig `yaml:"script"`
}

// DaemonConfig contains transport and tick-loop settings.
type DaemonConfig struct {
	SocketPath   string        `yaml:"socket_path,omitempty"`
	TCPPort      int           `yaml:"tcp_port,omitempty"`
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`
	// HTTPPort enables the JSON-RPC web endpoint when non-zero.
	HTTPPort int `yaml:"http_port,omitempty"`
	// RPCSecret is the bearer token required by the web endpoint.
	// The endpoint rejects every request when the secret is empty.
	RPCSecret string `yaml:"rpc_secret,omitempty"`
}

// TraceConfig contains tick-trace persistence settings.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	DBPath  string `yaml:"db_path,omitempty"`
	Keep    int    `yaml:"keep,omitempty"`
}

// ScriptConfig contains timer-script loading settings.
type ScriptConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Resolved contains resolved configuration values after defaults and
// environment overrides are applied.
type Resolved struct {
	SocketPath   string
	TCPPort      int
	TickInterval time.Duration
	HTTPPort     int
	RPCSecret    string
	TraceEnabled bool
	TraceDBPath  string
	TraceKeep    int
	ScriptDir    string
}

// DefaultTickInterval is the tick cadence used when loom.yaml does not
// set one.
const DefaultTickInterval = 16 * time.Millisecond

// DefaultTraceKeep bounds how many recorded ticks the trace store retains.
const DefaultTraceKeep = 4096

// LoadOptional reads the config file at path if present.
// A missing file yields an empty Config, not an error.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Resolve loads the config file (LOOM_CONFIG overrides the default
// location) and applies defaults and environment overrides.
// Precedence: environment > loom.yaml > built-in default.
func Resolve() (*Resolved, error) {
	path := DefaultPath()
	if p := os.Getenv(common.ConfigPathEnv); p != "" {
		path = p
	}
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	return resolve(cfg)
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/loom/loom.yaml or its home-directory equivalent.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "loom.yaml")
	}
	return filepath.Join(base, "loom", "loom.yaml")
}

func resolve(cfg *Config) (*Resolved, error) {
	r := &Resolved{
		SocketPath:   strings.TrimSpace(cfg.Daemon.SocketPath),
		TCPPort:      cfg.Daemon.TCPPort,
		TickInterval: cfg.Daemon.TickInterval,
		HTTPPort:     cfg.Daemon.HTTPPort,
		RPCSecret:    cfg.Daemon.RPCSecret,
		TraceEnabled: cfg.Trace.Enabled,
		TraceDBPath:  strings.TrimSpace(cfg.Trace.DBPath),
		TraceKeep:    cfg.Trace.Keep,
		ScriptDir:    strings.TrimSpace(cfg.Script.Dir),
	}

	if path := os.Getenv(common.SocketPathEnv); path != "" {
		r.SocketPath = path
	}
	if r.SocketPath == "" {
		r.SocketPath = filepath.Join(os.TempDir(), "loomd.sock")
	}

	if port := os.Getenv(common.TCPPortEnv); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", common.TCPPortEnv, err)
		}
		r.TCPPort = p
	}
	if r.TCPPort == 0 {
		r.TCPPort = common.DefaultTCPPort
	}
	if r.TCPPort < 1 || r.TCPPort > 65535 {
		return nil, fmt.Errorf("tcp port %d out of range", r.TCPPort)
	}

	if r.TickInterval <= 0 {
		r.TickInterval = DefaultTickInterval
	}

	if r.TraceDBPath == "" {
		r.TraceDBPath = filepath.Join(os.TempDir(), "loomd-trace.db")
	}
	if r.TraceKeep <= 0 {
		r.TraceKeep = DefaultTraceKeep
	}

	return r, nil
}
