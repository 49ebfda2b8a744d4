// Package config loads deployment-level settings that vary by robot
// installation but never by actuator model: CAN interface names, gain
// scaling cap, policy archive location, log directory, and the selected
// IMU/command sources. These are distinct from the compiled-in actuator
// catalog (internal/catalog), which never varies per deployment.
//
// Grounded on the teacher firmware's internal/server/config.go:
// DefaultConfig + LoadConfig + applyEnvOverrides, reusing gopkg.in/yaml.v3
// for the on-disk format and a .env loader for the same override path.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full deployment configuration.
type Config struct {
	CAN       CANConfig       `yaml:"can" json:"can"`
	Policy    PolicyConfig    `yaml:"policy" json:"policy"`
	IMU       IMUConfig       `yaml:"imu" json:"imu"`
	Command   CommandConfig   `yaml:"command" json:"command"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	LaunchUI  LaunchUIConfig  `yaml:"launch_ui" json:"launchUi"`

	path string
}

// CANConfig lists the SocketCAN interfaces the motor driver should open,
// and the gain-scale ceiling applied on top of every per-step ramp.
type CANConfig struct {
	Interfaces []string `yaml:"interfaces" json:"interfaces"`
	MaxScaling float64  `yaml:"max_scaling" json:"maxScaling"`
}

// PolicyConfig points at the archive the control loop should load.
type PolicyConfig struct {
	ArchivePath string `yaml:"archive_path" json:"archivePath"`
	PolicyDir   string `yaml:"policy_dir" json:"policyDir"`
}

// IMUConfig selects which IMU reader backend to construct.
type IMUConfig struct {
	Type         string `yaml:"type" json:"type"` // "serial", "i2c", "dummy"
	Device       string `yaml:"device" json:"device"`
	BaudRate     int    `yaml:"baud_rate" json:"baudRate"`
	I2CBus       string `yaml:"i2c_bus" json:"i2cBus"`
	I2CAddr      uint16 `yaml:"i2c_addr" json:"i2cAddr"`
	PollHz       int    `yaml:"poll_hz" json:"pollHz"`
}

// CommandConfig selects which command source backend to construct.
type CommandConfig struct {
	Type    string `yaml:"type" json:"type"` // "tty", "udp"
	UDPPort int    `yaml:"udp_port" json:"udpPort"`
}

// TelemetryConfig controls where per-tick NDJSON logs are written.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

// LaunchUIConfig controls the operator websocket handshake listener.
type LaunchUIConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listenAddr"`
}

// DefaultConfig returns a config with sensible defaults for a development
// bench setup: one CAN interface, dummy IMU, TTY command source.
func DefaultConfig() *Config {
	return &Config{
		CAN: CANConfig{
			Interfaces: []string{"can0"},
			MaxScaling: 1.0,
		},
		Policy: PolicyConfig{
			ArchivePath: "",
			PolicyDir:   filepath.Join(homeDir(), ".policies"),
		},
		IMU: IMUConfig{
			Type:     "dummy",
			Device:   "/dev/ttyIMU",
			BaudRate: 230400,
			I2CBus:   "",
			I2CAddr:  0x68,
			PollHz:   100,
		},
		Command: CommandConfig{
			Type:    "tty",
			UDPPort: 10000,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Dir:     "/var/log/kmotor",
		},
		LaunchUI: LaunchUIConfig{
			ListenAddr: ":8760",
		},
	}
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}

// Load reads config from a YAML file, then applies .env and real
// environment variable overrides. Falls back to defaults if the file does
// not exist or fails to parse.
func Load(path string) *Config {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		cfg = DefaultConfig()
		cfg.path = path
	} else {
		log.Printf("[config] loaded from %s", path)
	}

	envPaths := []string{
		filepath.Join(filepath.Dir(path), ".env"),
		".env",
	}
	for _, ep := range envPaths {
		loadEnvFile(ep)
	}

	cfg.applyEnvOverrides()
	return cfg
}

func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides reads environment variables and overrides config
// values. Supported: KMOTOR_CAN_INTERFACES (comma-separated),
// KMOTOR_MAX_SCALING, KMOTOR_POLICY_ARCHIVE, KMOTOR_IMU_TYPE,
// KMOTOR_IMU_DEVICE, KMOTOR_COMMAND_TYPE, KMOTOR_UDP_PORT,
// KMOTOR_TELEMETRY_DIR, KMOTOR_LAUNCH_ADDR.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KMOTOR_CAN_INTERFACES"); v != "" {
		c.CAN.Interfaces = strings.Split(v, ",")
	}
	if v := os.Getenv("KMOTOR_MAX_SCALING"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CAN.MaxScaling = f
		}
	}
	if v := os.Getenv("KMOTOR_POLICY_ARCHIVE"); v != "" {
		c.Policy.ArchivePath = v
	}
	if v := os.Getenv("KMOTOR_POLICY_DIR"); v != "" {
		c.Policy.PolicyDir = v
	}
	if v := os.Getenv("KMOTOR_IMU_TYPE"); v != "" {
		c.IMU.Type = v
	}
	if v := os.Getenv("KMOTOR_IMU_DEVICE"); v != "" {
		c.IMU.Device = v
	}
	if v := os.Getenv("KMOTOR_COMMAND_TYPE"); v != "" {
		c.Command.Type = v
	}
	if v := os.Getenv("KMOTOR_UDP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Command.UDPPort = n
		}
	}
	if v := os.Getenv("KMOTOR_TELEMETRY_DIR"); v != "" {
		c.Telemetry.Dir = v
	}
	if v := os.Getenv("KMOTOR_LAUNCH_ADDR"); v != "" {
		c.LaunchUI.ListenAddr = v
	}
}
