package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/CedricK04/ums-go/pkg/triplebuf"
)

// Config represents the streamer configuration.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Channels  []ChannelConfig `yaml:"channels"`
}

// TransportConfig selects and configures the transmission path.
type TransportConfig struct {
	Kind   string       `yaml:"kind"` // "serial" or "mqtt"
	Serial SerialConfig `yaml:"serial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MQTTConfig contains MQTT broker configuration.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// SamplingConfig contains sampling loop parameters.
type SamplingConfig struct {
	Interval    time.Duration `yaml:"interval"`     // Time between publishes
	Policy      string        `yaml:"policy"`       // "coalesce" or "reject"
	CountHeader bool          `yaml:"count_header"` // Include channel-count byte in frames
	MaxChannels int           `yaml:"max_channels"` // Registry capacity (0 = default)
}

// ChannelConfig describes one traced channel fed by a simulated signal.
type ChannelConfig struct {
	Name   string       `yaml:"name"`
	Signal SignalConfig `yaml:"signal"`
}

// SignalConfig describes the waveform driving a simulated channel.
type SignalConfig struct {
	Shape     string  `yaml:"shape"`     // "sine", "ramp", "square", "constant"
	Frequency float32 `yaml:"frequency"` // Hz
	Amplitude float32 `yaml:"amplitude"`
	Offset    float32 `yaml:"offset"`
	Phase     float32 `yaml:"phase"` // radians
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind: "serial",
			Serial: SerialConfig{
				Port:     "/dev/ttyACM0",
				BaudRate: 115200,
			},
			MQTT: MQTTConfig{
				Broker:   "tcp://localhost:1883",
				ClientID: "umsstream",
				Topic:    "ums/samples",
				QoS:      0,
			},
		},
		Sampling: SamplingConfig{
			Interval:    10 * time.Millisecond, // 100 Hz
			Policy:      "coalesce",
			CountHeader: false,
			MaxChannels: 0,
		},
		Channels: []ChannelConfig{
			{
				Name: "sine",
				Signal: SignalConfig{
					Shape:     "sine",
					Frequency: 1.0,
					Amplitude: 1.0,
				},
			},
			{
				Name: "ramp",
				Signal: SignalConfig{
					Shape:     "ramp",
					Frequency: 0.5,
					Amplitude: 2.0,
				},
			},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// PipelinePolicy resolves the sampling policy name.
func (s SamplingConfig) PipelinePolicy() (triplebuf.Policy, error) {
	switch s.Policy {
	case "", "coalesce":
		return triplebuf.Coalesce, nil
	case "reject":
		return triplebuf.Reject, nil
	default:
		return 0, fmt.Errorf("unknown sampling policy %q", s.Policy)
	}
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Transport.Kind == "" {
		c.Transport.Kind = def.Transport.Kind
	}
	if c.Transport.Serial.Port == "" {
		c.Transport.Serial.Port = def.Transport.Serial.Port
	}
	if c.Transport.Serial.BaudRate == 0 {
		c.Transport.Serial.BaudRate = def.Transport.Serial.BaudRate
	}
	if c.Transport.MQTT.Broker == "" {
		c.Transport.MQTT.Broker = def.Transport.MQTT.Broker
	}
	if c.Transport.MQTT.ClientID == "" {
		c.Transport.MQTT.ClientID = def.Transport.MQTT.ClientID
	}
	if c.Transport.MQTT.Topic == "" {
		c.Transport.MQTT.Topic = def.Transport.MQTT.Topic
	}

	if c.Sampling.Interval == 0 {
		c.Sampling.Interval = def.Sampling.Interval
	}
	if c.Sampling.Policy == "" {
		c.Sampling.Policy = def.Sampling.Policy
	}

	if len(c.Channels) == 0 {
		c.Channels = def.Channels
	}
	for i := range c.Channels {
		if c.Channels[i].Signal.Shape == "" {
			c.Channels[i].Signal.Shape = "constant"
		}
	}
}
