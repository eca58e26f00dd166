package config

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	v = viper.GetViper()
)

func init() {
	v.SetConfigName("dgramd")
	v.AddConfigPath("/etc/dgramd/")
	v.AddConfigPath("$HOME/.dgramd/")
	v.AddConfigPath(".")
}

var (
	global    = &Config{}
	globalMux sync.RWMutex
)

func Global() *Config {
	globalMux.RLock()
	defer globalMux.RUnlock()

	cfg := &Config{}
	*cfg = *global
	return cfg
}

func Set(c *Config) {
	globalMux.Lock()
	defer globalMux.Unlock()

	global = c
}

type LogRotationConfig struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int `yaml:"maxSize,omitempty" json:"maxSize,omitempty"`
	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `yaml:"maxAge,omitempty" json:"maxAge,omitempty"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `yaml:"maxBackups,omitempty" json:"maxBackups,omitempty"`
	// Compress determines if the rotated log files should be compressed using gzip.
	Compress bool `yaml:"compress,omitempty" json:"compress,omitempty"`
}

type LogConfig struct {
	// stderr, stdout, none or a file path.
	Output   string             `yaml:",omitempty" json:"output,omitempty"`
	Level    string             `yaml:",omitempty" json:"level,omitempty"`
	Format   string             `yaml:",omitempty" json:"format,omitempty"`
	Rotation *LogRotationConfig `yaml:",omitempty" json:"rotation,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr"`
	Path string `yaml:",omitempty" json:"path,omitempty"`
}

type BindConfig struct {
	// [udp4@|udp6@|udp@]host:port
	Addr string `json:"addr"`
	// all, or a list of thread numbers and ranges such as 1-4,8.
	Threads   string         `yaml:",omitempty" json:"threads,omitempty"`
	Namespace string         `yaml:",omitempty" json:"namespace,omitempty"`
	Metadata  map[string]any `yaml:",omitempty" json:"metadata,omitempty"`
}

type FrontendConfig struct {
	Name  string        `json:"name"`
	Mode  string        `json:"mode"`
	Binds []*BindConfig `json:"binds"`
}

type Config struct {
	Log       *LogConfig        `yaml:",omitempty" json:"log,omitempty"`
	Metrics   *MetricsConfig    `yaml:",omitempty" json:"metrics,omitempty"`
	Frontends []*FrontendConfig `json:"frontends"`
}

func (c *Config) Load() error {
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(c)
}

func (c *Config) Read(r io.Reader, configType string) error {
	if configType == "" {
		configType = "yaml"
	}
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return err
	}

	return v.Unmarshal(c)
}

func (c *Config) ReadFile(file string) error {
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(c)
}

func (c *Config) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case "yaml":
		fallthrough
	default:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)

		return enc.Encode(c)
	}
}
