package core

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/signatory-io/jsonlines/demo"
	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/signatory-io/jsonlines/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type StreamConfig struct {
	ReadSize    int `yaml:"read_size"`
	BufferLimit int `yaml:"buffer_limit"`
}

type Config struct {
	BasePath      string       `yaml:"base_path"`
	ListenAddress string       `yaml:"listen_address"` // transport://[host]:port, where transport is [http, tcp]
	Endpoint      string       `yaml:"endpoint"`       // default URL for fetch: http(s)://... or tcp://host:port
	LogLevel      logger.Level `yaml:"log_level"`
	Stream        StreamConfig `yaml:"stream"`
	Demo          demo.Config  `yaml:"demo"`
}

const (
	DefaultConfigFile    = "config.yaml"
	DefaultBaseDir       = ".jsonl"
	DefaultListenAddress = "http://localhost:8080"
	DefaultEndpoint      = "http://localhost:8080/api/stream"
)

func (c *Config) Default() {
	home, _ := os.UserHomeDir()
	*c = Config{
		BasePath:      filepath.Join(home, DefaultBaseDir),
		ListenAddress: DefaultListenAddress,
		Endpoint:      DefaultEndpoint,
		LogLevel:      logger.LevelInfo,
		Stream: StreamConfig{
			ReadSize:    jsonl.DefaultReadSize,
			BufferLimit: jsonl.DefaultBufferLimit,
		},
	}
	c.Demo.Default()
}

func (c *Config) GetBasePath() string { return c.BasePath }

// StreamOptions returns the codec options matching the configuration
func (c *Config) StreamOptions(log logger.Logger) []jsonl.Option {
	return []jsonl.Option{
		jsonl.WithReadSize(c.Stream.ReadSize),
		jsonl.WithBufferLimit(c.Stream.BufferLimit),
		jsonl.WithLogger(log),
	}
}

func LoadConfig[T any](conf T, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(buf, conf)
}

// GetPath resolves path relative to the base directory
func GetPath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func (c *Config) RegisterFlags(f *pflag.FlagSet, cmd *cobra.Command) {
	f.StringP("base-dir", "b", c.BasePath, "Base directory")
	f.StringP("config-file", "c", DefaultConfigFile, "Configuration file path (absolute or relative to the base directory)")
	f.TextVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Log level: [error, warn, info, debug, trace]")

	cmd.MarkFlagFilename("config-file")
	cmd.MarkFlagDirname("base-dir")
}

// FromCmdline fills the configuration from the optional configuration file and
// the explicitly set flags, in that order. A missing configuration file is
// only an error if its path was given explicitly.
func (c *Config) FromCmdline(loadFromFile bool, f *pflag.FlagSet) error {
	baseDir, err := f.GetString("base-dir")
	if err != nil {
		panic(err)
	}
	if loadFromFile {
		confPath, err := f.GetString("config-file")
		if err != nil {
			panic(err)
		}
		confPath = GetPath(confPath, baseDir)
		if err := LoadConfig(c, confPath); err != nil {
			if !os.IsNotExist(err) || f.Changed("config-file") {
				return err
			}
		}
	}
	if f.Changed("base-dir") {
		c.BasePath = baseDir
	}
	if f.Changed("log-level") {
		var level logger.Level
		if err := f.GetText("log-level", &level); err != nil {
			return err
		}
		c.LogLevel = level
	}
	return nil
}
