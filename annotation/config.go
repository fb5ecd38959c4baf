package annotation

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names a config file used when none is given explicitly
const ConfigEnv = "COCOTOOL_CONFIG"

const (
	DefaultDatabase      = "annotations.db"
	DefaultAddr          = ":8003"
	DefaultImagesPerTask = 20
)

type Config struct {
	Meta struct {
		Description string `yaml:"description"`
	} `yaml:"meta"`
	Database string      `yaml:"database"`
	Addr     string      `yaml:"addr"`
	Tasks    ConfigTasks `yaml:"tasks"`
}

type ConfigTasks struct {
	ImagesPerTask int    `yaml:"images_per_task"`
	URLPrefix     string `yaml:"image_url_prefix"`
}

// DefaultConfig returns the configuration used when there is no config file
func DefaultConfig() *Config {
	var ret Config
	ret.applyDefaults()
	return &ret
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Tasks.ImagesPerTask == 0 {
		c.Tasks.ImagesPerTask = DefaultImagesPerTask
	}
}

func (c *Config) validate() error {
	if c.Tasks.ImagesPerTask < 0 {
		return fmt.Errorf("tasks.images_per_task must be positive, got %d", c.Tasks.ImagesPerTask)
	}
	return nil
}

// ResolveConfigPath returns filename, or the file named by COCOTOOL_CONFIG
// when filename is empty
func ResolveConfigPath(filename string) string {
	if filename != "" {
		return filename
	}
	return os.Getenv(ConfigEnv)
}

// LoadConfig reads a YAML config file and fills in defaults. An empty
// filename falls back to COCOTOOL_CONFIG and then to the defaults.
func LoadConfig(filename string) (*Config, error) {
	filename = ResolveConfigPath(filename)
	if filename == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML config document
func ParseConfig(data []byte) (*Config, error) {
	var ret Config
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("while decoding config: %w", err)
	}
	ret.applyDefaults()
	if err := ret.validate(); err != nil {
		return nil, err
	}
	return &ret, nil
}

// SampleConfig is written by the init command
const SampleConfig = `# cocotool configuration file

meta:
  description: |
    Sample annotation project.
    Edit this description to explain what you're annotating.

# SQLite database holding the dataset, tasks and results
database: annotations.db

# Address the annotation server binds to
addr: ":8003"

tasks:
  # Images per bounding box task created by 'cocotool tasks create'
  images_per_task: 20
  # Where images converted from OpenPose output are served from
  # image_url_prefix: "https://example.com/images"
`

// WriteSampleConfig creates a commented config file
func WriteSampleConfig(filename string) error {
	return os.WriteFile(filename, []byte(SampleConfig), 0644)
}
