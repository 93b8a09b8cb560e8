package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

// Storage drivers.
const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Config is the application configuration.
type Config struct {
	Database   DatabaseConfig `yaml:"database"`
	Storage    StorageConfig  `yaml:"storage"`
	Pipeline   PipelineConfig `yaml:"pipeline"`
	Vocabulary VocabConfig    `yaml:"vocabulary"`
	Templates  string         `yaml:"templates"`
	Log        LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the collection store. An empty path keeps
// collections in memory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig configures blob storage for uploaded originals.
type StorageConfig struct {
	Driver          string        `yaml:"driver"`
	Bucket          string        `yaml:"bucket"`
	Folder          string        `yaml:"folder"`
	Root            string        `yaml:"root"`
	BaseURL         string        `yaml:"base_url"`
	CDNDomain       string        `yaml:"cdn_domain"`
	CredentialsFile string        `yaml:"credentials_file"`
	RetryFor        time.Duration `yaml:"retry_for"`
}

// PipelineConfig tunes stage execution.
type PipelineConfig struct {
	UploadText  bool `yaml:"upload_text"`
	Concurrency int  `yaml:"concurrency"`
}

// VocabConfig points at extra word lists merged over the built-ins.
type VocabConfig struct {
	Path     string `yaml:"path"`
	Stoplist string `yaml:"stoplist"`
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Default returns a configuration that runs fully in memory.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:   StorageNone,
			Folder:   "uploads",
			RetryFor: 15 * time.Second,
		},
		Pipeline: PipelineConfig{Concurrency: 1},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SHIVER_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("SHIVER_DB_PATH", &c.Database.Path)
	str("SHIVER_STORAGE_DRIVER", &c.Storage.Driver)
	str("SHIVER_BUCKET", &c.Storage.Bucket)
	str("SHIVER_STORAGE_FOLDER", &c.Storage.Folder)
	str("SHIVER_STORAGE_ROOT", &c.Storage.Root)
	str("SHIVER_STORAGE_BASE_URL", &c.Storage.BaseURL)
	str("SHIVER_CDN_DOMAIN", &c.Storage.CDNDomain)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Storage.CredentialsFile)
	str("SHIVER_TEMPLATES_PATH", &c.Templates)
	str("SHIVER_VOCABULARY_PATH", &c.Vocabulary.Path)
	str("SHIVER_STOPLIST_PATH", &c.Vocabulary.Stoplist)
	str("LOG_LEVEL", &c.Log.Level)
	str("ENVIRONMENT", &c.Log.Environment)

	if v := getenv("SHIVER_UPLOAD_TEXT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: SHIVER_UPLOAD_TEXT=%q", internalerr.ErrInvalidConfig, v)
		}
		c.Pipeline.UploadText = b
	}
	if v := getenv("SHIVER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SHIVER_CONCURRENCY=%q", internalerr.ErrInvalidConfig, v)
		}
		c.Pipeline.Concurrency = n
	}
	return nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "", StorageNone:
	case StorageLocal:
		if c.Storage.Root == "" {
			return fmt.Errorf("%w: local storage needs storage.root", internalerr.ErrInvalidConfig)
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required", internalerr.ErrInvalidConfig)
		}
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", internalerr.ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Pipeline.Concurrency < 0 {
		return fmt.Errorf("%w: pipeline.concurrency must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}
