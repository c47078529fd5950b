package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Brownie44l1/leafdoc/internal/preprocess"
)

// Config is the full service configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Model       ModelConfig       `mapstructure:"model"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Translation TranslationConfig `mapstructure:"translation"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogEncoding string `mapstructure:"log_encoding" validate:"oneof=json console"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb" validate:"min=1,max=100"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	CORS            bool          `mapstructure:"cors"`
}

type ModelConfig struct {
	Path              string `mapstructure:"path" validate:"required"`
	LabelsPath        string `mapstructure:"labels_path" validate:"required"`
	SharedLibraryPath string `mapstructure:"shared_library_path"`
	InputName         string `mapstructure:"input_name"`
	OutputName        string `mapstructure:"output_name"`
	IntraOpThreads    int    `mapstructure:"intra_op_threads" validate:"min=0"`
	ImageSize         int    `mapstructure:"image_size" validate:"min=1"`
	ResizeFilter      string `mapstructure:"resize_filter"`
	AutoOrient        bool   `mapstructure:"auto_orient"`
	MaxPixels         int64  `mapstructure:"max_pixels" validate:"min=1"`
	MaxConcurrent     int    `mapstructure:"max_concurrent" validate:"min=1"`
}

type CatalogConfig struct {
	// Path to a catalog YAML file; empty uses the built-in catalog.
	Path string `mapstructure:"path"`
}

type TranslationConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"min=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"min=1"`
}

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "config/config.yaml"

// ResolvePath returns explicit if set, otherwise DefaultPath when that file
// exists, otherwise "" (defaults and environment only).
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if info, err := os.Stat(DefaultPath); err == nil && !info.IsDir() {
		return DefaultPath
	}
	return ""
}

// Load reads configPath (optional) and applies LEAFDOC_* environment
// overrides on top of the defaults. PORT is honored for server.port.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEAFDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "LEAFDOC_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "leafdoc")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_encoding", "json")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors", true)

	v.SetDefault("model.path", "models/plant_disease.onnx")
	v.SetDefault("model.labels_path", "models/class_indices.json")
	v.SetDefault("model.shared_library_path", "")
	v.SetDefault("model.input_name", "")
	v.SetDefault("model.output_name", "")
	v.SetDefault("model.intra_op_threads", 0)
	v.SetDefault("model.image_size", preprocess.DefaultSize)
	v.SetDefault("model.resize_filter", preprocess.DefaultFilter)
	v.SetDefault("model.auto_orient", false)
	v.SetDefault("model.max_pixels", preprocess.DefaultMaxPixels)
	v.SetDefault("model.max_concurrent", 4)

	v.SetDefault("catalog.path", "")

	v.SetDefault("translation.enabled", true)
	v.SetDefault("translation.base_url", "https://translate.googleapis.com")
	v.SetDefault("translation.timeout", 10*time.Second)
	v.SetDefault("translation.concurrency", 4)
}

// Validate checks the configuration needed to serve predictions.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := preprocess.ParseFilter(c.Model.ResizeFilter); err != nil {
		return fmt.Errorf("invalid config: model.resize_filter: %w", err)
	}
	return nil
}

// MaxUploadBytes is the multipart size limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
