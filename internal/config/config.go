package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Addr            string `toml:"addr"`
	MaxUploadBytes  int64  `toml:"max_upload_bytes"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

type UploadConfig struct {
	Folder            string   `toml:"folder"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

type RedisConfig struct {
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	Queue        string `toml:"queue"`
	PollInterval string `toml:"poll_interval"`
}

type HTTPConfig struct {
	URL string `toml:"url"`
}

type LLMConfig struct {
	Model        string   `toml:"model"`
	APIKey       string   `toml:"api_key"`
	BaseURL      string   `toml:"base_url"`
	MaxImageSide int      `toml:"max_image_side"`
	Labels       []string `toml:"labels"`
}

type InferenceConfig struct {
	Provider string      `toml:"provider"`
	Timeout  string      `toml:"timeout"`
	Redis    RedisConfig `toml:"redis"`
	HTTP     HTTPConfig  `toml:"http"`
	LLM      LLMConfig   `toml:"llm"`
}

type AuthConfig struct {
	Disabled  bool   `toml:"disabled"`
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	FilePath   string `toml:"file_path"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upload    UploadConfig    `toml:"upload"`
	Inference InferenceConfig `toml:"inference"`
	Auth      AuthConfig      `toml:"auth"`
	Log       LogConfig       `toml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			MaxUploadBytes:  10 << 20,
			ReadTimeout:     "30s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "15s",
		},
		Upload: UploadConfig{
			Folder:            "uploads",
			AllowedExtensions: []string{".png", ".jpg", ".jpeg", ".gif"},
		},
		Inference: InferenceConfig{
			Provider: "redis",
			Timeout:  "30s",
			Redis: RedisConfig{
				Addr:         "localhost:6379",
				Queue:        "service_queue",
				PollInterval: "50ms",
			},
			LLM: LLMConfig{
				MaxImageSide: 768,
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads path (defaults when the file does not exist), applies
// environment overrides and validates the result.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with any non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	set(&c.Upload.Folder, "UPLOAD_FOLDER")
	set(&c.Inference.Provider, "INFERENCE_PROVIDER")
	set(&c.Inference.Timeout, "INFERENCE_TIMEOUT")
	set(&c.Inference.HTTP.URL, "INFERENCE_URL")
	set(&c.Inference.Redis.Addr, "REDIS_ADDR")
	set(&c.Inference.Redis.Password, "REDIS_PASSWORD")
	set(&c.Inference.Redis.Queue, "REDIS_QUEUE")
	if db := getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			c.Inference.Redis.DB = n
		}
	}
	set(&c.Inference.LLM.Model, "LLM_MODEL")
	set(&c.Inference.LLM.APIKey, "LLM_API_KEY")
	set(&c.Inference.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	if v := getenv("AUTH_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Auth.Disabled = b
		}
	}
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.FilePath, "LOG_FILE")
}

func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(s.ReadTimeout, 30*time.Second)
}

func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDuration(s.WriteTimeout, 60*time.Second)
}

func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout, 15*time.Second)
}

func (i InferenceConfig) TimeoutDuration() time.Duration {
	return parseDuration(i.Timeout, 30*time.Second)
}

func (r RedisConfig) PollIntervalDuration() time.Duration {
	return parseDuration(r.PollInterval, 50*time.Millisecond)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
