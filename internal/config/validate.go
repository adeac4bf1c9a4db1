package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Providers lists the inference backends NewClient understands.
var Providers = []interface{}{"redis", "http", "openai", "ollama", "gemini", "claude"}

var logLevels = []interface{}{"debug", "info", "warn", "error"}

var isDuration = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration such as 500ms or 30s")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
})

var isExtension = validation.By(func(value interface{}) error {
	exts, _ := value.([]string)
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") || len(e) < 2 {
			return fmt.Errorf("%q must look like .ext", e)
		}
	}
	return nil
})

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Addr, validation.Required),
		validation.Field(&c.Server.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Server.ReadTimeout, isDuration),
		validation.Field(&c.Server.WriteTimeout, isDuration),
		validation.Field(&c.Server.ShutdownTimeout, isDuration),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validation.ValidateStruct(&c.Upload,
		validation.Field(&c.Upload.Folder, validation.Required),
		validation.Field(&c.Upload.AllowedExtensions, isExtension),
	); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	inf := &c.Inference
	inf.Provider = strings.ToLower(inf.Provider)
	if err := validation.ValidateStruct(inf,
		validation.Field(&inf.Provider, validation.Required, validation.In(Providers...)),
		validation.Field(&inf.Timeout, isDuration),
	); err != nil {
		return fmt.Errorf("inference: %w", err)
	}

	switch inf.Provider {
	case "redis":
		if err := validation.ValidateStruct(&inf.Redis,
			validation.Field(&inf.Redis.Addr, validation.Required),
			validation.Field(&inf.Redis.Queue, validation.Required),
			validation.Field(&inf.Redis.PollInterval, isDuration),
		); err != nil {
			return fmt.Errorf("inference.redis: %w", err)
		}
	case "http":
		if err := validation.ValidateStruct(&inf.HTTP,
			validation.Field(&inf.HTTP.URL, validation.Required, is.URL),
		); err != nil {
			return fmt.Errorf("inference.http: %w", err)
		}
	default:
		if err := validation.ValidateStruct(&inf.LLM,
			validation.Field(&inf.LLM.Model, validation.Required),
			validation.Field(&inf.LLM.MaxImageSide, validation.Min(0)),
		); err != nil {
			return fmt.Errorf("inference.llm: %w", err)
		}
	}

	if !c.Auth.Disabled {
		if err := validation.ValidateStruct(&c.Auth,
			validation.Field(&c.Auth.JWTSecret, validation.Required, validation.Length(16, 0)),
		); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In(logLevels...)),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}
