// Package config loads the htmlutils configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jscodecleaner/htmlutils"
	"github.com/jscodecleaner/htmlutils/internal/resource"
)

// ErrInvalidConfig indicates a configuration file with invalid values.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultAddr is the address the HTTP server listens on by default.
const DefaultAddr = "127.0.0.1:41184"

// Config is the root of the configuration file.
type Config struct {
	Sanitize  SanitizeConfig `toml:"sanitize"`
	Resources ResourceConfig `toml:"resources"`
	Server    ServerConfig   `toml:"server"`
}

// SanitizeConfig holds the defaults for the sanitize command.
type SanitizeConfig struct {
	AddNoMdConvClass bool `toml:"add_no_md_conv_class"`
	Linkify          bool `toml:"linkify"`
}

// ResourceConfig lists the resources known to the resolve command.
type ResourceConfig struct {
	BaseURL string          `toml:"base_url"`
	Items   []ResourceEntry `toml:"items"`
}

// ResourceEntry describes a single resource. When Path is set and Mime is
// empty, Load detects the type from the file content. A relative Path is
// relative to the config file.
type ResourceEntry struct {
	ID            string `toml:"id"`
	Title         string `toml:"title"`
	Mime          string `toml:"mime"`
	FileExtension string `toml:"file_extension"`
	UpdatedTime   int64  `toml:"updated_time"`
	Status        string `toml:"status"`
	Path          string `toml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// DefaultPath returns ~/.htmlutils/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".htmlutils", "config.toml"), nil
}

// Load reads the configuration at path. If path is empty the default
// path is used. A missing file is not an error and yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.detectTypes(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectTypes fills in the MIME type and extension of entries that only
// name a file.
func (c *Config) detectTypes(dir string) error {
	for i := range c.Resources.Items {
		item := &c.Resources.Items[i]
		if item.Path == "" || item.Mime != "" {
			continue
		}

		path := item.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		mime, ext, err := resource.DetectType(path)
		if err != nil {
			return fmt.Errorf("%w: resources.items[%d]: %v", ErrInvalidConfig, i, err)
		}
		item.Mime = mime
		if item.FileExtension == "" {
			item.FileExtension = ext
		}
	}
	return nil
}

// Parse decodes and validates a TOML document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resource entries.
func (c *Config) Validate() error {
	for i, item := range c.Resources.Items {
		if err := resource.ValidateID(item.ID); err != nil {
			return fmt.Errorf("%w: resources.items[%d]: %v", ErrInvalidConfig, i, err)
		}
		if item.Status != "" && !resource.Status(item.Status).Valid() {
			return fmt.Errorf("%w: resources.items[%d]: unknown status %q", ErrInvalidConfig, i, item.Status)
		}
	}
	return nil
}

// SanitizeOptions converts the sanitize section to library options.
func (c *Config) SanitizeOptions() *htmlutils.SanitizeOptions {
	return &htmlutils.SanitizeOptions{
		AddNoMdConvClass: c.Sanitize.AddNoMdConvClass,
		Linkify:          c.Sanitize.Linkify,
	}
}

// ResourceList converts the resource entries. An empty status means the
// resource is ready.
func (c *Config) ResourceList() []resource.Resource {
	list := make([]resource.Resource, 0, len(c.Resources.Items))
	for _, item := range c.Resources.Items {
		status := resource.Status(item.Status)
		if status == "" {
			status = resource.StatusReady
		}
		list = append(list, resource.Resource{
			ID:            item.ID,
			Title:         item.Title,
			Mime:          item.Mime,
			FileExtension: item.FileExtension,
			UpdatedTime:   item.UpdatedTime,
			Status:        status,
		})
	}
	return list
}
