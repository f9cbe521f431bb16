package appconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	yaml "sigs.k8s.io/yaml"
)

const (
	DefaultServerURL = "http://localhost:1212"
	DefaultTheme     = "dracula"
)

type ServerConfig struct {
	URL   string  `json:"url"`
	QPS   float32 `json:"qps,omitempty"`
	Burst int     `json:"burst,omitempty"`
}

type SimulatorConfig struct {
	ID string `json:"id,omitempty"`
}

type ViewerConfig struct {
	Theme string `json:"theme"`
}

type Config struct {
	Server    ServerConfig    `json:"server"`
	Simulator SimulatorConfig `json:"simulator"`
	Viewer    ViewerConfig    `json:"viewer"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: DefaultServerURL, QPS: 20, Burst: 40},
		Viewer: ViewerConfig{Theme: DefaultTheme},
	}
}

// Dir is the directory holding the config file and the console log.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".simconsole"), nil
}

// Path is the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads ~/.simconsole/config.yaml if present, otherwise returns defaults.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads the config at p. A missing file yields defaults.
func LoadFile(p string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err == nil {
		cfg.fillDefaults()
		return cfg, nil
	}
	// tolerate unknown keys from older versions
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}
	if s, ok := lookupFold(raw, "server", "url").(string); ok && s != "" {
		cfg.Server.URL = s
	}
	if n, ok := number(lookupFold(raw, "server", "qps")); ok {
		cfg.Server.QPS = float32(n)
	}
	if n, ok := number(lookupFold(raw, "server", "burst")); ok {
		cfg.Server.Burst = int(n)
	}
	if s, ok := lookupFold(raw, "simulator", "id").(string); ok {
		cfg.Simulator.ID = s
	}
	if s, ok := lookupFold(raw, "viewer", "theme").(string); ok && s != "" {
		cfg.Viewer.Theme = strings.ToLower(s)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func lookupFold(m map[string]any, keys ...string) any {
	var cur any = m
	for _, key := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = nil
		for k, v := range mm {
			if strings.EqualFold(k, key) {
				cur = v
				break
			}
		}
	}
	return cur
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.QPS <= 0 {
		c.Server.QPS = d.Server.QPS
	}
	if c.Server.Burst <= 0 {
		c.Server.Burst = d.Server.Burst
	}
	c.Viewer.Theme = strings.ToLower(c.Viewer.Theme)
	if c.Viewer.Theme == "" {
		c.Viewer.Theme = d.Viewer.Theme
	}
}

// ApplyEnv overrides the server URL from BASE_URL and the simulator from
// SIMULATOR_ID.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("BASE_URL"); ok && v != "" {
		c.Server.URL = v
	}
	if v, ok := lookup("SIMULATOR_ID"); ok && v != "" {
		c.Simulator.ID = v
	}
	if v, ok := lookup("SIMCONSOLE_QPS"); ok {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			c.Server.QPS = float32(f)
		}
	}
}

// Save writes the config to ~/.simconsole/config.yaml, creating the directory if needed.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, cfg)
}

func SaveFile(p string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	out := *cfg
	out.Viewer.Theme = strings.ToLower(out.Viewer.Theme)
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
