package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/callwire/internal/transport"
)

// ClientConfig is the callctl view of one remote system.
type ClientConfig struct {
	BaseURL      string
	Mode         transport.Mode
	Timeout      time.Duration
	Token        string
	MaxBodyBytes int64
}

// StubConfig configures the stand-in Call server.
type StubConfig struct {
	Name         string
	Addr         string
	CorsOrigins  []string
	RequireToken bool
}

type clientFile struct {
	BaseURL      string `toml:"base_url"`
	Mode         string `toml:"mode"`
	Timeout      string `toml:"timeout"`
	Token        string `toml:"token"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

type stubFile struct {
	Name         string   `toml:"name"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	RequireToken bool     `toml:"require_token"`
}

func DefaultClientConfig() ClientConfig {
	tc := transport.DefaultConfig()
	return ClientConfig{
		BaseURL:      "http://127.0.0.1:9400",
		Mode:         tc.Mode,
		Timeout:      tc.Timeout,
		MaxBodyBytes: tc.MaxBodyBytes,
	}
}

func DefaultStubConfig() StubConfig {
	return StubConfig{
		Name:        "callstub",
		Addr:        ":9400",
		CorsOrigins: []string{"http://localhost:4200"},
	}
}

// Transport converts to the transport construction config.
func (c ClientConfig) Transport() transport.Config {
	return transport.Config{
		BaseURL:      c.BaseURL,
		Mode:         c.Mode,
		Timeout:      c.Timeout,
		MaxBodyBytes: c.MaxBodyBytes,
	}
}

func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("mode") {
		mode, err := transport.ParseMode(raw.Mode)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse mode: %w", err)
		}
		cfg.Mode = mode
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("token") {
		cfg.Token = strings.TrimSpace(raw.Token)
	}
	if meta.IsDefined("max_body_bytes") {
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func LoadStubConfig(path string) (StubConfig, error) {
	cfg := DefaultStubConfig()

	var raw stubFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return StubConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}
	if meta.IsDefined("require_token") {
		cfg.RequireToken = raw.RequireToken
	}

	if err := ValidateStubConfig(cfg); err != nil {
		return StubConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("client config missing base_url")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("client config base_url must be an absolute http(s) url: %q", cfg.BaseURL)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("client config timeout must not be negative")
	}
	if cfg.MaxBodyBytes < 0 {
		return fmt.Errorf("client config max_body_bytes must not be negative")
	}
	return nil
}

func ValidateStubConfig(cfg StubConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("stub config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("stub config missing addr")
	}
	for i, origin := range cfg.CorsOrigins {
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("cors_origins[%d] invalid: %w", i, err)
		}
	}
	return nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
