package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rxtx-hosting/steamviz/pkg/choropleth"
	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
)

type Config struct {
	ServerAddr     string        `yaml:"server_addr"`
	PrometheusAddr string        `yaml:"prometheus_addr"`
	APIKey         string        `yaml:"api_key"`
	ReloadInterval time.Duration `yaml:"reload_interval"`
	LogLevel       string        `yaml:"log_level"`
	Locale         string        `yaml:"locale"`
	DefaultMetric  string        `yaml:"default_metric"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	WorldPath      string        `yaml:"world_path"`
	TrafficPath    string        `yaml:"traffic_path"`
	ASNPath        string        `yaml:"asn_path"`
	PlayersPath    string        `yaml:"players_path"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerAddr:     ":8080",
		ReloadInterval: 5 * time.Minute,
		LogLevel:       "info",
		Locale:         string(locale.Chinese),
		DefaultMetric:  string(choropleth.TotalBytes),
		WorldPath:      "data/world-countries.json",
		TrafficPath:    "data/download_traffic_per_country.json",
		ASNPath:        "data/top_asns_per_country.json",
		PlayersPath:    "data/chart.csv",
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	// a missing .env is the common case
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"STEAMVIZ_SERVER_ADDR":     &c.ServerAddr,
		"STEAMVIZ_PROMETHEUS_ADDR": &c.PrometheusAddr,
		"STEAMVIZ_API_KEY":         &c.APIKey,
		"STEAMVIZ_LOG_LEVEL":       &c.LogLevel,
		"STEAMVIZ_LOCALE":          &c.Locale,
		"STEAMVIZ_DEFAULT_METRIC":  &c.DefaultMetric,
		"STEAMVIZ_WORLD_PATH":      &c.WorldPath,
		"STEAMVIZ_TRAFFIC_PATH":    &c.TrafficPath,
		"STEAMVIZ_ASN_PATH":        &c.ASNPath,
		"STEAMVIZ_PLAYERS_PATH":    &c.PlayersPath,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("STEAMVIZ_RELOAD_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STEAMVIZ_RELOAD_INTERVAL: %w", err)
		}
		c.ReloadInterval = d
	}
	if v, ok := os.LookupEnv("STEAMVIZ_CORS_ORIGINS"); ok {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := locale.Parse(c.Locale); err != nil {
		errs = append(errs, err)
	}
	if _, err := choropleth.ParseMetric(c.DefaultMetric); err != nil {
		errs = append(errs, fmt.Errorf("default_metric: %w", err))
	}
	if c.ReloadInterval <= 0 {
		errs = append(errs, fmt.Errorf("reload_interval must be positive, got %s", c.ReloadInterval))
	}
	if c.ServerAddr == "" {
		errs = append(errs, errors.New("server_addr is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) Paths() dataset.Paths {
	return dataset.Paths{
		World:   c.WorldPath,
		Traffic: c.TrafficPath,
		ASNs:    c.ASNPath,
		Players: c.PlayersPath,
	}
}
