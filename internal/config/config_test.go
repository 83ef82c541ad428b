package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != ":8080" || cfg.Locale != "zh" || cfg.DefaultMetric != "total_bytes" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ReloadInterval != 5*time.Minute {
		t.Fatalf("reload interval = %s", cfg.ReloadInterval)
	}
	if p := cfg.Paths(); p.Players != "data/chart.csv" {
		t.Fatalf("players path = %s", p.Players)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server_addr: ":9000"
prometheus_addr: ":9100"
reload_interval: 30s
locale: en
default_metric: avg_mbps
cors_origins: ["https://example.org"]
players_path: /srv/players.csv
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != ":9000" || cfg.PrometheusAddr != ":9100" || cfg.ReloadInterval != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Locale != "en" || cfg.DefaultMetric != "avg_mbps" || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.PlayersPath != "/srv/players.csv" || cfg.WorldPath != "data/world-countries.json" {
		t.Fatalf("paths not merged with defaults: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server_addr: \":9000\"\n")
	t.Setenv("STEAMVIZ_SERVER_ADDR", ":7000")
	t.Setenv("STEAMVIZ_RELOAD_INTERVAL", "1m")
	t.Setenv("STEAMVIZ_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != ":7000" || cfg.ReloadInterval != time.Minute {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}

	t.Setenv("STEAMVIZ_RELOAD_INTERVAL", "soon")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
locale: fr
default_metric: latency
reload_interval: 0s
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"locale", "default_metric", "reload_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server_addr: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
