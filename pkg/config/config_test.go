package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults changed (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"PORT":          "9090",
		"STORAGE":       "sqlite",
		"PRICE_WORKERS": "4",
		"MIN_YEAR":      "2010",
		"HTTP_TIMEOUT":  "3s",
		"CARAPI_RELAY":  "https://corsproxy.io/?",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.Storage != "sqlite" || cfg.PriceWorkers != 4 || cfg.MinYear != 2010 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Timeout != 3*time.Second || cfg.CarAPIRelay != "https://corsproxy.io/?" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestYAMLOverlayThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showroom.yaml")
	yml := "port: \"7000\"\nstorage: neo4j\nprice_workers: 3\ncarapi_token: from-file\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(env(map[string]string{
		"SHOWROOM_CONFIG": path,
		"CARAPI_TOKEN":    "from-env",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "7000" || cfg.Storage != "neo4j" || cfg.PriceWorkers != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CarAPIToken != "from-env" {
		t.Fatalf("env should win over file, got %q", cfg.CarAPIToken)
	}
	if cfg.CarQueryURL != Default().CarQueryURL {
		t.Fatal("unset file keys should keep defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad int", map[string]string{"PRICE_WORKERS": "two"}, "PRICE_WORKERS"},
		{"bad duration", map[string]string{"HTTP_TIMEOUT": "soon"}, "HTTP_TIMEOUT"},
		{"unknown storage", map[string]string{"STORAGE": "redis"}, "unknown storage"},
		{"zero workers", map[string]string{"PRICE_WORKERS": "0"}, "price_workers"},
		{"inverted years", map[string]string{"MIN_YEAR": "2021"}, "min_year"},
		{"missing file", map[string]string{"SHOWROOM_CONFIG": "/nonexistent/showroom.yaml"}, "read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
