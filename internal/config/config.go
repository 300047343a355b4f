package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	APIBaseURL    string        `koanf:"api_base_url"`
	APIToken      string        `koanf:"api_token"`
	APIHTTPSHosts string        `koanf:"api_https_hosts"`
	Timeout       time.Duration `koanf:"timeout"`

	LookupTimeout       time.Duration `koanf:"lookup_timeout"`
	LookupConcurrency   int           `koanf:"lookup_concurrency"`
	OrdersFallbackLimit int           `koanf:"orders_fallback_limit"`
	PanelConcurrency    int           `koanf:"panel_concurrency"`

	SpecialClientRIF    string `koanf:"special_client_rif"`
	SpecialClientName   string `koanf:"special_client_name"`
	SpecialClientCutoff string `koanf:"special_client_cutoff"`
	LegacyReadyOrderIDs string `koanf:"legacy_ready_order_ids"`

	StoreDriver string `koanf:"store_driver"`
	StoreDir    string `koanf:"store_dir"`
	RedisURL    string `koanf:"redis_url"`

	ExportDir string `koanf:"export_dir"`
	LogFile   string `koanf:"log_file"`
	Debug     bool   `koanf:"debug"`
}

func Defaults() Config {
	return Config{
		APIBaseURL:          "http://localhost:8000",
		APIHTTPSHosts:       "onrender.com",
		Timeout:             20 * time.Second,
		LookupTimeout:       5 * time.Second,
		LookupConcurrency:   8,
		OrdersFallbackLimit: 300,
		SpecialClientRIF:    "J-507172554",
		SpecialClientName:   "TU MUNDO PUERTA",
		SpecialClientCutoff: "2025-06-01",
		StoreDriver:         "file",
		StoreDir:            "./.tumundo",
		ExportDir:           "./exports",
		LogFile:             "./tumundo-admin.log",
	}
}

func New() (Config, error) {
	cfg := Defaults()

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// HTTPSHosts returns the host suffixes whose base URL is forced to https.
func (c Config) HTTPSHosts() []string {
	return SplitList(c.APIHTTPSHosts)
}

func (c Config) LegacyOrderIDs() []string {
	return SplitList(c.LegacyReadyOrderIDs)
}

func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
