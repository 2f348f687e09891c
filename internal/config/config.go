package config

import (
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string // "text" or "json"
	DatabaseURL    string
	HierarchyURL   string
	HierarchyFile  string
	FetchTimeout   time.Duration
	AllowedOrigins []string

	// AllowedHierarchyHosts limits the hosts clients may name as a
	// hierarchy URL. Empty disables client-supplied URLs.
	AllowedHierarchyHosts []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:                  getenv("PORT", "8080"),
		LogLevel:              getenv("AHP_LOG_LEVEL", "info"),
		LogFormat:             getenv("AHP_LOG_FORMAT", "text"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		HierarchyURL:          os.Getenv("AHP_HIERARCHY_URL"),
		HierarchyFile:         os.Getenv("AHP_HIERARCHY_FILE"),
		FetchTimeout:          getenvDuration("AHP_FETCH_TIMEOUT", 30*time.Second),
		AllowedOrigins:        getenvList("AHP_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://*"}),
		AllowedHierarchyHosts: getenvList("AHP_ALLOWED_HIERARCHY_HOSTS", nil),
	}
}

// FetchHosts returns the allowed hierarchy hosts plus the host of
// HierarchyURL, lower-cased and without duplicates.
func (c Config) FetchHosts() []string {
	candidates := append([]string(nil), c.AllowedHierarchyHosts...)
	if c.HierarchyURL != "" {
		if u, err := url.Parse(c.HierarchyURL); err == nil && u.Hostname() != "" {
			candidates = append(candidates, u.Hostname())
		}
	}

	var hosts []string
	seen := make(map[string]bool)
	for _, h := range candidates {
		h = strings.ToLower(h)
		if !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
