package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Instance names the running process, preferring the platform-provided dyno id.
func Instance() string {
	return Get("DYNO", Get("HOSTNAME", "local"))
}
