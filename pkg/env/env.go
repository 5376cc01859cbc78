package env

import (
	"os"
	"strings"
)

// Prefix namespaces process settings read outside of envconfig.
const Prefix = "MYSTORE_"

// Get returns MYSTORE_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
