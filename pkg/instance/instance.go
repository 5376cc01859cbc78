package instance

import (
	"os"

	"github.com/LeDucTai-11/MyStore-BE/pkg/env"
)

// GetID identifies this process in logs. It prefers MYSTORE_INSTANCE_ID,
// then the host name, then a fixed default.
func GetID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
