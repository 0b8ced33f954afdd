package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// GetInstanceID returns an ID for the current instance of the application.
// In order, it uses:
//
//   - The CONTAINER_APP_REPLICA_NAME env var (set by Azure Container Apps)
//   - The "service.instance.id" attribute in the OTEL_RESOURCE_ATTRIBUTES env var
//   - A random value
func GetInstanceID() (string, error) {
	replica := os.Getenv("CONTAINER_APP_REPLICA_NAME")
	if replica != "" {
		return replica, nil
	}

	for attr := range strings.SplitSeq(os.Getenv("OTEL_RESOURCE_ATTRIBUTES"), ",") {
		key, val, ok := strings.Cut(attr, "=")
		if !ok || strings.TrimSpace(key) != "service.instance.id" {
			continue
		}

		// Values are URL-encoded
		decoded, err := url.PathUnescape(strings.TrimSpace(val))
		if err == nil && decoded != "" {
			return decoded, nil
		}
	}

	b := make([]byte, 7)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random instance ID: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
