package provision

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// OpenIngress admits traffic from anywhere. Drivers only use it when the
// caller explicitly acknowledged open ingress.
const OpenIngress = "0.0.0.0/0"

// CallerCIDR resolves the caller's public address and returns it as a /32,
// the ingress block used when open ingress has not been acknowledged.
func CallerCIDR(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.ipify.org", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("looking up public IP: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("looking up public IP: HTTP %d", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading public IP response: %w", err)
	}

	addr := strings.TrimSpace(string(data))
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("public IP lookup returned %q, not an address", addr)
	}
	return addr + "/32", nil
}
