package connectivity

import (
	"fmt"
	"net"
	"net/url"
)

// ProbeAddressFromURL derives a host:port dial target from the remote API base
// URL, so reachability is judged against the endpoint syncing actually needs.
func ProbeAddressFromURL(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("base url %q has no host", baseURL)
	}
	port := parsed.Port()
	if port == "" {
		switch parsed.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", fmt.Errorf("cannot infer port for scheme %q", parsed.Scheme)
		}
	}
	return net.JoinHostPort(host, port), nil
}
