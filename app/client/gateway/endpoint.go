package gateway

import (
	"net"
	"strings"

	"github.com/elliotchance/pie/v2"
)

type Endpoint string

func (e Endpoint) URL(path string) string {
	return strings.TrimRight(string(e), "/") + path
}

type Endpoints struct {
	Local      Endpoint
	Production Endpoint
}

var localHosts = []string{"localhost", "127.0.0.1"}

// Resolve picks the endpoint for the first attempt of every call.
// The override wins, then a local site host selects Local, otherwise Production.
func (e Endpoints) Resolve(override, siteHost string) Endpoint {
	if override != "" {
		return Endpoint(override)
	}

	if isLocalHost(siteHost) {
		return e.Local
	}

	return e.Production
}

// Secondary is the fallback target for primary.
func (e Endpoints) Secondary(primary Endpoint) Endpoint {
	if primary == e.Production {
		return e.Local
	}

	return e.Production
}

func isLocalHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if pie.Contains(localHosts, host) {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
