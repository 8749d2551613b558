// Package discovery resolves named portal services to base URLs. The CI
// client resolves the proxy service on every call; nothing here is cached,
// so discovery latency and availability directly gate every CI operation.
package discovery

import (
	"context"
	"fmt"
	"strings"
)

// ServiceProxy is the service name of the same-origin proxy that forwards
// requests to the CI server.
const ServiceProxy = "proxy"

// Resolver resolves a service name to a base URL.
type Resolver interface {
	BaseURL(ctx context.Context, service string) (string, error)
}

// StaticResolver resolves services from a fixed name-to-URL table, typically
// loaded from configuration.
type StaticResolver struct {
	services map[string]string
}

// NewStaticResolver creates a resolver backed by the given table. Trailing
// slashes on URLs are dropped so callers can concatenate paths safely.
func NewStaticResolver(services map[string]string) *StaticResolver {
	cleaned := make(map[string]string, len(services))
	for name, url := range services {
		cleaned[name] = strings.TrimSuffix(url, "/")
	}
	return &StaticResolver{services: cleaned}
}

// BaseURL implements Resolver.
func (r *StaticResolver) BaseURL(_ context.Context, service string) (string, error) {
	url, ok := r.services[service]
	if !ok || url == "" {
		return "", fmt.Errorf("discovery: no base url for service %q", service)
	}
	return url, nil
}
