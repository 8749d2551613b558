package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lei/ci-portal/internal/discovery"
	"github.com/lei/ci-portal/internal/provider"
	"github.com/lei/ci-portal/pkg/logger"
)

// DefaultProxyPath is appended to the resolved proxy base URL when no
// override is configured.
const DefaultProxyPath = "/jenkins/api"

// jobTree is the field-selection tree for job lookups. It limits the
// server-side expansion to the fields the normalizer reads.
const jobTree = "name,displayName,fullName,url,actions[*],builds[number,url],lastBuild[number,url],jobs[name,url]"

// Client handles HTTP communication with a Jenkins server reachable through
// the portal's same-origin proxy. The proxy base URL is resolved through
// discovery on every request, never memoized.
type Client struct {
	resolver   discovery.Resolver
	proxyPath  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new Jenkins API client. An empty proxyPath selects
// DefaultProxyPath.
func NewClient(resolver discovery.Resolver, proxyPath string, log *logger.Logger) *Client {
	if proxyPath == "" {
		proxyPath = DefaultProxyPath
	}
	return &Client{
		resolver:   resolver,
		proxyPath:  proxyPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

// endpoint resolves the proxy base URL and composes a request URL from path
// segments. Centralizing the composition keeps the hierarchical /job/
// addressing out of the individual call sites.
func (c *Client) endpoint(ctx context.Context, jobName string, extra ...string) (string, error) {
	base, err := c.resolver.BaseURL(ctx, discovery.ServiceProxy)
	if err != nil {
		return "", fmt.Errorf("resolve proxy base url: %w", err)
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString(c.proxyPath)
	for _, segment := range strings.Split(jobName, "/") {
		if segment == "" {
			continue
		}
		b.WriteString("/job/")
		b.WriteString(url.PathEscape(segment))
	}
	for _, part := range extra {
		b.WriteString("/")
		b.WriteString(part)
	}
	return b.String(), nil
}

// GetJob fetches a job or folder with a depth-limited expansion of its
// builds and actions.
func (c *Client) GetJob(ctx context.Context, jobName string, depth int) (*Job, error) {
	endpoint, err := c.endpoint(ctx, jobName, "api/json")
	if err != nil {
		return nil, err
	}
	endpoint += "?depth=" + strconv.Itoa(depth) + "&tree=" + url.QueryEscape(jobTree)

	var job Job
	if err := c.getJSON(ctx, endpoint, &job, provider.ErrJobNotFound); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetBuild fetches the full detail of one build of a job.
func (c *Client) GetBuild(ctx context.Context, jobName string, number int) (*Build, error) {
	endpoint, err := c.endpoint(ctx, jobName, strconv.Itoa(number), "api/json")
	if err != nil {
		return nil, err
	}

	var build Build
	if err := c.getJSON(ctx, endpoint, &build, provider.ErrBuildNotFound); err != nil {
		return nil, err
	}
	return &build, nil
}

// TriggerBuild starts a new build of a job. The trigger endpoint takes an
// empty JSON body; the response body carries nothing of interest.
func (c *Client) TriggerBuild(ctx context.Context, jobName string) error {
	endpoint, err := c.endpoint(ctx, jobName, "build", "api")
	if err != nil {
		return err
	}

	c.logger.Debug("jenkins: trigger build", "job", jobName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("jenkins: trigger request failed", "job", jobName, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("jenkins: trigger rejected", "job", jobName, "status", resp.StatusCode)
		return parseError(resp, provider.ErrJobNotFound)
	}

	c.logger.Info("jenkins: build triggered", "job", jobName)
	return nil
}

// getJSON issues a GET and decodes a 2xx JSON response into out. notFound is
// the sentinel returned for a 404.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}, notFound error) error {
	c.logger.Debug("jenkins: http request", "method", http.MethodGet, "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("jenkins: http request failed", "url", endpoint, "error", err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("jenkins: http response", "url", endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp, notFound)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseError converts HTTP error responses to provider errors
func parseError(resp *http.Response, notFound error) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return notFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return provider.ErrProviderUnavailable
	default:
		return &provider.ProviderError{
			Code:    resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}
}
