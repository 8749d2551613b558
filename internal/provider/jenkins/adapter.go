package jenkins

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/lei/ci-portal/internal/discovery"
	"github.com/lei/ci-portal/internal/models"
	"github.com/lei/ci-portal/internal/provider"
	"github.com/lei/ci-portal/pkg/logger"
)

// DefaultFanOut caps the number of per-build detail requests in flight for
// one folder listing. Large build histories would otherwise open one
// connection per build at once.
const DefaultFanOut = 8

// lookupDepth limits the server-side expansion of job lookups to direct
// builds and actions.
const lookupDepth = 1

// Adapter implements the Provider interface for Jenkins
type Adapter struct {
	client *Client
	fanOut int
	logger *logger.Logger
}

// Config contains Jenkins connection settings
type Config struct {
	// ProxyPath is appended to the discovered proxy base URL. Empty
	// selects DefaultProxyPath.
	ProxyPath string
	// FanOut caps concurrent per-build detail requests. Zero or negative
	// selects DefaultFanOut.
	FanOut int
}

// NewAdapter creates a new Jenkins adapter
func NewAdapter(resolver discovery.Resolver, cfg *Config, log *logger.Logger) *Adapter {
	fanOut := cfg.FanOut
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &Adapter{
		client: NewClient(resolver, cfg.ProxyPath, log),
		fanOut: fanOut,
		logger: log,
	}
}

// TriggerRebuild implements Provider.TriggerRebuild. The build identifier
// names the job; the new build gets its own fresh number, there is no replay
// of the identified build's source snapshot.
func (a *Adapter) TriggerRebuild(ctx context.Context, buildID string) error {
	details, err := ParseBuildIdentifier(buildID)
	if err != nil {
		a.logger.Warn("jenkins: rebuild with bad identifier", "identifier", buildID, "error", err)
		return err
	}

	a.logger.Info("jenkins: triggering rebuild",
		"job", details.JobName,
		"from_build", details.BuildNumber)

	return a.client.TriggerBuild(ctx, details.JobName)
}

// FetchJobDetails returns the raw job structure from a depth-limited lookup.
func (a *Adapter) FetchJobDetails(ctx context.Context, jobName string) (*Job, error) {
	return a.client.GetJob(ctx, jobName, lookupDepth)
}

// FetchLatestBuild implements Provider.FetchLatestBuild by following the
// job's lastBuild reference. Returns nil when the job has never built.
func (a *Adapter) FetchLatestBuild(ctx context.Context, jobName string) (*models.BuildInfo, error) {
	job, err := a.client.GetJob(ctx, jobName, lookupDepth)
	if err != nil {
		return nil, err
	}
	if job.LastBuild == nil {
		a.logger.Debug("jenkins: job has no builds", "job", jobName)
		return nil, nil
	}

	build, err := a.client.GetBuild(ctx, jobName, job.LastBuild.Number)
	if err != nil {
		return nil, err
	}

	info := a.normalize(build, jobName, ExtractSCMMetadata(job))
	return &info, nil
}

// FetchFolderBuilds implements Provider.FetchFolderBuilds. Build details are
// fetched concurrently under the fan-out cap and collected positionally, so
// the result keeps the server's listing order. A failed detail fetch
// degrades that entry to a sparse record; a failed listing degrades to an
// empty slice. Neither failure reaches the caller as an error.
func (a *Adapter) FetchFolderBuilds(ctx context.Context, folder string) ([]models.BuildInfo, error) {
	job, err := a.client.GetJob(ctx, folder, lookupDepth)
	if err != nil {
		// A non-2xx listing degrades to an empty list. Discovery and
		// transport failures still propagate.
		if !isHTTPFailure(err) {
			return nil, err
		}
		a.logger.Warn("jenkins: folder listing failed", "folder", folder, "error", err)
		return []models.BuildInfo{}, nil
	}

	details := make([]*Build, len(job.Builds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanOut)
	for i, ref := range job.Builds {
		i, ref := i, ref
		g.Go(func() error {
			build, err := a.client.GetBuild(gctx, folder, ref.Number)
			if err != nil {
				a.logger.Warn("jenkins: build detail fetch failed",
					"folder", folder,
					"build", ref.Number,
					"error", err)
				details[i] = &Build{Number: ref.Number, URL: ref.URL}
				return nil
			}
			details[i] = build
			return nil
		})
	}
	// Workers degrade per-item instead of failing, so the join never errors.
	_ = g.Wait()

	scm := ExtractSCMMetadata(job)
	infos := make([]models.BuildInfo, len(details))
	for i, build := range details {
		infos[i] = a.normalize(build, folder, scm)
	}

	a.logger.Debug("jenkins: folder builds listed", "folder", folder, "count", len(infos))
	return infos, nil
}

// FetchBuildDetails implements Provider.FetchBuildDetails. Returns nil when
// the server reports no such job or build.
func (a *Adapter) FetchBuildDetails(ctx context.Context, buildID string) (*models.BuildInfo, error) {
	details, err := ParseBuildIdentifier(buildID)
	if err != nil {
		return nil, err
	}

	build, err := a.client.GetBuild(ctx, details.JobName, details.BuildNumber)
	if err != nil {
		if !isHTTPFailure(err) {
			return nil, err
		}
		a.logger.Warn("jenkins: build detail fetch failed",
			"job", details.JobName,
			"build", details.BuildNumber,
			"error", err)
		return nil, nil
	}

	info := a.normalize(build, details.JobName, nil)
	return &info, nil
}

// isHTTPFailure reports whether an error came from a non-2xx CI server
// response, as opposed to discovery resolution or transport failures.
func isHTTPFailure(err error) bool {
	var providerErr *provider.ProviderError
	return errors.Is(err, provider.ErrJobNotFound) ||
		errors.Is(err, provider.ErrBuildNotFound) ||
		errors.Is(err, provider.ErrUnauthorized) ||
		errors.Is(err, provider.ErrProviderUnavailable) ||
		errors.As(err, &providerErr)
}

// normalize shapes a raw build and binds its restart action to the owning
// job.
func (a *Adapter) normalize(build *Build, jobName string, scm *SCMDetails) models.BuildInfo {
	info := NormalizeBuildRecord(build, scm)
	info.Restart = func(ctx context.Context) error {
		return a.client.TriggerBuild(ctx, jobName)
	}
	return info
}
