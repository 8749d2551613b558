package provider

import (
	"context"

	"github.com/lei/ci-portal/internal/models"
)

// Provider abstracts the CI backend behind the portal's build-list API.
// All operations resolve the proxy endpoint per call and construct their
// results fresh from the response; nothing is cached between calls.
type Provider interface {
	// TriggerRebuild starts a new build of the job named by the build
	// identifier. Only a full re-trigger is supported; the backend offers
	// no way to replay a prior build with its original source snapshot.
	TriggerRebuild(ctx context.Context, buildID string) error

	// FetchLatestBuild returns the most recent build of a job, or nil when
	// the job has never built.
	FetchLatestBuild(ctx context.Context, jobName string) (*models.BuildInfo, error)

	// FetchFolderBuilds lists every build under a folder job, one record
	// per build. A failing listing degrades to an empty slice; a failing
	// per-build detail fetch degrades to a sparse record.
	FetchFolderBuilds(ctx context.Context, folder string) ([]models.BuildInfo, error)

	// FetchBuildDetails returns one specific build, or nil when the CI
	// server reports no such build.
	FetchBuildDetails(ctx context.Context, buildID string) (*models.BuildInfo, error)
}
