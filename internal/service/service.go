package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lei/ci-portal/internal/models"
	"github.com/lei/ci-portal/internal/provider"
	"github.com/lei/ci-portal/internal/provider/jenkins"
	"github.com/lei/ci-portal/pkg/logger"
)

var (
	// ErrBuildNotFound indicates the requested build doesn't exist
	ErrBuildNotFound = errors.New("build not found")
)

// Service coordinates business logic between API and provider layers
type Service struct {
	provider provider.Provider
	logger   *logger.Logger
}

// NewService creates a new service instance
func NewService(prov provider.Provider, log *logger.Logger) *Service {
	return &Service{
		provider: prov,
		logger:   log,
	}
}

// getLogger retrieves the request-scoped logger from context or falls back
// to the service logger
func (s *Service) getLogger(ctx context.Context) *logger.Logger {
	if ctxLogger, ok := logger.FromContext(ctx); ok {
		return ctxLogger
	}
	return s.logger
}

// ListFolderBuilds returns one record per build under a folder. Listing and
// per-build failures degrade inside the provider; this never errors on a
// missing or unreachable folder.
func (s *Service) ListFolderBuilds(ctx context.Context, folder string) ([]models.BuildInfo, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: listing folder builds", "folder", folder)

	builds, err := s.provider.FetchFolderBuilds(ctx, folder)
	if err != nil {
		logger.Error("service: folder listing failed", "folder", folder, "error", err)
		return nil, fmt.Errorf("list folder builds: %w", err)
	}

	logger.Info("service: folder builds listed", "folder", folder, "count", len(builds))
	return builds, nil
}

// GetBuild returns one build by identifier.
func (s *Service) GetBuild(ctx context.Context, buildID string) (*models.BuildInfo, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: getting build", "build_id", buildID)

	build, err := s.provider.FetchBuildDetails(ctx, buildID)
	if err != nil {
		logger.Warn("service: build lookup failed", "build_id", buildID, "error", err)
		return nil, err
	}
	if build == nil {
		logger.Debug("service: build not found", "build_id", buildID)
		return nil, ErrBuildNotFound
	}

	logger.Debug("service: build retrieved", "build_id", buildID, "status", build.Status)
	return build, nil
}

// GetLatestBuild returns the most recent build of a job.
func (s *Service) GetLatestBuild(ctx context.Context, jobName string) (*models.BuildInfo, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: getting latest build", "job", jobName)

	build, err := s.provider.FetchLatestBuild(ctx, jobName)
	if err != nil {
		logger.Error("service: latest build lookup failed", "job", jobName, "error", err)
		return nil, err
	}
	if build == nil {
		logger.Debug("service: job has no builds", "job", jobName)
		return nil, ErrBuildNotFound
	}

	logger.Debug("service: latest build retrieved",
		"job", jobName,
		"build", build.BuildNumber,
		"status", build.Status)
	return build, nil
}

// GetJob returns the raw job structure from the CI server.
func (s *Service) GetJob(ctx context.Context, jobName string) (*jenkins.Job, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: getting job", "job", jobName)

	// Raw job passthrough is Jenkins-specific, not part of the generic
	// provider contract.
	adapter, ok := s.provider.(*jenkins.Adapter)
	if !ok {
		logger.Error("service: provider is not jenkins adapter")
		return nil, fmt.Errorf("provider does not support raw job lookups")
	}

	job, err := adapter.FetchJobDetails(ctx, jobName)
	if err != nil {
		logger.Error("service: job lookup failed", "job", jobName, "error", err)
		return nil, err
	}

	logger.Debug("service: job retrieved", "job", jobName, "builds", len(job.Builds))
	return job, nil
}

// Rebuild triggers a new build of the job named by the build identifier.
func (s *Service) Rebuild(ctx context.Context, buildID string) error {
	logger := s.getLogger(ctx)

	logger.Info("service: triggering rebuild", "build_id", buildID)

	if err := s.provider.TriggerRebuild(ctx, buildID); err != nil {
		logger.Error("service: rebuild failed", "build_id", buildID, "error", err)
		return err
	}

	logger.Info("service: rebuild triggered", "build_id", buildID)
	return nil
}
