package jenkins

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lei/ci-portal/internal/models"
)

// ErrInvalidIdentifier indicates a build identifier that does not split into
// a job name and an integer build number.
var ErrInvalidIdentifier = errors.New("invalid build identifier")

// shortHashLen is the abbreviated commit hash length shown in the portal.
const shortHashLen = 8

// SCMDetails is job-level source-control metadata recovered from action
// records. When passed to NormalizeBuildRecord as an override, its fields
// take precedence over whatever the build's own git data yields.
type SCMDetails struct {
	URL         string
	DisplayName string
	Author      string
}

// ParseBuildIdentifier recovers the job name and build number from a
// Jenkins-style build address such as "job/team-a/job/artist-portal/17".
// The hierarchical job/ indicator segments and any trailing slash are
// stripped; the final segment is the build number and everything before it
// the job name. A non-numeric final segment is a validation error.
func ParseBuildIdentifier(identifier string) (models.JobDetails, error) {
	cleaned := strings.ReplaceAll(identifier, "job/", "")
	cleaned = strings.TrimSuffix(cleaned, "/")

	parts := strings.Split(cleaned, "/")
	if len(parts) < 2 {
		return models.JobDetails{}, fmt.Errorf("%w %q: want <job>/<number>", ErrInvalidIdentifier, identifier)
	}

	number, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return models.JobDetails{}, fmt.Errorf("%w %q: build number is not an integer", ErrInvalidIdentifier, identifier)
	}

	return models.JobDetails{
		JobName:     strings.Join(parts[:len(parts)-1], "/"),
		BuildNumber: number,
	}, nil
}

// ExtractSCMMetadata scans a job's action records for SCM object metadata:
// a display URL and name (the branch name for branch builds, the pull
// request title for PR builds), plus the contributor's display name when a
// contributor-metadata record is present. Returns nil when the job carries
// no object-metadata record at all.
func ExtractSCMMetadata(job *Job) *SCMDetails {
	meta, ok := LastObjectMetadata(job.Actions)
	if !ok {
		return nil
	}

	details := &SCMDetails{
		URL:         meta.ObjectURL,
		DisplayName: meta.ObjectDisplayName,
	}
	if contributor, ok := LastContributorMetadata(job.Actions); ok {
		details.Author = contributor.ContributorDisplayName
	}
	return details
}

// ExtractTestSummary scans a build's action records for a JUnit test-result
// record. Passed is computed as total minus failed minus skipped. Returns
// nil when the build carries no test-result record.
func ExtractTestSummary(build *Build) *models.TestSummary {
	result, ok := LastTestResult(build.Actions)
	if !ok {
		return nil
	}

	urlName := result.URLName
	if urlName == "" {
		urlName = "testReport"
	}

	return &models.TestSummary{
		Total:     result.TotalCount,
		Passed:    result.TotalCount - result.FailCount - result.SkipCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		ReportURL: joinBuildURL(build.URL, urlName),
	}
}

// NormalizeBuildRecord shapes a raw build into the portal's flat record.
// Source provenance comes from the build's git build-data action; when an
// override is supplied its url, display name and author overwrite the
// derived values. The restart action is attached by the caller, which knows
// the job the build belongs to.
func NormalizeBuildRecord(build *Build, override *SCMDetails) models.BuildInfo {
	info := models.BuildInfo{
		ID:          build.URL,
		DisplayName: displayName(build),
		BuildNumber: build.Number,
		BuildURL:    build.URL,
		Status:      buildStatus(build),
		Tests:       ExtractTestSummary(build),
	}

	source := sourceFromBuildData(build)
	if override != nil {
		if source == nil {
			source = &models.SourceInfo{}
		}
		source.URL = override.URL
		source.DisplayName = override.DisplayName
		source.Author = override.Author
	}
	info.Source = source

	return info
}

// buildStatus reports running while the server flags the build as building;
// otherwise it mirrors the server's result verbatim.
func buildStatus(build *Build) models.BuildStatus {
	if build.Building {
		return models.StatusRunning
	}
	return models.BuildStatus(build.Result)
}

// sourceFromBuildData derives branch and commit provenance from the git
// plugin's build-data action. The revision map is branch-keyed and
// unordered on the wire, so the first entry is chosen deterministically as
// the lexicographically smallest branch key.
func sourceFromBuildData(build *Build) *models.SourceInfo {
	data, ok := LastGitBuildData(build.Actions)
	if !ok || len(data.BuildsByBranchName) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data.BuildsByBranchName))
	for key := range data.BuildsByBranchName {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entry := data.BuildsByBranchName[keys[0]]
	branch := keys[0]
	if len(entry.Revision.Branch) > 0 && entry.Revision.Branch[0].Name != "" {
		branch = entry.Revision.Branch[0].Name
	}

	source := &models.SourceInfo{Branch: branch}
	if sha := entry.Revision.SHA1; sha != "" {
		source.Commit = &models.CommitRef{Hash: shortHash(sha)}
	}
	return source
}

func displayName(build *Build) string {
	if build.FullDisplayName != "" {
		return build.FullDisplayName
	}
	return build.DisplayName
}

func shortHash(sha string) string {
	if len(sha) <= shortHashLen {
		return sha
	}
	return sha[:shortHashLen]
}

func joinBuildURL(buildURL, suffix string) string {
	if buildURL == "" {
		return ""
	}
	if !strings.HasSuffix(buildURL, "/") {
		buildURL += "/"
	}
	return buildURL + suffix
}
