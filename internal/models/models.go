package models

import "context"

// BuildInfo is the flat build record consumed by the portal's build-list
// widget. It is constructed fresh from CI server responses on every call and
// never cached.
type BuildInfo struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	BuildNumber int          `json:"build_number"`
	BuildURL    string       `json:"build_url"`
	Status      BuildStatus  `json:"status"`
	Source      *SourceInfo  `json:"source,omitempty"`
	Tests       *TestSummary `json:"tests,omitempty"`

	// Restart triggers a full rebuild of this build's job. It is bound to
	// the job at normalization time and takes no other arguments. Not
	// serialized; the API layer exposes it as a rebuild endpoint keyed by ID.
	Restart func(ctx context.Context) error `json:"-"`
}

// SourceInfo carries the source-control provenance of a build.
type SourceInfo struct {
	Branch      string     `json:"branch,omitempty"`
	URL         string     `json:"url,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Author      string     `json:"author,omitempty"`
	Commit      *CommitRef `json:"commit,omitempty"`
}

// CommitRef identifies a commit by abbreviated hash. When derived from
// server data the hash is an 8-character prefix of the full SHA1; when
// supplied by override data it is used verbatim.
type CommitRef struct {
	Hash string `json:"hash"`
}

// TestSummary aggregates a build's JUnit-style test results.
// Passed is always Total - Failed - Skipped.
type TestSummary struct {
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	ReportURL string `json:"report_url,omitempty"`
}

// JobDetails is a job name and build number recovered from a build
// identifier string.
type JobDetails struct {
	JobName     string `json:"job_name"`
	BuildNumber int    `json:"build_number"`
}

// BuildStatus is the display status of a build. A build reports
// StatusRunning while the server flags it as building; once a terminal
// result exists the status mirrors the server's result verbatim.
type BuildStatus string

const (
	StatusRunning BuildStatus = "running"
	StatusSuccess BuildStatus = "SUCCESS"
	StatusFailure BuildStatus = "FAILURE"
	StatusAborted BuildStatus = "ABORTED"
	StatusUnknown BuildStatus = ""
)
