package jenkins

import "encoding/json"

// Known action discriminators. Jenkins reports the implementing Java class
// in the _class field of every action record.
const (
	classObjectMetadata      = "jenkins.scm.api.metadata.ObjectMetadataAction"
	classContributorMetadata = "jenkins.scm.api.metadata.ContributorMetadataAction"
	classTestResult          = "hudson.tasks.junit.TestResultAction"
	classGitBuildData        = "hudson.plugins.git.util.BuildData"
)

// ObjectMetadata is the SCM object-metadata action attached to a job. For a
// branch job the display name is the branch name; for a pull-request job it
// is the PR title.
type ObjectMetadata struct {
	ObjectURL         string `json:"objectUrl"`
	ObjectDisplayName string `json:"objectDisplayName"`
}

// ContributorMetadata is the SCM contributor-metadata action attached to a
// job, naming the change author.
type ContributorMetadata struct {
	Contributor            string `json:"contributor"`
	ContributorDisplayName string `json:"contributorDisplayName"`
}

// TestResult is the JUnit test-result action attached to a build.
type TestResult struct {
	TotalCount int    `json:"totalCount"`
	FailCount  int    `json:"failCount"`
	SkipCount  int    `json:"skipCount"`
	URLName    string `json:"urlName"`
}

// GitBuildData is the git plugin's build-data action, carrying the
// branch-keyed revision map for a build.
type GitBuildData struct {
	BuildsByBranchName map[string]BranchBuild `json:"buildsByBranchName"`
}

// BranchBuild is one entry of the revision map.
type BranchBuild struct {
	Revision Revision `json:"revision"`
}

// Revision is the git revision a branch build was made from.
type Revision struct {
	SHA1   string      `json:"SHA1"`
	Branch []BranchRef `json:"branch"`
}

// BranchRef names a branch at a revision.
type BranchRef struct {
	SHA1 string `json:"SHA1"`
	Name string `json:"name"`
}

// Each decode below scans the full actions slice and keeps overwriting on
// every match, so when multiple records share a discriminator the last one
// in the array wins. Records that fail to decode are skipped.

// LastObjectMetadata returns the last object-metadata action, if any.
func LastObjectMetadata(actions []Action) (ObjectMetadata, bool) {
	var out ObjectMetadata
	found := false
	for _, a := range actions {
		if a.Class != classObjectMetadata {
			continue
		}
		var meta ObjectMetadata
		if err := json.Unmarshal(a.Raw, &meta); err != nil {
			continue
		}
		out = meta
		found = true
	}
	return out, found
}

// LastContributorMetadata returns the last contributor-metadata action, if any.
func LastContributorMetadata(actions []Action) (ContributorMetadata, bool) {
	var out ContributorMetadata
	found := false
	for _, a := range actions {
		if a.Class != classContributorMetadata {
			continue
		}
		var meta ContributorMetadata
		if err := json.Unmarshal(a.Raw, &meta); err != nil {
			continue
		}
		out = meta
		found = true
	}
	return out, found
}

// LastTestResult returns the last JUnit test-result action, if any.
func LastTestResult(actions []Action) (TestResult, bool) {
	var out TestResult
	found := false
	for _, a := range actions {
		if a.Class != classTestResult {
			continue
		}
		var result TestResult
		if err := json.Unmarshal(a.Raw, &result); err != nil {
			continue
		}
		out = result
		found = true
	}
	return out, found
}

// LastGitBuildData returns the last git build-data action, if any.
func LastGitBuildData(actions []Action) (GitBuildData, bool) {
	var out GitBuildData
	found := false
	for _, a := range actions {
		if a.Class != classGitBuildData {
			continue
		}
		var data GitBuildData
		if err := json.Unmarshal(a.Raw, &data); err != nil {
			continue
		}
		out = data
		found = true
	}
	return out, found
}
