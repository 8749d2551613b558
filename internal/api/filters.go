package api

import (
	"strings"

	"github.com/lei/ci-portal/internal/models"
)

// FilterBuilds filters a build list based on query parameters. The search
// term matches the build's display name and source branch, case-insensitive;
// status matches the record's status exactly.
func FilterBuilds(builds []models.BuildInfo, search string, status models.BuildStatus) []models.BuildInfo {
	if search == "" && status == "" {
		return builds
	}

	filtered := make([]models.BuildInfo, 0, len(builds))
	searchLower := strings.ToLower(search)

	for _, b := range builds {
		if search != "" && !matchesSearch(b, searchLower) {
			continue
		}

		if status != "" && b.Status != status {
			continue
		}

		filtered = append(filtered, b)
	}

	return filtered
}

func matchesSearch(b models.BuildInfo, searchLower string) bool {
	if strings.Contains(strings.ToLower(b.DisplayName), searchLower) {
		return true
	}
	if b.Source != nil && strings.Contains(strings.ToLower(b.Source.Branch), searchLower) {
		return true
	}
	return false
}
