package jenkins

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lei/ci-portal/internal/discovery"
	"github.com/lei/ci-portal/internal/models"
	"github.com/lei/ci-portal/pkg/logger"
)

const testProxyPath = "/jenkins/api"

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	resolver := discovery.NewStaticResolver(map[string]string{
		discovery.ServiceProxy: srv.URL,
	})
	return NewAdapter(resolver, &Config{ProxyPath: testProxyPath, FanOut: 2}, logger.NewNop())
}

func TestFetchFolderBuilds(t *testing.T) {
	const folderPath = testProxyPath + "/job/team-a/job/portal"

	mux := http.NewServeMux()
	mux.HandleFunc(folderPath+"/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"name": "portal",
			"builds": [{"number": 5, "url": "b5"}, {"number": 4, "url": "b4"}, {"number": 3, "url": "b3"}],
			"actions": [
				{"_class": "jenkins.scm.api.metadata.ObjectMetadataAction",
				 "objectUrl": "https://example.com/portal", "objectDisplayName": "main"}
			]
		}`)
	})
	for _, n := range []int{5, 3} {
		n := n
		mux.HandleFunc(fmt.Sprintf("%s/%d/api/json", folderPath, n), func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"number": %d, "url": "https://ci.example.com/job/portal/%d/",
				"fullDisplayName": "portal #%d", "building": false, "result": "SUCCESS"}`, n, n, n)
		})
	}
	mux.HandleFunc(folderPath+"/4/api/json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	adapter := newTestAdapter(t, mux)

	builds, err := adapter.FetchFolderBuilds(context.Background(), "team-a/portal")
	if err != nil {
		t.Fatalf("FetchFolderBuilds() error = %v", err)
	}
	if len(builds) != 3 {
		t.Fatalf("got %d builds, want 3", len(builds))
	}

	// Listing order is preserved despite concurrent detail fetches.
	for i, want := range []int{5, 4, 3} {
		if builds[i].BuildNumber != want {
			t.Errorf("builds[%d].BuildNumber = %d, want %d", i, builds[i].BuildNumber, want)
		}
	}

	// The failed detail fetch degrades to a sparse record without failing
	// the batch.
	if builds[1].Status != models.StatusUnknown {
		t.Errorf("degraded build status = %q, want unknown", builds[1].Status)
	}
	if builds[0].Status != models.StatusSuccess {
		t.Errorf("builds[0].Status = %q, want SUCCESS", builds[0].Status)
	}

	// Job-level SCM metadata is merged into every record.
	for i, b := range builds {
		if b.Source == nil || b.Source.DisplayName != "main" {
			t.Errorf("builds[%d].Source = %+v, want job-level scm metadata", i, b.Source)
		}
		if b.Restart == nil {
			t.Errorf("builds[%d].Restart = nil, want bound restart action", i)
		}
	}
}

func TestFetchFolderBuilds_ListingFailure(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	builds, err := adapter.FetchFolderBuilds(context.Background(), "missing-folder")
	if err != nil {
		t.Fatalf("FetchFolderBuilds() error = %v, want degraded empty list", err)
	}
	if builds == nil || len(builds) != 0 {
		t.Errorf("builds = %v, want empty non-nil slice", builds)
	}
}

func TestFetchFolderBuilds_DiscoveryFailure(t *testing.T) {
	resolver := discovery.NewStaticResolver(nil)
	adapter := NewAdapter(resolver, &Config{}, logger.NewNop())

	if _, err := adapter.FetchFolderBuilds(context.Background(), "team-a/portal"); err == nil {
		t.Fatal("FetchFolderBuilds() error = nil, want discovery failure to propagate")
	}
}

func TestFetchBuildDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(testProxyPath+"/job/team-a/job/portal/17/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 17, "url": "https://ci.example.com/job/portal/17/",
			"fullDisplayName": "portal #17", "building": true, "result": ""}`)
	})

	adapter := newTestAdapter(t, mux)

	build, err := adapter.FetchBuildDetails(context.Background(), "job/team-a/job/portal/17")
	if err != nil {
		t.Fatalf("FetchBuildDetails() error = %v", err)
	}
	if build == nil {
		t.Fatal("FetchBuildDetails() = nil, want record")
	}
	if build.BuildNumber != 17 {
		t.Errorf("BuildNumber = %d, want 17", build.BuildNumber)
	}
	if build.Status != models.StatusRunning {
		t.Errorf("Status = %q, want running while building", build.Status)
	}
}

func TestFetchBuildDetails_NotFound(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such build", http.StatusNotFound)
	}))

	build, err := adapter.FetchBuildDetails(context.Background(), "job/portal/999")
	if err != nil {
		t.Fatalf("FetchBuildDetails() error = %v, want degraded nil", err)
	}
	if build != nil {
		t.Errorf("FetchBuildDetails() = %+v, want nil on 404", build)
	}
}

func TestFetchBuildDetails_InvalidIdentifier(t *testing.T) {
	adapter := newTestAdapter(t, http.NewServeMux())

	if _, err := adapter.FetchBuildDetails(context.Background(), "job/portal/latest"); err == nil {
		t.Fatal("FetchBuildDetails() error = nil, want identifier validation error")
	}
}

func TestTriggerRebuild(t *testing.T) {
	var (
		gotMethod      string
		gotPath        string
		gotContentType string
		gotBody        string
	)

	mux := http.NewServeMux()
	mux.HandleFunc(testProxyPath+"/job/team-a/job/portal/build/api", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	})

	adapter := newTestAdapter(t, mux)

	if err := adapter.TriggerRebuild(context.Background(), "job/team-a/job/portal/17"); err != nil {
		t.Fatalf("TriggerRebuild() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != testProxyPath+"/job/team-a/job/portal/build/api" {
		t.Errorf("path = %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}
	if gotBody != "{}" {
		t.Errorf("body = %q, want empty JSON object", gotBody)
	}
}

func TestTriggerRebuild_ServerRejection(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))

	if err := adapter.TriggerRebuild(context.Background(), "job/portal/3"); err == nil {
		t.Fatal("TriggerRebuild() error = nil, want rejection surfaced as failed call")
	}
}

func TestFetchLatestBuild(t *testing.T) {
	const jobPath = testProxyPath + "/job/portal"

	mux := http.NewServeMux()
	mux.HandleFunc(jobPath+"/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "portal", "lastBuild": {"number": 7, "url": "b7"},
			"builds": [{"number": 7, "url": "b7"}]}`)
	})
	mux.HandleFunc(jobPath+"/7/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "url": "https://ci.example.com/job/portal/7/",
			"fullDisplayName": "portal #7", "building": false, "result": "FAILURE"}`)
	})

	adapter := newTestAdapter(t, mux)

	build, err := adapter.FetchLatestBuild(context.Background(), "portal")
	if err != nil {
		t.Fatalf("FetchLatestBuild() error = %v", err)
	}
	if build == nil {
		t.Fatal("FetchLatestBuild() = nil, want record")
	}
	if build.BuildNumber != 7 {
		t.Errorf("BuildNumber = %d, want 7", build.BuildNumber)
	}
	if build.Status != models.StatusFailure {
		t.Errorf("Status = %q, want FAILURE", build.Status)
	}
}

func TestFetchLatestBuild_NoBuilds(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "portal"}`)
	}))

	build, err := adapter.FetchLatestBuild(context.Background(), "portal")
	if err != nil {
		t.Fatalf("FetchLatestBuild() error = %v", err)
	}
	if build != nil {
		t.Errorf("FetchLatestBuild() = %+v, want nil for never-built job", build)
	}
}
