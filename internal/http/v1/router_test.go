package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpserver "github.com/HarvexIO/harvex/internal/http"
	v1 "github.com/HarvexIO/harvex/internal/http/v1"
	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/scheduler"
	"github.com/HarvexIO/harvex/internal/substrate"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sim := substrate.NewSim(
		[]inventory.WorkerNode{
			{ID: "w1", TotalCapacity: 64},
			{ID: "w2", TotalCapacity: 32, UsedCapacity: 8},
		},
		[]inventory.TargetResource{{
			ID: "alpha", Controlled: true, CurrentValue: 500, MaxValue: 1000,
			CurrentDefense: 5, MinDefense: 3,
			DepressDuration: 2 * time.Second, AmplifyDuration: 3 * time.Second, ExtractDuration: time.Second,
		}},
	)
	loop := scheduler.NewLoop(scheduler.Config{}, sim)
	ts := httptest.NewServer(httpserver.NewServer(v1.Deps{Loop: loop}))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: expected 200, got %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestGetStatus(t *testing.T) {
	ts := newTestServer(t)

	var out struct {
		State       string `json:"state"`
		RunningJobs int    `json:"runningJobs"`
	}
	getJSON(t, ts.URL+"/api/v1/status", &out)
	if out.State != "planning" {
		t.Fatalf("state = %q, want planning", out.State)
	}
	if out.RunningJobs != 0 {
		t.Fatalf("runningJobs = %d, want 0", out.RunningJobs)
	}
}

func TestGetWorkers(t *testing.T) {
	ts := newTestServer(t)

	var out struct {
		Items []inventory.WorkerNode `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/workers", &out)
	if len(out.Items) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(out.Items))
	}
	byID := map[string]inventory.WorkerNode{}
	for _, w := range out.Items {
		byID[w.ID] = w
	}
	if byID["w2"].UsedCapacity != 8 {
		t.Fatalf("w2 used = %v, want 8", byID["w2"].UsedCapacity)
	}
}

func TestGetTargets(t *testing.T) {
	ts := newTestServer(t)

	var out struct {
		Items []inventory.TargetResource `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/targets", &out)
	if len(out.Items) != 1 || out.Items[0].ID != "alpha" {
		t.Fatalf("unexpected targets: %+v", out.Items)
	}
}

func TestGetJobsEmpty(t *testing.T) {
	ts := newTestServer(t)

	var out struct {
		Count int `json:"count"`
	}
	getJSON(t, ts.URL+"/api/v1/jobs", &out)
	if out.Count != 0 {
		t.Fatalf("count = %d, want 0", out.Count)
	}
}

func TestOpenAPISpecServed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/openapi.yaml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
