package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ClawDeck/ClawDeck/internal/bus"
	"github.com/ClawDeck/ClawDeck/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	st, _, err := store.Open(filepath.Join(t.TempDir(), "cockpit.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := NewServer(st, bus.NewChatBus(), "test")
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("build PUT: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCreateTaskForcesServerFields(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{
		"title":    "Investigar",
		"id":       999,
		"status":   "completed",
		"progress": 80,
	})
	var out struct {
		Success bool       `json:"success"`
		Task    store.Task `json:"task"`
	}
	decodeBody(t, resp, &out)

	if !out.Success {
		t.Fatal("expected success response")
	}
	if out.Task.Status != store.TaskPending {
		t.Errorf("status = %q, want %q", out.Task.Status, store.TaskPending)
	}
	if out.Task.Progress != 0 {
		t.Errorf("progress = %d, want 0", out.Task.Progress)
	}
	if out.Task.ID == 999 {
		t.Error("client-supplied id was not replaced")
	}
	if out.Task.CreatedAt == "" {
		t.Error("createdAt was not assigned")
	}
}

func TestConcurrentTaskIDsUnique(t *testing.T) {
	_, ts := newTestServer(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{
				"title": fmt.Sprintf("task-%d", i),
			})
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	resp, err := http.Get(ts.URL + "/api/tasks")
	if err != nil {
		t.Fatalf("GET tasks: %v", err)
	}
	var tasks []store.Task
	decodeBody(t, resp, &tasks)

	if len(tasks) != n {
		t.Fatalf("got %d tasks, want %d", len(tasks), n)
	}
	seen := make(map[int64]bool, n)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Fatalf("duplicate task id %d", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestPostFeedForcesServerFields(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/feed", map[string]any{
		"content":   "entrada",
		"id":        999,
		"createdAt": "1999-01-01T00:00:00Z",
	})
	var out map[string]any
	decodeBody(t, resp, &out)
	if out["success"] != true {
		t.Fatal("expected success response")
	}

	resp, err := http.Get(ts.URL + "/api/feed")
	if err != nil {
		t.Fatalf("GET feed: %v", err)
	}
	var feed []store.FeedItem
	decodeBody(t, resp, &feed)

	if len(feed) == 0 {
		t.Fatal("feed is empty")
	}
	if feed[0].Content != "entrada" {
		t.Fatalf("newest item = %+v, want the posted entry", feed[0])
	}
	if feed[0].ID == 999 {
		t.Error("client-supplied id was not replaced")
	}
	if feed[0].CreatedAt == "1999-01-01T00:00:00Z" {
		t.Error("client-supplied createdAt was not replaced")
	}
	if feed[0].CreatedAt == "" {
		t.Error("createdAt was not assigned")
	}
}

func TestFeedCappedAndNewestFirst(t *testing.T) {
	srv, ts := newTestServer(t)

	for i := 0; i < feedListCap+20; i++ {
		if _, err := srv.appendFeed(store.FeedItem{Content: fmt.Sprintf("entry-%d", i)}); err != nil {
			t.Fatalf("append feed: %v", err)
		}
	}

	resp, err := http.Get(ts.URL + "/api/feed")
	if err != nil {
		t.Fatalf("GET feed: %v", err)
	}
	var feed []store.FeedItem
	decodeBody(t, resp, &feed)

	if len(feed) != feedListCap {
		t.Fatalf("got %d feed items, want %d", len(feed), feedListCap)
	}
	if feed[0].Content != fmt.Sprintf("entry-%d", feedListCap+19) {
		t.Errorf("first item = %q, want newest entry", feed[0].Content)
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].ID > feed[i-1].ID {
			t.Fatalf("feed not newest-first at index %d", i)
		}
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	_, ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/agents/atlas/pause", nil)
		var out map[string]any
		decodeBody(t, resp, &out)
		if out["success"] != true {
			t.Fatalf("pause #%d did not report success", i+1)
		}
	}

	resp, err := http.Get(ts.URL + "/api/agents/atlas")
	if err != nil {
		t.Fatalf("GET agent: %v", err)
	}
	var agent store.Agent
	decodeBody(t, resp, &agent)
	if agent.Status != store.AgentPaused {
		t.Errorf("status = %q, want %q", agent.Status, store.AgentPaused)
	}

	resp = postJSON(t, ts.URL+"/api/agents/atlas/resume", nil)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/agents/atlas")
	if err != nil {
		t.Fatalf("GET agent: %v", err)
	}
	decodeBody(t, resp, &agent)
	if agent.Status != store.AgentActive {
		t.Errorf("status after resume = %q, want %q", agent.Status, store.AgentActive)
	}
}

func TestUpdateMissingAgentIsNoOpSuccess(t *testing.T) {
	_, ts := newTestServer(t)

	resp := putJSON(t, ts.URL+"/api/agents/ghost", map[string]any{"name": "Ghost"})
	var out map[string]any
	decodeBody(t, resp, &out)
	if out["success"] != true {
		t.Fatal("PUT on missing agent should still report success")
	}

	resp = postJSON(t, ts.URL+"/api/agents/ghost/pause", nil)
	decodeBody(t, resp, &out)
	if out["success"] != true {
		t.Fatal("pause on missing agent should still report success")
	}

	resp, err := http.Get(ts.URL + "/api/agents")
	if err != nil {
		t.Fatalf("GET agents: %v", err)
	}
	var agents []store.Agent
	decodeBody(t, resp, &agents)
	for _, a := range agents {
		if a.ID == "ghost" {
			t.Fatal("no-op update should not have created an agent")
		}
	}
}

func TestUpdateMissingTaskIsNoOpSuccess(t *testing.T) {
	_, ts := newTestServer(t)

	resp := putJSON(t, ts.URL+"/api/tasks/123456789", map[string]any{"status": "completed"})
	var out map[string]any
	decodeBody(t, resp, &out)
	if out["success"] != true {
		t.Fatal("PUT on missing task should still report success")
	}

	resp, err := http.Get(ts.URL + "/api/tasks")
	if err != nil {
		t.Fatalf("GET tasks: %v", err)
	}
	var tasks []store.Task
	decodeBody(t, resp, &tasks)
	if len(tasks) != 0 {
		t.Errorf("no-op update changed the collection: %+v", tasks)
	}
}

func TestAgentPatchIsShallowMerge(t *testing.T) {
	_, ts := newTestServer(t)

	resp := putJSON(t, ts.URL+"/api/agents/atlas", map[string]any{"model": "claude-opus"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/agents/atlas")
	if err != nil {
		t.Fatalf("GET agent: %v", err)
	}
	var agent store.Agent
	decodeBody(t, resp, &agent)

	if agent.Model != "claude-opus" {
		t.Errorf("model = %q, want claude-opus", agent.Model)
	}
	if agent.Name != "Atlas" || agent.Role != "coordinator" {
		t.Errorf("untouched fields changed: name=%q role=%q", agent.Name, agent.Role)
	}
}

func TestMcpToggleRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := putJSON(t, ts.URL+"/api/mcps/browser", map[string]any{"enabled": true})
	var out map[string]any
	decodeBody(t, resp, &out)
	if out["success"] != true {
		t.Fatal("toggle did not report success")
	}

	resp, err := http.Get(ts.URL + "/api/mcps/browser")
	if err != nil {
		t.Fatalf("GET mcp: %v", err)
	}
	var mcp store.Mcp
	decodeBody(t, resp, &mcp)
	if !mcp.Enabled {
		t.Error("mcp was not enabled after toggle")
	}
}

func TestStatsCounts(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{"title": "one"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/tasks", map[string]any{"title": "two"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	var stats store.Stats
	decodeBody(t, resp, &stats)

	if stats.TotalTasks != 2 || stats.PendingTasks != 2 {
		t.Errorf("stats = %+v, want 2 total / 2 pending tasks", stats)
	}
	if stats.TotalAgents != 4 || stats.ActiveAgents != 3 {
		t.Errorf("stats = %+v, want 4 agents / 3 active", stats)
	}
}

func TestChatValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/chat", map[string]any{"target": "atlas", "type": "agent"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty message: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/chat", map[string]any{"message": "hola", "target": "atlas", "type": "both"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad type: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/chat", map[string]any{"message": "hola", "target": "atlas", "type": "agent"})
	var out struct {
		Success   bool   `json:"success"`
		MessageID string `json:"messageId"`
	}
	decodeBody(t, resp, &out)
	if !out.Success || out.MessageID == "" {
		t.Errorf("valid chat: got %+v", out)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/agents", nil)
	if err != nil {
		t.Fatalf("build OPTIONS: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
