package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// recordedCall captures one request seen by the fake worker.
type recordedCall struct {
	method string
	path   string
	body   map[string]any
}

func fakeWorker(t *testing.T, responses map[string]any) (*Client, *[]recordedCall) {
	t.Helper()

	var calls []recordedCall
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&call.body)
		}
		calls = append(calls, call)

		if resp, ok := responses[r.URL.Path]; ok {
			json.NewEncoder(w).Encode(resp)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 5*time.Second), &calls
}

func TestHealth(t *testing.T) {
	c, calls := fakeWorker(t, map[string]any{
		"/health": HealthStatus{Status: "ok", Version: "1.2.0"},
	})

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if status.Status != "ok" || status.Version != "1.2.0" {
		t.Errorf("status = %+v", status)
	}
	if len(*calls) != 1 || (*calls)[0].path != "/health" {
		t.Errorf("calls = %+v", *calls)
	}
}

func TestMouseAndKeyboardPayloads(t *testing.T) {
	c, calls := fakeWorker(t, nil)
	ctx := context.Background()

	if err := c.ClickMouse(ctx, 100, 200, ""); err != nil {
		t.Fatalf("click: %v", err)
	}
	if err := c.TypeText(ctx, "hola"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := c.Hotkey(ctx, "ctrl", "c"); err != nil {
		t.Fatalf("hotkey: %v", err)
	}

	if len(*calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(*calls))
	}
	click := (*calls)[0]
	if click.path != "/mouse" || click.body["action"] != "click" || click.body["button"] != "left" {
		t.Errorf("click call = %+v", click)
	}
	typed := (*calls)[1]
	if typed.path != "/keyboard" || typed.body["text"] != "hola" {
		t.Errorf("type call = %+v", typed)
	}
	hotkey := (*calls)[2]
	if hotkey.path != "/keyboard" || hotkey.body["action"] != "hotkey" {
		t.Errorf("hotkey call = %+v", hotkey)
	}
}

func TestFindElement(t *testing.T) {
	c, _ := fakeWorker(t, map[string]any{
		"/api/vision/find-element": ElementLocation{Found: true, X: 640, Y: 360},
	})

	loc, err := c.FindElement(context.Background(), "img", "the save button")
	if err != nil {
		t.Fatalf("find element: %v", err)
	}
	if !loc.Found || loc.X != 640 || loc.Y != 360 {
		t.Errorf("location = %+v", loc)
	}
}

func TestNavigateUsesBrowserPath(t *testing.T) {
	c, calls := fakeWorker(t, map[string]any{
		"/api/browser/navigate": BrowserResult{Success: true, URL: "https://example.com"},
	})

	result, err := c.Navigate(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if (*calls)[0].body["url"] != "https://example.com" {
		t.Errorf("body = %+v", (*calls)[0].body)
	}
}

func TestEmergencyStopOnlyClosesBrowser(t *testing.T) {
	c, calls := fakeWorker(t, nil)

	if err := c.EmergencyStop(context.Background()); err != nil {
		t.Fatalf("emergency stop: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("got %d calls, want exactly 1", len(*calls))
	}
	if got := (*calls)[0]; got.method != http.MethodPost || got.path != "/api/browser/close" {
		t.Errorf("call = %+v", got)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()
	c := NewClient(ts.URL, 5*time.Second)

	if _, err := c.Health(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
	if err := c.MoveMouse(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestUnreachableWorker(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond)

	if _, err := c.CaptureScreen(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
