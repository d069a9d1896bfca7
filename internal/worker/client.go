// Package worker proxies the remote desktop-automation worker over HTTP.
//
// Every method is one request and one log line. There is no retry and no
// ordering between concurrent calls; callers decide what a failure means.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to one automation worker instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a proxy for the worker at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// do issues one request and decodes the JSON answer into out. Non-2xx is an
// error; out may be nil when the body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("worker %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("worker %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode worker response: %w", err)
	}
	return nil
}

// Health checks the worker's /health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		slog.Warn("Worker: health check failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: health", "status", status.Status)
	return &status, nil
}

// CaptureScreen grabs a full-screen capture.
func (c *Client) CaptureScreen(ctx context.Context) (*Screenshot, error) {
	var shot Screenshot
	if err := c.do(ctx, http.MethodGet, "/screenshot", nil, &shot); err != nil {
		slog.Warn("Worker: screenshot failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: screenshot captured", "width", shot.Width, "height", shot.Height)
	return &shot, nil
}

// AnalyzeScreen sends an image and a prompt to the worker's vision model.
func (c *Client) AnalyzeScreen(ctx context.Context, image, prompt string) (*VisionResult, error) {
	var result VisionResult
	body := map[string]string{"image": image, "prompt": prompt}
	if err := c.do(ctx, http.MethodPost, "/api/vision/analyze", body, &result); err != nil {
		slog.Warn("Worker: vision analyze failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: vision analyze done")
	return &result, nil
}

// FindElement asks the vision model to locate a UI element on screen.
func (c *Client) FindElement(ctx context.Context, image, description string) (*ElementLocation, error) {
	var loc ElementLocation
	body := map[string]string{"image": image, "description": description}
	if err := c.do(ctx, http.MethodPost, "/api/vision/find-element", body, &loc); err != nil {
		slog.Warn("Worker: find-element failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: find-element", "found", loc.Found, "x", loc.X, "y", loc.Y)
	return &loc, nil
}

// ExtractText runs the vision model with a text-extraction prompt.
func (c *Client) ExtractText(ctx context.Context, image string) (*VisionResult, error) {
	var result VisionResult
	body := map[string]string{"image": image, "prompt": "Extract all visible text from this image."}
	if err := c.do(ctx, http.MethodPost, "/api/vision/analyze", body, &result); err != nil {
		slog.Warn("Worker: extract-text failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: extract-text done")
	return &result, nil
}

// MoveMouse moves the pointer to absolute coordinates.
func (c *Client) MoveMouse(ctx context.Context, x, y int) error {
	body := map[string]any{"action": "move", "x": x, "y": y}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/mouse", body, &result); err != nil {
		slog.Warn("Worker: mouse move failed", "error", err)
		return err
	}
	slog.Info("Worker: mouse moved", "x", x, "y", y)
	return nil
}

// ClickMouse clicks the given button at absolute coordinates.
func (c *Client) ClickMouse(ctx context.Context, x, y int, button string) error {
	if button == "" {
		button = "left"
	}
	body := map[string]any{"action": "click", "x": x, "y": y, "button": button}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/mouse", body, &result); err != nil {
		slog.Warn("Worker: mouse click failed", "error", err)
		return err
	}
	slog.Info("Worker: mouse clicked", "x", x, "y", y, "button", button)
	return nil
}

// TypeText types a string on the worker's keyboard.
func (c *Client) TypeText(ctx context.Context, text string) error {
	body := map[string]any{"action": "type", "text": text}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/keyboard", body, &result); err != nil {
		slog.Warn("Worker: type failed", "error", err)
		return err
	}
	slog.Info("Worker: typed text", "chars", len(text))
	return nil
}

// PressKey presses a single named key.
func (c *Client) PressKey(ctx context.Context, key string) error {
	body := map[string]any{"action": "press", "key": key}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/keyboard", body, &result); err != nil {
		slog.Warn("Worker: key press failed", "error", err)
		return err
	}
	slog.Info("Worker: key pressed", "key", key)
	return nil
}

// Hotkey presses a key combination.
func (c *Client) Hotkey(ctx context.Context, keys ...string) error {
	body := map[string]any{"action": "hotkey", "keys": keys}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/keyboard", body, &result); err != nil {
		slog.Warn("Worker: hotkey failed", "error", err)
		return err
	}
	slog.Info("Worker: hotkey pressed", "keys", keys)
	return nil
}

// Navigate points the remote browser at a URL.
func (c *Client) Navigate(ctx context.Context, url string) (*BrowserResult, error) {
	var result BrowserResult
	body := map[string]string{"url": url}
	if err := c.do(ctx, http.MethodPost, "/api/browser/navigate", body, &result); err != nil {
		slog.Warn("Worker: navigate failed", "error", err, "url", url)
		return nil, err
	}
	slog.Info("Worker: navigated", "url", url)
	return &result, nil
}

// BrowserScreenshot captures the current browser page.
func (c *Client) BrowserScreenshot(ctx context.Context) (*BrowserResult, error) {
	var result BrowserResult
	if err := c.do(ctx, http.MethodGet, "/api/browser/screenshot", nil, &result); err != nil {
		slog.Warn("Worker: browser screenshot failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: browser screenshot captured")
	return &result, nil
}

// PageContent returns the text content of the current browser page.
func (c *Client) PageContent(ctx context.Context) (*BrowserResult, error) {
	var result BrowserResult
	if err := c.do(ctx, http.MethodGet, "/api/browser/content", nil, &result); err != nil {
		slog.Warn("Worker: page content failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: page content fetched")
	return &result, nil
}

// Login runs the worker's scripted login flow for a named service.
func (c *Client) Login(ctx context.Context, service, username, password string) (*BrowserResult, error) {
	var result BrowserResult
	body := map[string]string{"service": service, "username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/browser/login", body, &result); err != nil {
		slog.Warn("Worker: login failed", "error", err, "service", service)
		return nil, err
	}
	slog.Info("Worker: login flow done", "service", service)
	return &result, nil
}

// Research runs the worker's browse-and-summarize flow for a query.
func (c *Client) Research(ctx context.Context, query string) (*BrowserResult, error) {
	var result BrowserResult
	body := map[string]string{"query": query}
	if err := c.do(ctx, http.MethodPost, "/api/browser/research", body, &result); err != nil {
		slog.Warn("Worker: research failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: research done", "query", query)
	return &result, nil
}

// LaunchApp starts a desktop application on the worker host.
func (c *Client) LaunchApp(ctx context.Context, name string) error {
	body := map[string]string{"app": name}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/app/launch", body, &result); err != nil {
		slog.Warn("Worker: app launch failed", "error", err, "app", name)
		return err
	}
	slog.Info("Worker: app launched", "app", name)
	return nil
}

// ListWindows lists the open desktop windows.
func (c *Client) ListWindows(ctx context.Context) ([]Window, error) {
	var windows []Window
	if err := c.do(ctx, http.MethodGet, "/windows", nil, &windows); err != nil {
		slog.Warn("Worker: list windows failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: windows listed", "count", len(windows))
	return windows, nil
}

// FocusWindow raises the window with the given id.
func (c *Client) FocusWindow(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/window/focus", body, &result); err != nil {
		slog.Warn("Worker: focus window failed", "error", err, "id", id)
		return err
	}
	slog.Info("Worker: window focused", "id", id)
	return nil
}

// SystemStats reads the worker host's resource usage.
func (c *Client) SystemStats(ctx context.Context) (*SystemStats, error) {
	var stats SystemStats
	if err := c.do(ctx, http.MethodGet, "/system", nil, &stats); err != nil {
		slog.Warn("Worker: system stats failed", "error", err)
		return nil, err
	}
	slog.Info("Worker: system stats", "cpu", stats.CPUPercent, "mem", stats.MemPercent)
	return &stats, nil
}

// EmergencyStop asks the worker to close its browser. It does not cancel
// outstanding calls or touch non-browser automation, so anything already in
// flight runs to completion.
func (c *Client) EmergencyStop(ctx context.Context) error {
	var result actionResult
	if err := c.do(ctx, http.MethodPost, "/api/browser/close", nil, &result); err != nil {
		slog.Warn("Worker: emergency stop failed", "error", err)
		return err
	}
	slog.Info("Worker: emergency stop requested")
	return nil
}
