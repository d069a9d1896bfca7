package worker

// HealthStatus is the worker's /health answer.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime,omitempty"`
}

// Screenshot is the capture returned by GET /screenshot.
type Screenshot struct {
	Image     string `json:"image"` // base64 png
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// VisionResult is the answer to an analyze or extract request.
type VisionResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Model   string `json:"model,omitempty"`
}

// ElementLocation is the answer to a find-element request.
type ElementLocation struct {
	Found bool `json:"found"`
	X     int  `json:"x"`
	Y     int  `json:"y"`
}

// BrowserResult is the generic answer to browser actions.
type BrowserResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
	Image   string `json:"image,omitempty"`
}

// Window describes one desktop window listed by the worker.
type Window struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	App   string `json:"app,omitempty"`
}

// SystemStats is the worker host's resource snapshot.
type SystemStats struct {
	CPUPercent float64 `json:"cpuPercent"`
	MemPercent float64 `json:"memPercent"`
	DiskFree   int64   `json:"diskFree,omitempty"`
}

// actionResult is the bare success answer shared by input actions.
type actionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
