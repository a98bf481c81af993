package performance

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Vodeneev/betcode/internal/parser/slip"
)

// maxRecent bounds the ring of recent resolutions kept for /stats
const maxRecent = 100

// Tracker tracks slip resolution metrics
type Tracker struct {
	mu sync.RWMutex

	// Overall metrics
	TotalResolutions int
	TotalResolved    int
	TotalLegs        int
	TotalURLsTried   int
	TotalDuration    time.Duration

	ByPlatform map[string]*PlatformStats
	ByStrategy map[string]int

	// Recent resolutions, oldest first
	Recent []ResolutionTiming
}

// PlatformStats aggregates resolutions of one source platform
type PlatformStats struct {
	Resolutions int
	Resolved    int
	Duration    time.Duration
	Slowest     time.Duration
}

// ResolutionTiming tracks a single resolution
type ResolutionTiming struct {
	Platform  string
	Code      string
	Strategy  string
	URLsTried int
	Legs      int
	Duration  time.Duration
	Error     string
	Timestamp time.Time
}

var globalTracker = NewTracker()

// GetTracker returns the global performance tracker
func GetTracker() *Tracker {
	return globalTracker
}

func NewTracker() *Tracker {
	return &Tracker{
		ByPlatform: make(map[string]*PlatformStats),
		ByStrategy: make(map[string]int),
		Recent:     make([]ResolutionTiming, 0, maxRecent),
	}
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalResolutions = 0
	t.TotalResolved = 0
	t.TotalLegs = 0
	t.TotalURLsTried = 0
	t.TotalDuration = 0
	t.ByPlatform = make(map[string]*PlatformStats)
	t.ByStrategy = make(map[string]int)
	t.Recent = t.Recent[:0]
}

// RecordResolution implements slip.Recorder.
func (t *Tracker) RecordResolution(r slip.Resolution) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalResolutions++
	t.TotalURLsTried += r.URLsTried
	t.TotalDuration += r.Duration
	if r.Success() {
		t.TotalResolved++
		t.TotalLegs += r.Legs
	}
	t.ByStrategy[r.Strategy]++

	ps, ok := t.ByPlatform[r.Platform]
	if !ok {
		ps = &PlatformStats{}
		t.ByPlatform[r.Platform] = ps
	}
	ps.Resolutions++
	ps.Duration += r.Duration
	if r.Duration > ps.Slowest {
		ps.Slowest = r.Duration
	}
	if r.Success() {
		ps.Resolved++
	}

	errStr := ""
	if r.Err != nil {
		errStr = r.Err.Error()
	}
	if len(t.Recent) == maxRecent {
		copy(t.Recent, t.Recent[1:])
		t.Recent = t.Recent[:maxRecent-1]
	}
	t.Recent = append(t.Recent, ResolutionTiming{
		Platform:  r.Platform,
		Code:      r.Code,
		Strategy:  r.Strategy,
		URLsTried: r.URLsTried,
		Legs:      r.Legs,
		Duration:  r.Duration,
		Error:     errStr,
		Timestamp: time.Now(),
	})
}

// PrintSummary logs a performance summary
func (t *Tracker) PrintSummary() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.TotalResolutions == 0 {
		slog.Info("No resolutions recorded")
		return
	}

	slog.Info("Resolution summary",
		"total", t.TotalResolutions,
		"resolved", t.TotalResolved,
		"success_rate", float64(t.TotalResolved)/float64(t.TotalResolutions)*100,
		"avg_duration", t.TotalDuration/time.Duration(t.TotalResolutions),
		"avg_urls_tried", float64(t.TotalURLsTried)/float64(t.TotalResolutions))

	for _, name := range sortedKeys(t.ByPlatform) {
		ps := t.ByPlatform[name]
		slog.Info("Platform resolutions",
			"platform", name,
			"count", ps.Resolutions,
			"resolved", ps.Resolved,
			"avg_duration", ps.Duration/time.Duration(ps.Resolutions),
			"slowest", ps.Slowest)
	}
}

// MetricsResponse represents the JSON response structure for /stats endpoint
type MetricsResponse struct {
	Overall struct {
		TotalResolutions int     `json:"total_resolutions"`
		TotalResolved    int     `json:"total_resolved"`
		SuccessRate      float64 `json:"success_rate"`
		TotalLegs        int     `json:"total_legs"`
		AvgURLsTried     float64 `json:"avg_urls_tried"`
		AvgDuration      string  `json:"avg_duration"`
	} `json:"overall"`

	Platforms  map[string]PlatformMetrics `json:"platforms"`
	Strategies map[string]int             `json:"strategies"`
	Recent     []RecentResolution         `json:"recent"`
}

type PlatformMetrics struct {
	Resolutions int    `json:"resolutions"`
	Resolved    int    `json:"resolved"`
	AvgDuration string `json:"avg_duration"`
	Slowest     string `json:"slowest"`
}

type RecentResolution struct {
	Platform  string `json:"platform"`
	Code      string `json:"code"`
	Strategy  string `json:"strategy"`
	URLsTried int    `json:"urls_tried"`
	Legs      int    `json:"legs"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// GetMetrics returns a snapshot of the metrics
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var resp MetricsResponse
	resp.Overall.TotalResolutions = t.TotalResolutions
	resp.Overall.TotalResolved = t.TotalResolved
	resp.Overall.TotalLegs = t.TotalLegs
	resp.Overall.AvgDuration = time.Duration(0).String()
	if t.TotalResolutions > 0 {
		n := float64(t.TotalResolutions)
		resp.Overall.SuccessRate = float64(t.TotalResolved) / n * 100
		resp.Overall.AvgURLsTried = float64(t.TotalURLsTried) / n
		resp.Overall.AvgDuration = (t.TotalDuration / time.Duration(t.TotalResolutions)).String()
	}

	resp.Platforms = make(map[string]PlatformMetrics, len(t.ByPlatform))
	for name, ps := range t.ByPlatform {
		resp.Platforms[name] = PlatformMetrics{
			Resolutions: ps.Resolutions,
			Resolved:    ps.Resolved,
			AvgDuration: (ps.Duration / time.Duration(ps.Resolutions)).String(),
			Slowest:     ps.Slowest.String(),
		}
	}

	resp.Strategies = make(map[string]int, len(t.ByStrategy))
	for k, v := range t.ByStrategy {
		resp.Strategies[k] = v
	}

	resp.Recent = make([]RecentResolution, 0, len(t.Recent))
	for i := len(t.Recent) - 1; i >= 0; i-- {
		r := t.Recent[i]
		resp.Recent = append(resp.Recent, RecentResolution{
			Platform:  r.Platform,
			Code:      r.Code,
			Strategy:  r.Strategy,
			URLsTried: r.URLsTried,
			Legs:      r.Legs,
			Duration:  r.Duration.String(),
			Error:     r.Error,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return resp
}

func sortedKeys(m map[string]*PlatformStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
