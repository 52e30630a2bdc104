package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
)

// Report is the summary of one profiling interval.
type Report struct {
	FPS           float64
	Frames        int
	EyesSubmitted int
	PoseErrors    int
	Events        int
	AvgFrame      time.Duration
	MaxFrame      time.Duration
	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	LastPauseUs   uint64
	MaxPauseUs    uint64
	SysMB         float64
}

// Profiler tracks frame rate, VR frame statistics and memory statistics.
// Outputs a summary to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	logger         *slog.Logger
	now            func() time.Time

	eyesSubmitted int
	poseErrors    int
	events        int
	frameTime     time.Duration
	maxFrame      time.Duration

	last Report
}

// ProfilerOption is a functional option applied to a profiler during construction via NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is logged.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger overrides the process logger.
func WithLogger(l *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one VR frame's statistics to the current interval.
//
// Parameters:
//   - stats: the statistics of the frame that was just rendered
func (p *Profiler) Record(stats vr.FrameStats) {
	p.eyesSubmitted += stats.EyesSubmitted
	p.events += stats.Events
	if stats.PoseError {
		p.poseErrors++
	}
	p.frameTime += stats.Duration
	p.maxFrame = max(p.maxFrame, stats.Duration)
}

// Tick should be called once per frame to track frame timing.
// Logs a Report when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		Frames:        p.frameCount,
		EyesSubmitted: p.eyesSubmitted,
		PoseErrors:    p.poseErrors,
		Events:        p.events,
		MaxFrame:      p.maxFrame,
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       p.memStats.NumGC,
	}
	if p.frameCount > 0 {
		r.AvgFrame = p.frameTime / time.Duration(p.frameCount)
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	if gcCount := r.GCCount; gcCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.log().Info("[Profiler] frame report",
		"fps", r.FPS,
		"eyes_submitted", r.EyesSubmitted,
		"pose_errors", r.PoseErrors,
		"events", r.Events,
		"avg_frame", r.AvgFrame,
		"max_frame", r.MaxFrame,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	)

	p.last = r
	p.frameCount = 0
	p.eyesSubmitted, p.poseErrors, p.events = 0, 0, 0
	p.frameTime, p.maxFrame = 0, 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Pending returns the counters of the interval in progress. Memory fields are left zero.
func (p *Profiler) Pending() Report {
	r := Report{
		Frames:        p.frameCount,
		EyesSubmitted: p.eyesSubmitted,
		PoseErrors:    p.poseErrors,
		Events:        p.events,
		MaxFrame:      p.maxFrame,
	}
	if p.frameCount > 0 {
		r.AvgFrame = p.frameTime / time.Duration(p.frameCount)
	}
	return r
}

// Last returns the most recent logged report.
func (p *Profiler) Last() Report {
	return p.last
}

func (p *Profiler) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return common.Logger()
}
