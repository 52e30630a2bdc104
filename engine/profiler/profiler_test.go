package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	for i := range 4 {
		p.Record(vr.FrameStats{EyesSubmitted: 2, Events: i, Duration: time.Duration(i+1) * time.Millisecond})
		clock.Advance(100 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.Record(vr.FrameStats{EyesSubmitted: 1, PoseError: true, Duration: 10 * time.Millisecond})
	clock.Advance(600 * time.Millisecond)
	require.True(t, p.Tick())

	r := p.Last()
	assert.Equal(t, 5, r.Frames)
	assert.InDelta(t, 5.0, r.FPS, 1e-9)
	assert.Equal(t, 9, r.EyesSubmitted)
	assert.Equal(t, 1, r.PoseErrors)
	assert.Equal(t, 6, r.Events)
	assert.Equal(t, 10*time.Millisecond, r.MaxFrame)
	assert.Equal(t, 4*time.Millisecond, r.AvgFrame)
	assert.Greater(t, r.SysMB, 0.0)
	assert.Contains(t, buf.String(), "[Profiler] frame report")

	assert.Equal(t, Report{}, p.Pending())
}

func TestPendingTracksInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.Now), WithInterval(time.Minute))

	p.Record(vr.FrameStats{EyesSubmitted: 2, Duration: 2 * time.Millisecond})
	p.Tick()
	p.Record(vr.FrameStats{EyesSubmitted: 2, Duration: 4 * time.Millisecond})
	p.Tick()

	r := p.Pending()
	assert.Equal(t, 2, r.Frames)
	assert.Equal(t, 4, r.EyesSubmitted)
	assert.Equal(t, 3*time.Millisecond, r.AvgFrame)
	assert.Equal(t, Report{}, p.Last())
}

func TestIntervalOptionIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithClock(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.now)
}
