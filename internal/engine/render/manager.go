package render

import (
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
)

// statsInterval is how often frame statistics are logged.
const statsInterval = 5 * time.Second

// Manager owns renderer-wide state shared by all frames.
type Manager struct {
	log *zap.Logger
	now func() time.Time

	frames     uint64
	windowFrom time.Time
	windowN    uint64
	fps        float64
}

// NewManager creates a render manager.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log, now: time.Now}
}

// Update counts the frame and logs the rate every statsInterval.
func (m *Manager) Update() {
	now := m.now()
	if m.windowFrom.IsZero() {
		m.windowFrom = now
	}
	m.frames++
	m.windowN++

	if elapsed := now.Sub(m.windowFrom); elapsed >= statsInterval {
		m.fps = float64(m.windowN) / elapsed.Seconds()
		m.log.Debug("frame rate", zap.Float64("fps", m.fps), zap.Uint64("frames", m.frames))
		m.windowFrom = now
		m.windowN = 0
	}
}

// Flush restores the GL state every pass starts from.
func (m *Manager) Flush(engine.Device) {
	gl.Disable(gl.BLEND)
	gl.Disable(gl.SCISSOR_TEST)
	gl.FrontFace(gl.CCW)
	gl.DepthMask(true)
	gl.ColorMask(true, true, true, true)
}

// Frames returns the number of updates.
func (m *Manager) Frames() uint64 {
	return m.frames
}

// FPS returns the rate measured over the last full interval.
func (m *Manager) FPS() float64 {
	return m.fps
}
