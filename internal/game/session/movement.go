package session

import "geogrid.app/internal/grid"

// PositionSink receives absolute position updates; in practice it is
// Session.OnPositionChanged.
type PositionSink func(lat, lng float64)

// MovementSource is the interchangeable-strategy surface for anything that
// can move the player: on-screen buttons, a keyboard, a geolocation feed, a
// recorded path. The session depends only on the emitted positions, never
// on the variant. Each variant additionally has its own trigger method.
type MovementSource interface {
	Enable()
	Disable()
}

// StepSource moves the player one cell per step, the button/keyboard
// strategy. It reads the authoritative position on every step rather than
// tracking its own, so it cannot drift from other sources.
type StepSource struct {
	enabled bool
	size    float64
	pos     func() grid.Point
	emit    PositionSink
}

func NewStepSource(cellSize float64, pos func() grid.Point, emit PositionSink) *StepSource {
	return &StepSource{size: cellSize, pos: pos, emit: emit}
}

func (s *StepSource) Enable()  { s.enabled = true }
func (s *StepSource) Disable() { s.enabled = false }

// Step moves one cell per axis; each delta is clamped to {-1, 0, 1}.
func (s *StepSource) Step(di, dj int) {
	if !s.enabled {
		return
	}
	p := s.pos()
	s.emit(p.Lat+float64(clampStep(di))*s.size, p.Lng+float64(clampStep(dj))*s.size)
}

func clampStep(d int) int {
	if d < -1 {
		return -1
	}
	if d > 1 {
		return 1
	}
	return d
}

// GeoSource passes absolute device positions through, the geolocation
// strategy. Collaborator failures (permission denied, timeout) simply mean
// Report is never called.
type GeoSource struct {
	enabled bool
	emit    PositionSink
}

func NewGeoSource(emit PositionSink) *GeoSource {
	return &GeoSource{emit: emit}
}

func (g *GeoSource) Enable()  { g.enabled = true }
func (g *GeoSource) Disable() { g.enabled = false }

func (g *GeoSource) Report(lat, lng float64) {
	if !g.enabled {
		return
	}
	g.emit(lat, lng)
}

// ReplaySource feeds a recorded path one point per Step call; used by the
// bot and by tests.
type ReplaySource struct {
	enabled bool
	path    []grid.Point
	next    int
	emit    PositionSink
}

func NewReplaySource(path []grid.Point, emit PositionSink) *ReplaySource {
	return &ReplaySource{path: path, emit: emit}
}

func (r *ReplaySource) Enable()  { r.enabled = true }
func (r *ReplaySource) Disable() { r.enabled = false }

// Step emits the next recorded point; returns false when the path is
// exhausted or the source is disabled.
func (r *ReplaySource) Step() bool {
	if !r.enabled || r.next >= len(r.path) {
		return false
	}
	p := r.path[r.next]
	r.next++
	r.emit(p.Lat, p.Lng)
	return true
}
