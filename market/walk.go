package market

import (
	"math/rand"
	"time"
)

// WalkConfig holds the parameters for a synthetic random-walk series.
type WalkConfig struct {
	Start      float64       // first sample, emitted as-is
	Length     int           // number of samples to generate
	StepStdDev float64       // stddev of the normal step applied per sample
	Floor      float64       // prices are clamped to at least this value
	Seed       int64         // 0 means a fresh path on every call
	StartTime  time.Time     // zero means now
	Interval   time.Duration // zero means one hour per sample
}

// Generate builds a synthetic price series: each sample is the previous one
// plus a normal step, clamped to the floor. The same seed reproduces the
// same path.
func Generate(cfg WalkConfig, mode Mode) (*Series, error) {
	if cfg.Length <= 0 {
		return nil, ErrEmptySeries
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Minute)
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Hour
	}

	points := make([]Point, cfg.Length)
	price := cfg.Start
	for i := range points {
		if i > 0 {
			price += rng.NormFloat64() * cfg.StepStdDev
			if price < cfg.Floor {
				price = cfg.Floor
			}
		}
		points[i] = Point{Time: start.Add(time.Duration(i) * interval), Price: price}
	}

	s, err := New(points, mode)
	if err != nil {
		return nil, err
	}
	s.SetWalk(cfg.StepStdDev, cfg.Floor)
	s.rng = rng
	return s, nil
}
