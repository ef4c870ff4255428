package market

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrEmptySeries is returned when a series has no samples to read.
	ErrEmptySeries = errors.New("series has no samples")
	// ErrDataUnavailable is returned when a provider has no rows for a symbol.
	ErrDataUnavailable = errors.New("no data available")
	// ErrProvider is returned when the data provider fails on transport.
	ErrProvider = errors.New("provider failure")
)

// Point is one spot-price sample.
type Point struct {
	Time  time.Time
	Price float64
}

// Mode selects how Advance moves the cursor through a series.
type Mode int

const (
	// Wrap loops the cursor back to the first sample after the last one.
	Wrap Mode = iota
	// Slide appends a freshly generated price on every advance and evicts
	// the oldest sample once the window is full. The cursor always points
	// at the newest sample.
	Slide
	// Bounded halts the cursor at the last sample.
	Bounded
)

func (m Mode) String() string {
	switch m {
	case Wrap:
		return "wrap"
	case Slide:
		return "slide"
	case Bounded:
		return "bounded"
	}
	return "unknown"
}

// DefaultWindow is the sliding-window capacity: hourly samples for a week.
const DefaultWindow = 168

// Series is an ordered sequence of spot prices with a cursor marking "now".
//
// Samples live in a fixed-capacity ring: Slide mode overwrites the oldest
// sample in place rather than growing and re-trimming a slice. Wrap and
// Bounded series never append, so their capacity equals their length.
//
// A Series is owned by a single session actor; callers serialize access.
type Series struct {
	buf    []Point
	head   int // ring index of the oldest sample
	size   int
	cursor int // logical index, 0 is the oldest sample
	mode   Mode

	// walk parameters used by Slide to extend the path
	stepStdDev float64
	floor      float64
	interval   time.Duration
	rng        *rand.Rand
}

// New builds a series over the given samples. Slide-mode series keep at most
// DefaultWindow samples, dropping the oldest; the cursor starts at the oldest
// sample for Wrap and Bounded, and at the newest for Slide.
func New(points []Point, mode Mode) (*Series, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}

	capacity := len(points)
	if mode == Slide {
		capacity = DefaultWindow
		if len(points) > capacity {
			points = points[len(points)-capacity:]
		}
	}

	s := &Series{
		buf:      make([]Point, capacity),
		size:     len(points),
		mode:     mode,
		interval: time.Hour,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	copy(s.buf, points)

	if mode == Slide {
		s.cursor = s.size - 1
		if s.size >= 2 {
			s.interval = points[s.size-1].Time.Sub(points[s.size-2].Time)
		}
	}
	return s, nil
}

// SetWalk configures the random-walk step used by Slide mode to extend the
// path past its initial samples. A zero stepStdDev repeats the last price.
func (s *Series) SetWalk(stepStdDev, floor float64) {
	s.stepStdDev = stepStdDev
	s.floor = floor
}

// Len returns the number of samples currently held.
func (s *Series) Len() int { return s.size }

// Cursor returns the logical index of the current sample.
func (s *Series) Cursor() int { return s.cursor }

// Mode returns the advance policy of the series.
func (s *Series) Mode() Mode { return s.mode }

// At returns the sample at logical index i, oldest first.
func (s *Series) At(i int) Point {
	return s.buf[(s.head+i)%len(s.buf)]
}

// Current returns the sample under the cursor.
func (s *Series) Current() Point {
	return s.At(s.cursor)
}

// Points returns the samples in logical order, oldest first.
func (s *Series) Points() []Point {
	out := make([]Point, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.At(i)
	}
	return out
}

// Advance moves the cursor exactly one logical step according to the mode.
func (s *Series) Advance() {
	switch s.mode {
	case Wrap:
		s.cursor = (s.cursor + 1) % s.size
	case Slide:
		s.push(s.nextPoint())
		s.cursor = s.size - 1
	case Bounded:
		if s.cursor < s.size-1 {
			s.cursor++
		}
	}
}

// nextPoint applies one random-walk step to the newest sample.
func (s *Series) nextPoint() Point {
	last := s.At(s.size - 1)
	price := last.Price + s.rng.NormFloat64()*s.stepStdDev
	if price < s.floor {
		price = s.floor
	}
	return Point{Time: last.Time.Add(s.interval), Price: price}
}

// push appends into the ring, evicting the oldest sample when full.
func (s *Series) push(p Point) {
	if s.size < len(s.buf) {
		s.buf[(s.head+s.size)%len(s.buf)] = p
		s.size++
		return
	}
	s.buf[s.head] = p
	s.head = (s.head + 1) % len(s.buf)
}
