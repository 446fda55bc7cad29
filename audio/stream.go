package audio

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// sustainStreamer loops the [loopStart, loopEnd) region of its source
// until released, then plays through to the end. Implements sustain
// point cues: TriggerCue flips the released flag and the tail follows.
type sustainStreamer struct {
	src       beep.StreamSeeker
	loopStart int
	loopEnd   int
	released  *atomic.Bool
	err       error
}

func newSustainStreamer(src beep.StreamSeeker, loopStart, loopEnd int, released *atomic.Bool) *sustainStreamer {
	if loopEnd > src.Len() {
		loopEnd = src.Len()
	}
	if loopStart < 0 {
		loopStart = 0
	}
	return &sustainStreamer{
		src:       src,
		loopStart: loopStart,
		loopEnd:   loopEnd,
		released:  released,
	}
}

func (s *sustainStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if s.released.Load() || s.loopEnd <= s.loopStart {
			m, sok := s.src.Stream(samples[n:])
			n += m
			if !sok {
				return n, n > 0
			}
			continue
		}

		if s.src.Position() >= s.loopEnd {
			if err := s.src.Seek(s.loopStart); err != nil {
				s.err = err
				return n, n > 0
			}
		}

		limit := len(samples) - n
		if remain := s.loopEnd - s.src.Position(); remain < limit {
			limit = remain
		}
		m, sok := s.src.Stream(samples[n : n+limit])
		n += m
		if !sok {
			// Source drained inside the loop region; wrap next pass
			if err := s.src.Seek(s.loopStart); err != nil {
				s.err = err
				return n, n > 0
			}
		}
	}
	return n, true
}

func (s *sustainStreamer) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.src.Err()
}

// stoppable cuts its source off as soon as the flag is set, letting
// the mixer drop the chain on the next pull
type stoppable struct {
	src     beep.Streamer
	stopped *atomic.Bool
}

func (s *stoppable) Stream(samples [][2]float64) (int, bool) {
	if s.stopped.Load() {
		return 0, false
	}
	return s.src.Stream(samples)
}

func (s *stoppable) Err() error {
	return s.src.Err()
}

// captureTap forwards its source unchanged while fanning a copy of the
// pulled samples out to registered capture sinks. Sits at the top of
// the master chain; runs on the speaker goroutine.
type captureTap struct {
	src  beep.Streamer
	core *managerCore
	buf  []float64
}

func (t *captureTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	if n > 0 && t.core.hasCaptures() {
		need := n * 2
		if cap(t.buf) < need {
			t.buf = make([]float64, need)
		}
		buf := t.buf[:need]
		for i := 0; i < n; i++ {
			buf[i*2] = samples[i][0]
			buf[i*2+1] = samples[i][1]
		}
		t.core.deliverSamples(2, buf)
	}
	return n, ok
}

func (t *captureTap) Err() error {
	return t.src.Err()
}

// setLinearVolume maps a linear [0, 1] level onto an exponential
// effects.Volume stage. Zero or negative levels silence the stage
// outright rather than feeding -Inf into the exponent.
func setLinearVolume(v *effects.Volume, level float64, muted bool) {
	if muted || level <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}
