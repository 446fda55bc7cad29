package audio

import "sync/atomic"

// SampleData is one chunk of raw master-bus audio delivered to a
// capture sink. Offsets are monotonic within a frame; chunks never
// contain holes.
type SampleData struct {
	Frame           uint64
	OffsetInSamples uint64
	Channels        int
	Data            []float64 // interleaved, caller-owned copy
}

// SizeInSamples returns the per-channel sample count of the chunk
func (d *SampleData) SizeInSamples() int {
	if d.Channels == 0 {
		return 0
	}
	return len(d.Data) / d.Channels
}

// Capture receives raw audio data from the master bus. OnSamples is
// invoked from the audio delivery goroutine and must not block.
type Capture interface {
	OnSamples(data *SampleData)
}

// CaptureHandle detaches a registered capture sink. After Release the
// sink receives no further chunks and is pruned from the manager's
// list on a later Tick.
type CaptureHandle struct {
	released atomic.Bool
}

// Release marks the sink for removal
func (h *CaptureHandle) Release() {
	h.released.Store(true)
}

// Released reports whether the sink has been detached
func (h *CaptureHandle) Released() bool {
	return h.released.Load()
}

// captureEntry pairs a sink with its delivery bookkeeping
type captureEntry struct {
	sink            Capture
	handle          *CaptureHandle
	frame           uint64
	offsetInSamples uint64
}
