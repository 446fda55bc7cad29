package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	chunks []*SampleData
}

func (s *recordingSink) OnSamples(data *SampleData) {
	s.chunks = append(s.chunks, data)
}

func TestCaptureDelivery(t *testing.T) {
	var core managerCore
	sink := &recordingSink{}
	handle := core.registerCapture(sink)
	require.NotNil(t, handle)

	core.deliverSamples(2, []float64{0.1, 0.2, 0.3, 0.4})
	core.deliverSamples(2, []float64{0.5, 0.6})

	require.Len(t, sink.chunks, 2)

	first := sink.chunks[0]
	assert.Equal(t, uint64(0), first.Frame)
	assert.Equal(t, uint64(0), first.OffsetInSamples)
	assert.Equal(t, 2, first.Channels)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, first.Data)
	assert.Equal(t, 2, first.SizeInSamples())

	second := sink.chunks[1]
	assert.Equal(t, uint64(1), second.Frame)
	assert.Equal(t, uint64(2), second.OffsetInSamples)
	assert.Equal(t, []float64{0.5, 0.6}, second.Data)
}

func TestCaptureDataIsCopied(t *testing.T) {
	var core managerCore
	sink := &recordingSink{}
	core.registerCapture(sink)

	buf := []float64{1, 2}
	core.deliverSamples(2, buf)
	buf[0] = 99

	assert.Equal(t, []float64{1, 2}, sink.chunks[0].Data)
}

func TestCaptureReleaseStopsDelivery(t *testing.T) {
	var core managerCore
	kept := &recordingSink{}
	dropped := &recordingSink{}
	core.registerCapture(kept)
	handle := core.registerCapture(dropped)

	core.deliverSamples(2, []float64{1, 2})
	handle.Release()
	core.deliverSamples(2, []float64{3, 4})

	assert.Len(t, kept.chunks, 2)
	assert.Len(t, dropped.chunks, 1)
	assert.True(t, handle.Released())

	// Release is idempotent
	handle.Release()
	assert.True(t, handle.Released())
}

func TestCapturePruneRemovesReleased(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend()

	a := core.registerCapture(&recordingSink{})
	core.registerCapture(&recordingSink{})
	a.Release()

	core.tick(0, backend)
	assert.Len(t, core.captures, 1)
	assert.True(t, core.hasCaptures())
}

func TestCapturePruneSkipsWhenContended(t *testing.T) {
	var core managerCore

	handle := core.registerCapture(&recordingSink{})
	handle.Release()

	// Simulate the delivery goroutine holding the lock: the prune pass
	// must skip rather than block
	core.captureMu.Lock()
	core.pruneCaptures()
	assert.Len(t, core.captures, 1)
	core.captureMu.Unlock()

	core.pruneCaptures()
	assert.Empty(t, core.captures)
}
