package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

func dialogueDucker() *Ducker {
	return &Ducker{
		Events: []string{"dialogue"},
		Categories: []DuckerCategory{
			{
				Name:           "bus:/music",
				DuckedVolume:   0.2,
				UnduckedVolume: 1.0,
				DuckTimeMS:     200,
				UnduckTimeMS:   800,
			},
			{
				Name:           "bus:/ambience",
				DuckedVolume:   0.5,
				UnduckedVolume: 1.0,
				DuckTimeMS:     200,
				UnduckTimeMS:   800,
			},
		},
	}
}

func TestDuckerActivationEdge(t *testing.T) {
	f, mgr, _ := newTestFactory(t)
	f.AppendSoundEvent("dialogue", content.Key{Name: "dialogue"})
	require.True(t, f.ConfigureSoundDuckers("test", []*Ducker{dialogueDucker()}, false))

	// Nothing playing: no fades issued
	f.Poll()
	assert.Empty(t, mgr.volumeCalls)

	id, ok := f.StartTrackedSoundEvent("dialogue", vmath.Zero, vmath.Zero, true)
	require.True(t, ok)

	// Activation edge: exactly one fade per category
	f.Poll()
	require.Len(t, mgr.volumeCalls, 2)
	assert.Equal(t, volumeCall{"bus:/music", 0.2, 0.2, false}, mgr.volumeCalls[0])
	assert.Equal(t, volumeCall{"bus:/ambience", 0.5, 0.2, false}, mgr.volumeCalls[1])
	assert.True(t, f.duckers[0].Active())

	// Steady state: no fades re-issued while the trigger keeps playing
	f.Poll()
	f.Poll()
	assert.Len(t, mgr.volumeCalls, 2)

	// Deactivation edge: one unduck fade per category
	require.True(t, f.StopTrackedSoundEvent(id, true))
	f.Poll()
	require.Len(t, mgr.volumeCalls, 4)
	assert.Equal(t, volumeCall{"bus:/music", 1.0, 0.8, false}, mgr.volumeCalls[2])
	assert.Equal(t, volumeCall{"bus:/ambience", 1.0, 0.8, false}, mgr.volumeCalls[3])
	assert.False(t, f.duckers[0].Active())
}

func TestDuckerTriggeredByUnnamedEvent(t *testing.T) {
	f, mgr, _ := newTestFactory(t)
	f.AppendSoundEvent("dialogue", content.Key{Name: "dialogue"})
	require.True(t, f.ConfigureSoundDuckers("test", []*Ducker{dialogueDucker()}, false))

	require.True(t, f.StartSoundEvent("dialogue", vmath.Zero, vmath.Zero, false))
	f.Poll()
	assert.Len(t, mgr.volumeCalls, 2)
}

func TestDuckerHoldsAcrossOverlappingTriggers(t *testing.T) {
	f, mgr, _ := newTestFactory(t)
	f.AppendSoundEvent("dialogue", content.Key{Name: "dialogue"})
	require.True(t, f.ConfigureSoundDuckers("test", []*Ducker{dialogueDucker()}, false))

	a, ok := f.StartTrackedSoundEvent("dialogue", vmath.Zero, vmath.Zero, true)
	require.True(t, ok)
	b, ok := f.StartTrackedSoundEvent("dialogue", vmath.Zero, vmath.Zero, true)
	require.True(t, ok)

	f.Poll()
	require.Len(t, mgr.volumeCalls, 2)

	// One of two overlapping triggers ending keeps the duck held
	require.True(t, f.StopTrackedSoundEvent(a, true))
	f.Poll()
	assert.Len(t, mgr.volumeCalls, 2)

	require.True(t, f.StopTrackedSoundEvent(b, true))
	f.Poll()
	assert.Len(t, mgr.volumeCalls, 4)
}

func TestDuckerDelayedStartDoesNotDuck(t *testing.T) {
	f, mgr, clock := newTestFactory(t)
	f.AppendSoundEvent("dialogue", content.Key{Name: "dialogue"})
	require.True(t, f.ConfigureSoundDuckers("test", []*Ducker{dialogueDucker()}, false))

	template := mgr.template(0)
	template.loading = true
	require.True(t, f.StartSoundEvent("dialogue", vmath.Zero, vmath.Zero, true))
	clone := template.clones[0]

	// Queued but not yet audible: no duck
	f.Poll()
	assert.Empty(t, mgr.volumeCalls)

	clock.Advance(100 * time.Millisecond)
	clone.loading = false
	f.Poll()
	f.Poll()
	assert.Len(t, mgr.volumeCalls, 2)
}

func TestResetRestoresActiveDuckers(t *testing.T) {
	f, mgr, _ := newTestFactory(t)
	f.AppendSoundEvent("dialogue", content.Key{Name: "dialogue"})
	require.True(t, f.ConfigureSoundDuckers("test", []*Ducker{dialogueDucker()}, false))

	_, ok := f.StartTrackedSoundEvent("dialogue", vmath.Zero, vmath.Zero, true)
	require.True(t, ok)
	f.Poll()
	require.Len(t, mgr.volumeCalls, 2)

	f.Reset()

	// Instant restore, no fade
	require.Len(t, mgr.volumeCalls, 4)
	assert.Equal(t, volumeCall{"bus:/music", 1.0, 0, false}, mgr.volumeCalls[2])
	assert.Equal(t, volumeCall{"bus:/ambience", 1.0, 0, false}, mgr.volumeCalls[3])
	assert.Empty(t, f.duckers)
}
