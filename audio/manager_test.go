package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

// recordingBackend is a categoryBackend whose acceptance is scripted
// per category, standing in for buses that do not exist yet
type recordingBackend struct {
	known   map[string]bool
	volumes map[string]float64
	mutes   map[string]bool
	applies int
}

func newRecordingBackend(categories ...string) *recordingBackend {
	b := &recordingBackend{
		known:   make(map[string]bool),
		volumes: make(map[string]float64),
		mutes:   make(map[string]bool),
	}
	for _, c := range categories {
		b.known[c] = true
	}
	return b
}

func (b *recordingBackend) applyCategoryVolume(name string, volume float64) bool {
	b.applies++
	if !b.known[name] {
		return false
	}
	b.volumes[name] = volume
	return true
}

func (b *recordingBackend) applyCategoryMute(name string, mute bool) bool {
	if !b.known[name] {
		return false
	}
	b.mutes[name] = mute
	return true
}

func TestFadeInterpolation(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend("bus:/music")

	core.deferVolume("bus:/music", 0.0, 1.0, 2.0)

	core.tick(0.5, backend)
	assert.InDelta(t, 0.25, backend.volumes["bus:/music"], 1e-9)

	core.tick(0.5, backend)
	assert.InDelta(t, 0.5, backend.volumes["bus:/music"], 1e-9)

	// Not yet complete: entry still queued
	_, pending := core.pendingVolumeFor("bus:/music")
	assert.True(t, pending)

	core.tick(1.0, backend)
	assert.InDelta(t, 1.0, backend.volumes["bus:/music"], 1e-9)
	_, pending = core.pendingVolumeFor("bus:/music")
	assert.False(t, pending)
}

func TestFadeOvershootClamps(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend("bus:/music")

	core.deferVolume("bus:/music", 0.2, 0.8, 1.0)
	core.tick(10.0, backend)
	assert.InDelta(t, 0.8, backend.volumes["bus:/music"], 1e-9)
	assert.Empty(t, core.pendingVolumes)
}

func TestZeroDurationFadeCompletesOnFirstTick(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend("bus:/music")

	core.deferVolumeSet("bus:/music", 0.4)
	core.tick(0, backend)
	assert.InDelta(t, 0.4, backend.volumes["bus:/music"], 1e-9)
	assert.Empty(t, core.pendingVolumes)
}

func TestDeferReplacesSameCategory(t *testing.T) {
	var core managerCore

	core.deferVolume("bus:/music", 0.0, 1.0, 5.0)
	core.deferVolume("bus:/SFX", 0.0, 1.0, 5.0)
	core.deferVolume("bus:/music", 1.0, 0.0, 1.0)

	require.Len(t, core.pendingVolumes, 2)
	p, ok := core.pendingVolumeFor("bus:/music")
	require.True(t, ok)
	assert.Equal(t, 0.0, p.endVolume)
	assert.Equal(t, 1.0, p.targetSeconds)
	assert.Equal(t, 0.0, p.elapsedSeconds)
}

func TestPendingRetriesUntilCategoryExists(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend()

	core.deferVolumeSet("bus:/music", 0.7)
	core.deferMute("bus:/music", true)

	// Bus not created yet: both entries stay queued across ticks
	core.tick(1.0, backend)
	core.tick(1.0, backend)
	assert.Len(t, core.pendingVolumes, 1)
	assert.Len(t, core.pendingMutes, 1)

	backend.known["bus:/music"] = true
	core.tick(1.0, backend)
	assert.Empty(t, core.pendingVolumes)
	assert.Empty(t, core.pendingMutes)
	assert.InDelta(t, 0.7, backend.volumes["bus:/music"], 1e-9)
	assert.True(t, backend.mutes["bus:/music"])
}

func TestMuteAppliedOncePerRequest(t *testing.T) {
	var core managerCore
	backend := newRecordingBackend("bus:/music")

	core.deferMute("bus:/music", true)
	core.deferMute("bus:/music", false)
	require.Len(t, core.pendingMutes, 1)

	core.tick(1.0, backend)
	assert.False(t, backend.mutes["bus:/music"])
	assert.Empty(t, core.pendingMutes)

	// Nothing left to re-apply
	before := backend.applies
	core.tick(1.0, backend)
	assert.Equal(t, before, backend.applies)
}

func TestNullManagerFade(t *testing.T) {
	m := NewNullManager("game")

	require.True(t, m.SetCategoryVolume("bus:/music", 0.0, 0, false, false))
	require.True(t, m.SetCategoryVolume("bus:/music", 1.0, 2.0, false, false))

	m.Tick(1.0)
	assert.InDelta(t, 0.5, m.GetCategoryVolume("bus:/music"), 1e-9)

	m.Tick(1.0)
	assert.InDelta(t, 1.0, m.GetCategoryVolume("bus:/music"), 1e-9)
}

func TestNullManagerDefaults(t *testing.T) {
	m := NewNullManager("game")

	assert.Equal(t, "game", m.DefaultProject())
	assert.True(t, m.IsInitialized())
	assert.Equal(t, 1.0, m.GetCategoryVolume("bus:/never-set"))

	// Out-of-range volumes clamp
	require.True(t, m.SetCategoryVolume("bus:/music", 3.0, 0, false, false))
	assert.Equal(t, 1.0, m.GetCategoryVolume("bus:/music"))
	require.True(t, m.SetCategoryVolume("bus:/music", -1.0, 0, false, false))
	assert.Equal(t, 0.0, m.GetCategoryVolume("bus:/music"))

	assert.True(t, m.SetMasterVolume(0.5))
	assert.Equal(t, 0.5, m.GetCategoryVolume("bus:/"))
	assert.True(t, m.SetMasterMute(true))
	assert.True(t, m.mutes["bus:/"])
}

func TestNullManagerEvents(t *testing.T) {
	m := NewNullManager("game")

	e := m.NewSoundEvent()
	m.AssociateSoundEvent(content.Key{Name: "shot"}, e)
	assert.Equal(t, "game", e.Key().Project)

	assert.False(t, e.IsLoading())
	assert.False(t, e.IsPlaying())
	assert.True(t, e.Start(vmath.Zero, vmath.Zero, true, 0))
	assert.True(t, e.StopOnDestruction())
	assert.True(t, e.SetParameter("x", 1))
	assert.True(t, e.TriggerCue())

	clone := e.Clone()
	assert.Equal(t, e.Key(), clone.Key())
	assert.False(t, clone.StopOnDestruction())
}
