package audio

import (
	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

// NullEvent is the headless Event: never loading, never playing,
// every mutator succeeds. A drop-in stand-in for platforms without
// audio - nothing else in the engine special-cases it.
type NullEvent struct {
	key               content.Key
	stopOnDestruction bool
}

func (e *NullEvent) Start(_, _ vmath.Vec3, stopOnDestruction bool, _ int) bool {
	e.stopOnDestruction = stopOnDestruction
	return true
}

func (e *NullEvent) Stop(bool) {}

func (e *NullEvent) Pause(bool) bool { return true }

func (e *NullEvent) IsPlaying() bool { return false }

func (e *NullEvent) IsLoading() bool { return false }

func (e *NullEvent) SetParameter(string, float64) bool { return true }

func (e *NullEvent) TriggerCue() bool { return true }

func (e *NullEvent) Set3DAttributes(_, _ vmath.Vec3) {}

func (e *NullEvent) StopOnDestruction() bool { return e.stopOnDestruction }

func (e *NullEvent) Key() content.Key { return e.key }

func (e *NullEvent) Clone() Event { return &NullEvent{key: e.key} }

func (e *NullEvent) Reset() {}

// NullManager is the headless backend for silent and unsupported
// platforms. Every category operation succeeds against an in-memory
// mix model, and the deferred-update core still runs so
// timing-dependent callers behave identically to a real backend.
type NullManager struct {
	core           managerCore
	defaultProject string
	volumes        map[string]float64
	mutes          map[string]bool
}

// NewNullManager creates a headless manager
func NewNullManager(defaultProject string) *NullManager {
	return &NullManager{
		defaultProject: defaultProject,
		volumes:        make(map[string]float64),
		mutes:          make(map[string]bool),
	}
}

func (m *NullManager) NewSoundEvent() Event {
	return &NullEvent{}
}

func (m *NullManager) AssociateSoundEvent(key content.Key, e Event) {
	if key.Project == "" {
		key.Project = m.defaultProject
	}
	if ne, ok := e.(*NullEvent); ok {
		ne.key = key
	}
}

func (m *NullManager) SetCategoryVolume(name string, volume float64, fadeSeconds float64, allowPending, _ bool) bool {
	if fadeSeconds > 0 {
		m.core.deferVolume(name, m.GetCategoryVolume(name), volume, fadeSeconds)
		return true
	}
	if allowPending {
		m.core.deferVolumeSet(name, volume)
		return true
	}
	return m.applyCategoryVolume(name, volume)
}

func (m *NullManager) SetCategoryMute(name string, mute, _, _ bool) bool {
	return m.applyCategoryMute(name, mute)
}

func (m *NullManager) GetCategoryVolume(name string) float64 {
	if v, ok := m.volumes[name]; ok {
		return v
	}
	return 1.0
}

func (m *NullManager) SetCategoryPaused(string, bool) bool { return true }

func (m *NullManager) SetMasterVolume(volume float64) bool {
	return m.applyCategoryVolume("bus:/", volume)
}

func (m *NullManager) SetMasterMute(mute bool) bool {
	return m.applyCategoryMute("bus:/", mute)
}

func (m *NullManager) SetMasterPaused(bool) bool { return true }

func (m *NullManager) RegisterSoundCapture(sink Capture) *CaptureHandle {
	return m.core.registerCapture(sink)
}

func (m *NullManager) Tick(deltaSeconds float64) {
	m.core.tick(deltaSeconds, m)
}

func (m *NullManager) DefaultProject() string { return m.defaultProject }

func (m *NullManager) IsInitialized() bool { return true }

func (m *NullManager) Close() {}

func (m *NullManager) applyCategoryVolume(name string, volume float64) bool {
	m.volumes[name] = vmath.Clamp(volume, 0.0, 1.0)
	return true
}

func (m *NullManager) applyCategoryMute(name string, mute bool) bool {
	m.mutes[name] = mute
	return true
}
