package audio

import (
	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

// scriptedEvent is a test double whose loading/playing state is driven
// directly by the test instead of a real backend
type scriptedEvent struct {
	key               content.Key
	loading           bool
	playing           bool
	failStart         bool
	stopOnDestruction bool

	startCalls   int
	startOffsets []int
	stopCalls    int
	resetCalls   int
	cueCalls     int
	params       map[string]float64
	position     vmath.Vec3
	velocity     vmath.Vec3

	clones []*scriptedEvent
}

func (e *scriptedEvent) Start(position, velocity vmath.Vec3, stopOnDestruction bool, startOffsetMS int) bool {
	e.startCalls++
	e.startOffsets = append(e.startOffsets, startOffsetMS)
	if e.failStart || e.loading {
		return false
	}
	e.position = position
	e.velocity = velocity
	e.stopOnDestruction = stopOnDestruction
	e.playing = true
	return true
}

func (e *scriptedEvent) Stop(bool) {
	e.stopCalls++
	e.playing = false
}

func (e *scriptedEvent) Pause(bool) bool { return e.playing }

func (e *scriptedEvent) IsPlaying() bool { return e.playing }

func (e *scriptedEvent) IsLoading() bool { return e.loading }

func (e *scriptedEvent) SetParameter(name string, value float64) bool {
	if !e.playing {
		return false
	}
	if e.params == nil {
		e.params = make(map[string]float64)
	}
	e.params[name] = value
	return true
}

func (e *scriptedEvent) TriggerCue() bool {
	if !e.playing {
		return false
	}
	e.cueCalls++
	return true
}

func (e *scriptedEvent) Set3DAttributes(position, velocity vmath.Vec3) {
	e.position = position
	e.velocity = velocity
}

func (e *scriptedEvent) StopOnDestruction() bool { return e.stopOnDestruction }

func (e *scriptedEvent) Key() content.Key { return e.key }

func (e *scriptedEvent) Clone() Event {
	clone := &scriptedEvent{
		key:       e.key,
		loading:   e.loading,
		failStart: e.failStart,
	}
	e.clones = append(e.clones, clone)
	return clone
}

func (e *scriptedEvent) Reset() {
	e.resetCalls++
	if e.stopOnDestruction {
		e.playing = false
	}
}

type volumeCall struct {
	category     string
	volume       float64
	fadeSeconds  float64
	allowPending bool
}

// mockManager records category calls and hands out scripted events
type mockManager struct {
	core           managerCore
	defaultProject string
	events         []*scriptedEvent
	volumeCalls    []volumeCall
}

func newMockManager() *mockManager {
	return &mockManager{defaultProject: "game"}
}

func (m *mockManager) NewSoundEvent() Event {
	e := &scriptedEvent{}
	m.events = append(m.events, e)
	return e
}

func (m *mockManager) AssociateSoundEvent(key content.Key, e Event) {
	if key.Project == "" {
		key.Project = m.defaultProject
	}
	if se, ok := e.(*scriptedEvent); ok {
		se.key = key
	}
}

func (m *mockManager) SetCategoryVolume(name string, volume float64, fadeSeconds float64, allowPending, _ bool) bool {
	m.volumeCalls = append(m.volumeCalls, volumeCall{
		category:     name,
		volume:       volume,
		fadeSeconds:  fadeSeconds,
		allowPending: allowPending,
	})
	return true
}

func (m *mockManager) SetCategoryMute(string, bool, bool, bool) bool { return true }

func (m *mockManager) GetCategoryVolume(string) float64 { return 1.0 }

func (m *mockManager) SetCategoryPaused(string, bool) bool { return true }

func (m *mockManager) SetMasterVolume(float64) bool { return true }

func (m *mockManager) SetMasterMute(bool) bool { return true }

func (m *mockManager) SetMasterPaused(bool) bool { return true }

func (m *mockManager) RegisterSoundCapture(sink Capture) *CaptureHandle {
	return m.core.registerCapture(sink)
}

func (m *mockManager) Tick(float64) {}

func (m *mockManager) DefaultProject() string { return m.defaultProject }

func (m *mockManager) IsInitialized() bool { return true }

func (m *mockManager) Close() {}

// template returns the preloaded template event registered for the
// n-th configured id
func (m *mockManager) template(n int) *scriptedEvent {
	return m.events[n]
}
