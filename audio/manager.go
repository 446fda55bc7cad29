package audio

import (
	"sync"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

// Manager is the abstract audio backend: a factory for Event instances
// plus category (bus) volume, mute and pause control. Two
// implementations exist: SpeakerManager (real output) and NullManager
// (headless no-op). All mutation entry points must be called from the
// owning game-loop goroutine; only capture delivery crosses goroutines.
//
// Backend calls return success/failure - a category whose bus has not
// been loaded yet fails, and callers pass allowPending to convert that
// failure into a deferred update retried each Tick.
type Manager interface {
	// NewSoundEvent creates an unassociated event instance
	NewSoundEvent() Event

	// AssociateSoundEvent binds an event instance to a content key and
	// schedules loading of the owning bank
	AssociateSoundEvent(key content.Key, e Event)

	// SetCategoryVolume sets the volume of a named bus, fading over
	// fadeSeconds (zero means instantaneous). With allowPending a
	// missing bus defers the change instead of failing. With
	// suppressLogging expected failures stay silent.
	SetCategoryVolume(name string, volume float64, fadeSeconds float64, allowPending, suppressLogging bool) bool

	// SetCategoryMute mutes or unmutes a named bus
	SetCategoryMute(name string, mute, allowPending, suppressLogging bool) bool

	// GetCategoryVolume returns the current volume of a bus, zero if unknown
	GetCategoryVolume(name string) float64

	// SetCategoryPaused pauses or resumes a named bus
	SetCategoryPaused(name string, paused bool) bool

	SetMasterVolume(volume float64) bool
	SetMasterMute(mute bool) bool
	SetMasterPaused(paused bool) bool

	// RegisterSoundCapture attaches a sink to the master bus. The
	// returned handle detaches it.
	RegisterSoundCapture(sink Capture) *CaptureHandle

	// Tick advances deferred updates and prunes released capture
	// sinks. Call once per frame from the owning goroutine.
	Tick(deltaSeconds float64)

	// DefaultProject names the bank used for keys without a project
	DefaultProject() string

	// IsInitialized reports whether the backend opened successfully
	IsInitialized() bool

	// Close releases backend resources
	Close()
}

// categoryBackend is the immediate-application surface a backend
// exposes to the deferred-update core. Calls return false while the
// target bus does not exist yet.
type categoryBackend interface {
	applyCategoryVolume(name string, volume float64) bool
	applyCategoryMute(name string, mute bool) bool
}

// pendingVolume is a deferred, possibly fading, category volume change.
// At most one exists per category; later defers replace earlier ones.
type pendingVolume struct {
	category       string
	startVolume    float64
	endVolume      float64
	targetSeconds  float64
	elapsedSeconds float64
}

// alpha returns fade progress in [0, 1]. Zero-duration fades complete
// immediately - an explicit branch, so the division never sees zero.
func (p *pendingVolume) alpha() float64 {
	if p.targetSeconds <= 0 {
		return 1.0
	}
	return vmath.Clamp(p.elapsedSeconds/p.targetSeconds, 0.0, 1.0)
}

// volume returns the current interpolated volume
func (p *pendingVolume) volume() float64 {
	return vmath.Lerp(p.startVolume, p.endVolume, p.alpha())
}

// apply commits the current state to the backend.
// Returns true once the fade has reached its target AND the backend
// accepted the value; a false keeps the entry queued for retry.
func (p *pendingVolume) apply(backend categoryBackend) bool {
	a := p.alpha()
	ok := backend.applyCategoryVolume(p.category, vmath.Lerp(p.startVolume, p.endVolume, a))
	return ok && a == 1.0
}

// pendingMute is a deferred binary mute change, removed as soon as the
// backend accepts it
type pendingMute struct {
	category string
	mute     bool
}

// managerCore carries the state shared by every Manager backend: the
// deferred category update queues and the capture sink list. The
// capture list is the only structure touched from more than one
// goroutine and is guarded by captureMu.
type managerCore struct {
	pendingVolumes []pendingVolume
	pendingMutes   []pendingMute

	captureMu sync.Mutex
	captures  []captureEntry
}

// deferVolume queues a fading volume change, replacing any pending
// entry for the same category
func (c *managerCore) deferVolume(category string, startVolume, endVolume, seconds float64) {
	entry := pendingVolume{
		category:      category,
		startVolume:   startVolume,
		endVolume:     endVolume,
		targetSeconds: seconds,
	}
	for i := range c.pendingVolumes {
		if c.pendingVolumes[i].category == category {
			c.pendingVolumes[i] = entry
			return
		}
	}
	c.pendingVolumes = append(c.pendingVolumes, entry)
}

// deferVolumeSet queues an instantaneous volume change
func (c *managerCore) deferVolumeSet(category string, volume float64) {
	c.deferVolume(category, volume, volume, 0)
}

// deferMute queues a mute change, replacing any pending entry for the
// same category
func (c *managerCore) deferMute(category string, mute bool) {
	entry := pendingMute{category: category, mute: mute}
	for i := range c.pendingMutes {
		if c.pendingMutes[i].category == category {
			c.pendingMutes[i] = entry
			return
		}
	}
	c.pendingMutes = append(c.pendingMutes, entry)
}

// pendingVolumeFor returns the in-flight fade for category, if any
func (c *managerCore) pendingVolumeFor(category string) (pendingVolume, bool) {
	for i := range c.pendingVolumes {
		if c.pendingVolumes[i].category == category {
			return c.pendingVolumes[i], true
		}
	}
	return pendingVolume{}, false
}

// tick advances all pending updates and applies them through backend.
// Completed entries are removed with swap-pop; order is not preserved.
func (c *managerCore) tick(deltaSeconds float64, backend categoryBackend) {
	count := len(c.pendingVolumes)
	for i := 0; i < count; i++ {
		c.pendingVolumes[i].elapsedSeconds += deltaSeconds
		if c.pendingVolumes[i].apply(backend) {
			c.pendingVolumes[i] = c.pendingVolumes[count-1]
			i--
			count--
		}
	}
	c.pendingVolumes = c.pendingVolumes[:count]

	count = len(c.pendingMutes)
	for i := 0; i < count; i++ {
		if backend.applyCategoryMute(c.pendingMutes[i].category, c.pendingMutes[i].mute) {
			c.pendingMutes[i] = c.pendingMutes[count-1]
			i--
			count--
		}
	}
	c.pendingMutes = c.pendingMutes[:count]

	c.pruneCaptures()
}

// registerCapture attaches a sink; may be called from any goroutine
func (c *managerCore) registerCapture(sink Capture) *CaptureHandle {
	handle := &CaptureHandle{}

	c.captureMu.Lock()
	defer c.captureMu.Unlock()
	c.captures = append(c.captures, captureEntry{sink: sink, handle: handle})
	return handle
}

// deliverSamples fans a chunk out to all attached sinks. Called from
// the audio delivery goroutine; data is interleaved and must not be
// retained by the caller after return.
func (c *managerCore) deliverSamples(channels int, data []float64) {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	for i := range c.captures {
		e := &c.captures[i]
		if e.handle.Released() {
			continue
		}
		chunk := make([]float64, len(data))
		copy(chunk, data)
		e.sink.OnSamples(&SampleData{
			Frame:           e.frame,
			OffsetInSamples: e.offsetInSamples,
			Channels:        channels,
			Data:            chunk,
		})
		e.frame++
		if channels > 0 {
			e.offsetInSamples += uint64(len(data) / channels)
		}
	}
}

// pruneCaptures drops released sinks. Advisory cleanup: uses TryLock
// and skips the whole pass if the audio goroutine holds the lock -
// correctness only requires removal to happen eventually.
func (c *managerCore) pruneCaptures() {
	if !c.captureMu.TryLock() {
		return
	}
	defer c.captureMu.Unlock()

	count := len(c.captures)
	for i := 0; i < count; i++ {
		if c.captures[i].handle.Released() {
			c.captures[i] = c.captures[count-1]
			i--
			count--
		}
	}
	c.captures = c.captures[:count]
}

// hasCaptures reports whether any sink is attached (released or not)
func (c *managerCore) hasCaptures() bool {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()
	return len(c.captures) > 0
}
