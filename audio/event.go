package audio

import (
	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/vmath"
)

// Event is one playable instance of a configured sound. Instances are
// created by a Manager, associated with a content key, then driven by
// polling: Start never blocks, and asynchronous readiness is observed
// only through IsLoading/IsPlaying - there are no completion callbacks.
//
// An Event is owned by exactly one holder (a factory entry or a cache
// slot). Clone produces an independent instance referencing the same
// underlying content but none of the original's playback state.
type Event interface {
	// Start begins playback. stopOnDestruction marks the instance as a
	// looping/persistent event that must be stopped when its holder
	// releases it. startOffsetMS seeks one-shot events forward to
	// compensate for a delayed start; looping events ignore it.
	// Returns false if the event cannot start yet (content loading,
	// unknown definition); callers are expected to retry.
	Start(position, velocity vmath.Vec3, stopOnDestruction bool, startOffsetMS int) bool

	// Stop halts playback. Safe to call in any state. When immediate
	// is false the event may play out its release tail.
	Stop(immediate bool)

	// Pause suspends or resumes playback without resetting position
	Pause(paused bool) bool

	// IsPlaying reports whether the instance is currently audible
	IsPlaying() bool

	// IsLoading reports whether the backing content is still streaming in
	IsLoading() bool

	// SetParameter adjusts a runtime parameter declared by the event's
	// definition. Returns false if unknown or not playing.
	SetParameter(name string, value float64) bool

	// TriggerCue releases the event's sustain point, letting a
	// sustain-looping event proceed to its tail
	TriggerCue() bool

	// Set3DAttributes updates the spatial position and velocity
	Set3DAttributes(position, velocity vmath.Vec3)

	// StopOnDestruction reports whether Start flagged this instance as
	// a looping/persistent event
	StopOnDestruction() bool

	// Key returns the associated content key
	Key() content.Key

	// Clone creates an independent instance of the same content
	Clone() Event

	// Reset releases the instance. Stops playback first when the
	// instance was started with stopOnDestruction.
	Reset()
}
