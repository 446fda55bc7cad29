package audio

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/log"
	"github.com/lixenwraith/soundcore/vmath"
)

// EntryState is the result of polling a factory entry
type EntryState int

const (
	EntryWaitingToStart EntryState = iota
	EntryPlaying
	EntryFinishedPlaying
	// EntryCantStart exists for the removal contract but is never
	// produced by poll: an entry that cannot start keeps waiting until
	// the factory is reset or reconfigured
	EntryCantStart
)

// FactoryEntry wraps one owned Event with the scheduling metadata the
// factory needs to retry starts: content may still be streaming in
// when playback is requested, so "trigger requested" and "trigger took
// effect" are decoupled.
type FactoryEntry struct {
	id                string
	event             Event
	position          vmath.Vec3
	velocity          vmath.Vec3
	stopOnDestruction bool
	started           bool

	// desiredStart is stamped after the first poll; late starts seek
	// one-shots forward by the elapsed time so cues stay in sync
	desiredStart time.Time
}

// poll drives the start/retry state machine one step
func (e *FactoryEntry) poll(clock Clock) EntryState {
	if e.started {
		if e.event.IsPlaying() {
			return EntryPlaying
		}

		// A stopped looping event that is loading again is a hot
		// reload in flight: rearm and wait for the restart
		if e.event.StopOnDestruction() && e.event.IsLoading() {
			e.started = false
			return EntryWaitingToStart
		}

		return EntryFinishedPlaying
	}

	if !e.event.IsLoading() {
		// First attempt carries no offset; retries compensate for the
		// time elapsed since the start was originally requested
		offset := 0
		if !e.desiredStart.IsZero() {
			offset = int(clock.Now().Sub(e.desiredStart) / time.Millisecond)
		}
		e.started = e.event.Start(e.position, e.velocity, e.stopOnDestruction, offset)
	}

	if e.started {
		return EntryPlaying
	}
	return EntryWaitingToStart
}

// release stops (when flagged) and frees the wrapped event
func (e *FactoryEntry) release() {
	e.event.Reset()
}

// EventFactory handles loading and playback of sound events by string
// identifier. "Tracked" events keep a handle so the caller can
// manipulate the instance after it starts (loops, parameters, cues,
// timed stops); unnamed events are fire-and-forget.
//
// All methods must be called from the owning game-loop goroutine.
type EventFactory struct {
	manager Manager
	clock   Clock
	log     zerolog.Logger

	events  map[string]content.Key
	cached  map[string]Event
	tracked map[int32]*FactoryEntry
	unnamed []*FactoryEntry
	duckers []*Ducker

	nextTrackedID int32
}

// NewEventFactory creates a factory bound to manager. A nil clock
// selects the system clock.
func NewEventFactory(manager Manager, clock Clock) *EventFactory {
	if clock == nil {
		clock = SystemClock{}
	}
	return &EventFactory{
		manager: manager,
		clock:   clock,
		log:     log.WithComponent("audio"),
		events:  make(map[string]content.Key),
		cached:  make(map[string]Event),
		tracked: make(map[int32]*FactoryEntry),
	}
}

// AppendSoundEvent adds one event definition beyond the initial
// configuration. A conflicting existing definition is replaced with a
// warning; redefinition to the same key is silent.
func (f *EventFactory) AppendSoundEvent(id string, key content.Key) {
	f.registerEvent(id, key, true)
}

// StartSoundEvent triggers a one-off event. Must be a finite event
// that does not loop - there is no control over the instance once this
// returns. Returns false only when id is unknown.
func (f *EventFactory) StartSoundEvent(id string, position, velocity vmath.Vec3, stopOnDestruction bool) bool {
	template := f.resolveCached(id)
	if template == nil {
		return false
	}

	entry := &FactoryEntry{
		id:                id,
		event:             template.Clone(),
		position:          position,
		velocity:          velocity,
		stopOnDestruction: stopOnDestruction,
	}

	// Poll once to start as early as possible; stamp the desired start
	// afterwards so the first attempt carries no offset
	entry.poll(f.clock)
	entry.desiredStart = f.clock.Now()

	f.unnamed = append(f.unnamed, entry)
	return true
}

// StartTrackedSoundEvent triggers an event and returns a handle id for
// later manipulation. Returns false when id is unknown.
func (f *EventFactory) StartTrackedSoundEvent(id string, position, velocity vmath.Vec3, stopOnDestruction bool) (int32, bool) {
	template := f.resolveCached(id)
	if template == nil {
		return 0, false
	}

	trackedID := f.nextTrackedID
	f.nextTrackedID++
	if f.nextTrackedID < 0 {
		f.nextTrackedID = 0
	}

	entry := &FactoryEntry{
		id:                id,
		event:             template.Clone(),
		position:          position,
		velocity:          velocity,
		stopOnDestruction: stopOnDestruction,
	}
	f.tracked[trackedID] = entry

	entry.poll(f.clock)
	entry.desiredStart = f.clock.Now()

	return trackedID, true
}

// StopTrackedSoundEvent stops a tracked event and releases its handle.
// With immediate the event skips its tail.
func (f *EventFactory) StopTrackedSoundEvent(trackedID int32, immediate bool) bool {
	entry, ok := f.tracked[trackedID]
	if !ok {
		return false
	}

	entry.event.Stop(immediate)
	delete(f.tracked, trackedID)
	entry.release()
	return true
}

// SetTrackedSoundEventParameter adjusts a parameter on a playing
// tracked event
func (f *EventFactory) SetTrackedSoundEventParameter(trackedID int32, name string, value float64) bool {
	entry, ok := f.tracked[trackedID]
	if !ok {
		return false
	}
	return entry.event.SetParameter(name, value)
}

// TriggerTrackedSoundEventCue releases the sustain point of a playing
// tracked event
func (f *EventFactory) TriggerTrackedSoundEventCue(trackedID int32) bool {
	entry, ok := f.tracked[trackedID]
	if !ok {
		return false
	}
	return entry.event.TriggerCue()
}

// SetTrackedSoundEvent3DAttributes updates the position and velocity
// of a tracked event
func (f *EventFactory) SetTrackedSoundEvent3DAttributes(trackedID int32, position, velocity vmath.Vec3) bool {
	entry, ok := f.tracked[trackedID]
	if !ok {
		return false
	}

	entry.position = position
	entry.velocity = velocity
	entry.event.Set3DAttributes(position, velocity)
	return true
}

// IsLoading reports whether any preloaded event is still streaming in;
// gates overall subsystem readiness
func (f *EventFactory) IsLoading() bool {
	for _, e := range f.cached {
		if e.IsLoading() {
			return true
		}
	}
	return false
}

// Poll performs the per-frame update: duckers first, then the retry
// state machine of every live entry. Finished or unstartable unnamed
// entries are removed with swap-pop; tracked entries persist until
// explicitly stopped, even when finished.
func (f *EventFactory) Poll() {
	f.pollDuckers()

	for _, entry := range f.tracked {
		entry.poll(f.clock)
	}

	count := len(f.unnamed)
	for i := 0; i < count; i++ {
		entry := f.unnamed[i]
		state := entry.poll(f.clock)

		if state == EntryCantStart || state == EntryFinishedPlaying {
			f.unnamed[i] = f.unnamed[count-1]
			i--
			count--
			entry.release()
		}
	}
	f.unnamed = f.unnamed[:count]
}

// Reset restores ducked categories, stops and releases every live
// entry and clears all configuration. Used at teardown and by
// non-append reconfiguration.
func (f *EventFactory) Reset() {
	f.resetDuckers()
	f.duckers = nil
	f.clearTransient()
	f.clearRegistry()
}

// Duckers returns the configured duckers, for status display
func (f *EventFactory) Duckers() []*Ducker {
	return f.duckers
}

// TrackedCount returns the number of live tracked entries
func (f *EventFactory) TrackedCount() int {
	return len(f.tracked)
}

// UnnamedCount returns the number of live unnamed entries
func (f *EventFactory) UnnamedCount() int {
	return len(f.unnamed)
}

// resolveCached returns the template event for id, lazily caching it
// when the id is configured but was not preloaded. Nil for unknown ids.
func (f *EventFactory) resolveCached(id string) Event {
	if e, ok := f.cached[id]; ok {
		return e
	}
	key, ok := f.events[id]
	if !ok {
		return nil
	}
	return f.cacheEvent(id, key)
}

// cacheEvent instantiates and caches the template event for id
func (f *EventFactory) cacheEvent(id string, key content.Key) Event {
	e := f.manager.NewSoundEvent()
	f.manager.AssociateSoundEvent(key, e)
	f.cached[id] = e
	return e
}

// dropCached releases the cached template for id, if any
func (f *EventFactory) dropCached(id string) {
	if e, ok := f.cached[id]; ok {
		delete(f.cached, id)
		e.Reset()
	}
}

// clearTransient releases per-session playback state: every unnamed
// and tracked entry
func (f *EventFactory) clearTransient() {
	for _, entry := range f.unnamed {
		entry.release()
	}
	f.unnamed = nil

	for id, entry := range f.tracked {
		delete(f.tracked, id)
		entry.release()
	}
}

// clearRegistry releases the registry and preload cache
func (f *EventFactory) clearRegistry() {
	for id := range f.cached {
		f.dropCached(id)
	}
	f.events = make(map[string]content.Key)
}
