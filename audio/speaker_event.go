package audio

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/parameter"
	"github.com/lixenwraith/soundcore/vmath"
)

// playback is the per-start streamer chain state. A fresh one is
// allocated on every Start so a restarted event (hot reload) never
// shares flags with a chain still draining in the mixer.
type playback struct {
	done     atomic.Bool
	stopped  atomic.Bool
	released atomic.Bool

	ctrl      *beep.Ctrl
	volume    *effects.Volume
	resampler *beep.Resampler
	baseRatio float64

	paramVolume float64
	pitch       float64

	// generation is the library load counter the chain was built from;
	// a mismatch means a bank reload superseded this playback
	generation int64
}

// speakerEvent is the beep-backed Event. Content resolution goes
// through the manager's bank library at Start time, so a bank reload
// between plays picks up fresh definitions automatically.
type speakerEvent struct {
	mgr *SpeakerManager
	key content.Key

	def               content.EventDef
	stopOnDestruction bool
	position          vmath.Vec3
	velocity          vmath.Vec3

	// restartPending is set when a bank reload cuts a live chain and
	// consumed by the next IsLoading read. Owning-goroutine only.
	restartPending bool

	pb *playback
}

func (e *speakerEvent) Start(position, velocity vmath.Vec3, stopOnDestruction bool, startOffsetMS int) bool {
	if e.IsPlaying() || e.IsLoading() {
		return false
	}

	def, ok := e.mgr.library.Lookup(e.key)
	if !ok {
		return false
	}
	sample, ok := e.mgr.library.Sample(e.key.Project, def.File)
	if !ok {
		return false
	}

	e.def = def
	e.stopOnDestruction = stopOnDestruction
	e.position = position
	e.velocity = velocity

	pb := &playback{
		paramVolume: 1.0,
		pitch:       1.0,
		generation:  e.mgr.library.Generation(e.key.Project),
	}

	total := sample.Buffer.Len()
	start := 0

	// Offset compensation applies to one-shots only; looping and
	// sustaining events restart from their head
	oneShot := !stopOnDestruction && !def.HasSustain()
	if startOffsetMS > 0 && oneShot {
		start = sample.Format.SampleRate.N(time.Duration(startOffsetMS) * time.Millisecond)
		if start >= total {
			// The whole event elapsed while waiting to start
			pb.done.Store(true)
			e.pb = pb
			e.restartPending = false
			return true
		}
	}

	var s beep.Streamer = sample.Buffer.Streamer(start, total)
	if def.HasSustain() {
		loopStart := sample.Format.SampleRate.N(time.Duration(def.LoopStartMS) * time.Millisecond)
		loopEnd := sample.Format.SampleRate.N(time.Duration(def.LoopEndMS) * time.Millisecond)
		s = newSustainStreamer(sample.Buffer.Streamer(start, total), loopStart, loopEnd, &pb.released)
	}

	pb.baseRatio = float64(sample.Format.SampleRate) / float64(e.mgr.mixRate)
	pb.resampler = beep.ResampleRatio(4, pb.baseRatio, s)

	pb.volume = &effects.Volume{Streamer: pb.resampler, Base: 2}
	setLinearVolume(pb.volume, e.linearGain(pb), false)

	pb.ctrl = &beep.Ctrl{Streamer: pb.volume}

	chain := beep.Seq(
		&stoppable{src: pb.ctrl, stopped: &pb.stopped},
		beep.Callback(func() { pb.done.Store(true) }),
	)

	e.mgr.playInto(def.Category, chain)
	e.pb = pb
	e.restartPending = false
	return true
}

func (e *speakerEvent) Stop(immediate bool) {
	pb := e.pb
	if pb == nil {
		return
	}

	// Without a sustain tail there is nothing graceful to play out
	if immediate || !e.def.HasSustain() {
		pb.stopped.Store(true)
		pb.done.Store(true)
		return
	}
	pb.released.Store(true)
}

func (e *speakerEvent) Pause(paused bool) bool {
	pb := e.pb
	if pb == nil {
		return false
	}
	speaker.Lock()
	pb.ctrl.Paused = paused
	speaker.Unlock()
	return true
}

func (e *speakerEvent) IsPlaying() bool {
	pb := e.pb
	if pb == nil || pb.done.Load() || pb.stopped.Load() {
		return false
	}
	if e.invalidated(pb) {
		// Kill the live chain so the mixer drops it instead of
		// streaming the superseded buffer; the owner restarts via the
		// usual retry path
		pb.stopped.Store(true)
		e.restartPending = true
		return false
	}
	return true
}

// IsLoading reports the owning bank's load state. A playback cut by a
// reload that already completed reports loading exactly once; that
// single read is what flips the owner's retry loop back to waiting, and
// the next inspection proceeds to restart.
func (e *speakerEvent) IsLoading() bool {
	if e.mgr.library.IsLoading(e.key.Project) {
		return true
	}
	if e.restartPending {
		e.restartPending = false
		return true
	}
	return false
}

// invalidated reports whether a bank reload has superseded the content
// this playback was built from. Only looping/persistent instances are
// invalidated; a one-shot plays its captured buffer to the end.
func (e *speakerEvent) invalidated(pb *playback) bool {
	if !e.stopOnDestruction {
		return false
	}
	return e.mgr.library.IsLoading(e.key.Project) ||
		e.mgr.library.Generation(e.key.Project) != pb.generation
}

func (e *speakerEvent) SetParameter(name string, value float64) bool {
	pb := e.pb
	if pb == nil || !e.IsPlaying() {
		return false
	}
	def, ok := e.def.Parameters[name]
	if !ok {
		return false
	}
	if def.Max > def.Min {
		value = vmath.Clamp(value, def.Min, def.Max)
	}

	switch def.Target {
	case "volume":
		pb.paramVolume = value
		e.applyGain(pb)
		return true
	case "pitch":
		pb.pitch = value
		speaker.Lock()
		pb.resampler.SetRatio(pb.baseRatio * value)
		speaker.Unlock()
		return true
	default:
		return false
	}
}

func (e *speakerEvent) TriggerCue() bool {
	pb := e.pb
	if pb == nil || !e.def.HasSustain() || !e.IsPlaying() {
		return false
	}
	if pb.released.Load() {
		return false
	}
	pb.released.Store(true)
	return true
}

func (e *speakerEvent) Set3DAttributes(position, velocity vmath.Vec3) {
	e.position = position
	e.velocity = velocity
	if pb := e.pb; pb != nil && e.IsPlaying() {
		e.applyGain(pb)
	}
}

func (e *speakerEvent) StopOnDestruction() bool {
	return e.stopOnDestruction
}

func (e *speakerEvent) Key() content.Key {
	return e.key
}

func (e *speakerEvent) Clone() Event {
	return &speakerEvent{mgr: e.mgr, key: e.key}
}

func (e *speakerEvent) Reset() {
	if e.stopOnDestruction {
		e.Stop(true)
	}
}

// linearGain combines the authored gain, the runtime volume parameter
// and distance attenuation into one linear level
func (e *speakerEvent) linearGain(pb *playback) float64 {
	att := 1.0 / (1.0 + parameter.DistanceRolloff*vmath.Mag(e.position))
	return e.def.Gain * pb.paramVolume * att
}

func (e *speakerEvent) applyGain(pb *playback) {
	level := e.linearGain(pb)
	speaker.Lock()
	setLinearVolume(pb.volume, level, false)
	speaker.Unlock()
}
