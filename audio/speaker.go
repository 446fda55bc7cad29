package audio

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/log"
	"github.com/lixenwraith/soundcore/parameter"
	"github.com/lixenwraith/soundcore/vmath"
)

// speakerCategory is one named bus: a mixer feeding a volume/mute
// stage feeding a pause control, chained into the master mixer
type speakerCategory struct {
	name   string
	mixer  *beep.Mixer
	volume *effects.Volume
	ctrl   *beep.Ctrl
	level  float64
	muted  bool
}

// SpeakerManager is the real backend on top of the beep speaker.
// Category buses are created lazily as banks declaring them finish
// loading, which is why volume and mute calls can fail transiently and
// flow through the deferred-update core.
type SpeakerManager struct {
	core    managerCore
	library *content.Library
	mixRate beep.SampleRate
	log     zerolog.Logger

	categories  map[string]*speakerCategory
	master      *beep.Mixer
	masterStage *speakerCategory
	seenGen     map[string]int64

	initialized bool
}

// NewSpeakerManager opens the speaker and builds the master chain.
// Fails with an error when no output device is available; callers
// typically degrade to NewNullManager.
func NewSpeakerManager(library *content.Library) (*SpeakerManager, error) {
	mixRate := beep.SampleRate(parameter.AudioSampleRate)
	if err := speaker.Init(mixRate, mixRate.N(parameter.SpeakerBufferDuration)); err != nil {
		return nil, err
	}

	master := &beep.Mixer{}
	masterVolume := &effects.Volume{Streamer: master, Base: 2}
	masterCtrl := &beep.Ctrl{Streamer: masterVolume}

	m := &SpeakerManager{
		library:    library,
		mixRate:    mixRate,
		log:        log.WithComponent("audio"),
		categories: make(map[string]*speakerCategory),
		master:     master,
		masterStage: &speakerCategory{
			name:   parameter.CategoryMaster,
			mixer:  master,
			volume: masterVolume,
			ctrl:   masterCtrl,
			level:  parameter.DefaultCategoryVolume,
		},
		seenGen:     make(map[string]int64),
		initialized: true,
	}

	speaker.Play(&captureTap{src: masterCtrl, core: &m.core})
	return m, nil
}

func (m *SpeakerManager) NewSoundEvent() Event {
	return &speakerEvent{mgr: m}
}

func (m *SpeakerManager) AssociateSoundEvent(key content.Key, e Event) {
	if key.Project == "" {
		key.Project = m.library.DefaultProject()
	}
	se, ok := e.(*speakerEvent)
	if !ok {
		m.log.Warn().Str("key", key.String()).Msg("foreign event passed to speaker manager")
		return
	}
	se.key = key
	m.library.Load(key.Project)
}

func (m *SpeakerManager) SetCategoryVolume(name string, volume float64, fadeSeconds float64, allowPending, suppressLogging bool) bool {
	if !m.initialized {
		if !suppressLogging {
			m.log.Warn().Str("category", name).Msg("set volume: backend not initialized")
		}
		return false
	}

	volume = vmath.Clamp(volume, 0.0, 1.0)
	cat := m.categoryFor(name)

	if fadeSeconds > 0 || (allowPending && cat == nil) {
		if fadeSeconds > 0 && cat != nil {
			m.core.deferVolume(name, cat.level, volume, fadeSeconds)
		} else {
			m.core.deferVolumeSet(name, volume)
		}
		return true
	}

	if cat == nil {
		if !suppressLogging {
			m.log.Warn().Str("category", name).Msg("set volume: no such category")
		}
		return false
	}

	m.setCategoryLevel(cat, volume)
	return true
}

func (m *SpeakerManager) SetCategoryMute(name string, mute, allowPending, suppressLogging bool) bool {
	if !m.initialized {
		if !suppressLogging {
			m.log.Warn().Str("category", name).Msg("set mute: backend not initialized")
		}
		return false
	}

	cat := m.categoryFor(name)
	if cat == nil {
		if allowPending {
			m.core.deferMute(name, mute)
			return true
		}
		if !suppressLogging {
			m.log.Warn().Str("category", name).Msg("set mute: no such category")
		}
		return false
	}

	m.setCategoryMuted(cat, mute)
	return true
}

func (m *SpeakerManager) GetCategoryVolume(name string) float64 {
	if cat := m.categoryFor(name); cat != nil {
		return cat.level
	}
	return 0
}

func (m *SpeakerManager) SetCategoryPaused(name string, paused bool) bool {
	cat := m.categoryFor(name)
	if cat == nil {
		return false
	}
	speaker.Lock()
	cat.ctrl.Paused = paused
	speaker.Unlock()
	return true
}

func (m *SpeakerManager) SetMasterVolume(volume float64) bool {
	return m.SetCategoryVolume(parameter.CategoryMaster, volume, 0, false, false)
}

func (m *SpeakerManager) SetMasterMute(mute bool) bool {
	return m.SetCategoryMute(parameter.CategoryMaster, mute, false, false)
}

func (m *SpeakerManager) SetMasterPaused(paused bool) bool {
	return m.SetCategoryPaused(parameter.CategoryMaster, paused)
}

func (m *SpeakerManager) RegisterSoundCapture(sink Capture) *CaptureHandle {
	return m.core.registerCapture(sink)
}

// Tick creates buses for freshly loaded banks, then advances the
// deferred queues. Must run on the owning game-loop goroutine.
func (m *SpeakerManager) Tick(deltaSeconds float64) {
	m.syncCategories()
	m.core.tick(deltaSeconds, m)
}

func (m *SpeakerManager) DefaultProject() string {
	return m.library.DefaultProject()
}

func (m *SpeakerManager) IsInitialized() bool {
	return m.initialized
}

func (m *SpeakerManager) Close() {
	if !m.initialized {
		return
	}
	m.initialized = false
	speaker.Clear()
	speaker.Close()
}

// syncCategories picks up buses declared by banks whose load completed
// since the last tick
func (m *SpeakerManager) syncCategories() {
	for _, project := range m.library.Projects() {
		if m.library.IsLoading(project) {
			continue
		}
		gen := m.library.Generation(project)
		if gen == m.seenGen[project] {
			continue
		}
		m.seenGen[project] = gen
		for _, name := range m.library.Categories(project) {
			m.ensureCategory(name)
		}
	}
}

// categoryFor resolves a bus by name; the master bus always exists
func (m *SpeakerManager) categoryFor(name string) *speakerCategory {
	if name == parameter.CategoryMaster {
		return m.masterStage
	}
	return m.categories[name]
}

// ensureCategory creates a bus on first reference from a loaded bank
func (m *SpeakerManager) ensureCategory(name string) *speakerCategory {
	if name == parameter.CategoryMaster {
		return m.masterStage
	}
	if cat, ok := m.categories[name]; ok {
		return cat
	}

	mixer := &beep.Mixer{}
	volume := &effects.Volume{Streamer: mixer, Base: 2}
	ctrl := &beep.Ctrl{Streamer: volume}
	cat := &speakerCategory{
		name:   name,
		mixer:  mixer,
		volume: volume,
		ctrl:   ctrl,
		level:  parameter.DefaultCategoryVolume,
	}

	speaker.Lock()
	m.master.Add(ctrl)
	speaker.Unlock()

	m.categories[name] = cat
	return cat
}

// playInto adds a finished streamer chain to its category's mixer,
// creating the bus if the owning bank declared it late
func (m *SpeakerManager) playInto(category string, s beep.Streamer) {
	cat := m.ensureCategory(category)
	speaker.Lock()
	cat.mixer.Add(s)
	speaker.Unlock()
}

func (m *SpeakerManager) setCategoryLevel(cat *speakerCategory, level float64) {
	cat.level = level
	speaker.Lock()
	setLinearVolume(cat.volume, cat.level, cat.muted)
	speaker.Unlock()
}

func (m *SpeakerManager) setCategoryMuted(cat *speakerCategory, muted bool) {
	cat.muted = muted
	speaker.Lock()
	setLinearVolume(cat.volume, cat.level, cat.muted)
	speaker.Unlock()
}

// applyCategoryVolume implements categoryBackend for the deferred core
func (m *SpeakerManager) applyCategoryVolume(name string, volume float64) bool {
	cat := m.categoryFor(name)
	if cat == nil {
		return false
	}
	m.setCategoryLevel(cat, volume)
	return true
}

// applyCategoryMute implements categoryBackend for the deferred core
func (m *SpeakerManager) applyCategoryMute(name string, mute bool) bool {
	cat := m.categoryFor(name)
	if cat == nil {
		return false
	}
	m.setCategoryMuted(cat, mute)
	return true
}
