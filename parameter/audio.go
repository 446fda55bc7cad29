package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
)

// Audio Engine Timing
const (
	// SpeakerBufferDuration determines output latency
	// 50ms aligns with a 20Hz minimum poll rate
	SpeakerBufferDuration = 50 * time.Millisecond

	// BankReloadDebounce suppresses duplicate watcher events
	// for the same bank file
	BankReloadDebounce = 100 * time.Millisecond
)

// Standard category (bus) names used by convention. The master bus
// always exists; every other bus is created when a loaded bank
// declares it.
const (
	CategoryMaster = "bus:/"
	CategoryMusic  = "bus:/music"
	CategorySFX    = "bus:/SFX"
)

// Mix defaults
const (
	// DefaultCategoryVolume is the volume of a freshly created bus
	DefaultCategoryVolume = 1.0

	// DefaultEventGain applies when a bank event omits gain
	DefaultEventGain = 1.0

	// DistanceRolloff controls inverse-distance attenuation of
	// positioned events: gain scale = 1 / (1 + rolloff * distance)
	DistanceRolloff = 0.05
)
