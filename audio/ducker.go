package audio

// DuckerCategory describes how one bus reacts while its ducker is
// active: fade to DuckedVolume over DuckTimeMS, back to UnduckedVolume
// over UnduckTimeMS once every triggering event has stopped.
type DuckerCategory struct {
	Name           string  `yaml:"Name"`
	DuckedVolume   float64 `yaml:"DuckedVolume"`
	UnduckedVolume float64 `yaml:"UnduckedVolume"`
	DuckTimeMS     int     `yaml:"DuckTimeMS"`
	UnduckTimeMS   int     `yaml:"UnduckTimeMS"`
}

// Ducker lowers a set of category volumes while any of its trigger
// events is playing. Classic use: dim music and ambience under
// dialogue.
type Ducker struct {
	Events     []string         `yaml:"Events"`
	Categories []DuckerCategory `yaml:"Categories"`

	active bool
}

// Active reports whether the ducker is currently holding its
// categories at their ducked volumes
func (d *Ducker) Active() bool {
	return d.active
}

// pollDuckers re-evaluates every ducker against the live entries and
// issues category fades on activation edges only. Repeating the fade
// every frame would restart it and it would never complete.
func (f *EventFactory) pollDuckers() {
	for _, d := range f.duckers {
		active := f.anyEventPlaying(d.Events)
		if active == d.active {
			continue
		}
		d.active = active

		for _, c := range d.Categories {
			volume := c.UnduckedVolume
			fadeMS := c.UnduckTimeMS
			if active {
				volume = c.DuckedVolume
				fadeMS = c.DuckTimeMS
			}
			f.manager.SetCategoryVolume(c.Name, volume, float64(fadeMS)/1000.0, false, false)
		}
	}
}

// resetDuckers restores unducked volumes on every active ducker,
// instantly rather than faded. Runs during teardown, after which the
// entries driving the duckers are gone.
func (f *EventFactory) resetDuckers() {
	for _, d := range f.duckers {
		if !d.active {
			continue
		}
		d.active = false
		for _, c := range d.Categories {
			f.manager.SetCategoryVolume(c.Name, c.UnduckedVolume, 0, false, false)
		}
	}
}

// anyEventPlaying reports whether any live entry for one of the given
// ids is currently audible
func (f *EventFactory) anyEventPlaying(ids []string) bool {
	for _, id := range ids {
		for _, entry := range f.unnamed {
			if entry.id == id && entry.event.IsPlaying() {
				return true
			}
		}
		for _, entry := range f.tracked {
			if entry.id == id && entry.event.IsPlaying() {
				return true
			}
		}
	}
	return false
}
