// Interactive soundboard for exercising banks, duckers and category
// control against a live speaker backend
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/soundcore/audio"
	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/log"
	"github.com/lixenwraith/soundcore/vmath"
)

// boardConfig mirrors the factory configuration surface: an id-to-event
// map in any of the accepted shorthands plus an optional ducker list
type boardConfig struct {
	Events  map[string]any `yaml:"events"`
	Duckers any            `yaml:"duckers"`
}

type board struct {
	screen  tcell.Screen
	manager audio.Manager
	factory *audio.EventFactory
	library *content.Library
	project string

	ids       []string
	trackedID int32
	tracked   bool
	muted     bool
	paused    bool
	volume    float64
	status    string
}

func main() {
	dir := flag.String("dir", "banks", "bank directory")
	project := flag.String("project", "game", "default project")
	configPath := flag.String("config", "soundboard.yaml", "soundboard configuration")
	silent := flag.Bool("silent", false, "use the null backend")
	flag.Parse()

	log.Configure(log.Config{Output: os.Stderr})

	if err := run(*dir, *project, *configPath, *silent); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir, project, configPath string, silent bool) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg boardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	contentSvc := content.NewService()
	if err := contentSvc.Init(dir, project); err != nil {
		return err
	}
	if err := contentSvc.Start(); err != nil {
		return err
	}
	defer contentSvc.Stop()

	audioSvc := audio.NewService()
	backend := "speaker"
	if silent {
		backend = "null"
	}
	if err := audioSvc.Init(contentSvc.Library(), backend); err != nil {
		return err
	}
	if err := audioSvc.Start(); err != nil {
		return err
	}
	defer audioSvc.Stop()

	factory := audio.NewEventFactory(audioSvc.Manager(), nil)
	factory.Configure(configPath, cfg.Events, cfg.Duckers, false)

	ids := make([]string, 0, len(cfg.Events))
	for id := range cfg.Events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	b := &board{
		screen:  screen,
		manager: audioSvc.Manager(),
		factory: factory,
		library: contentSvc.Library(),
		project: project,
		ids:     ids,
		volume:  1.0,
		status:  "ready",
	}
	if audioSvc.IsDegraded() {
		b.status = "no audio device, running silent"
	}
	return b.loop()
}

func (b *board) loop() error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := b.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if key, ok := ev.(*tcell.EventKey); ok {
				if b.handleKey(key) {
					b.factory.Reset()
					return nil
				}
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				b.screen.Sync()
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			b.manager.Tick(dt)
			b.factory.Poll()
			b.draw()
		}
	}
}

// handleKey returns true when the board should exit
func (b *board) handleKey(key *tcell.EventKey) bool {
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	r := key.Rune()
	switch {
	case r == 'q':
		return true
	case r >= '1' && r <= '9':
		i := int(r - '1')
		if i < len(b.ids) {
			id := b.ids[i]
			if b.factory.StartSoundEvent(id, vmath.Zero, vmath.Zero, false) {
				b.status = "fired " + id
			} else {
				b.status = "unknown event " + id
			}
		}
	case r == 'l':
		if b.tracked {
			b.status = "loop already running"
			break
		}
		if len(b.ids) == 0 {
			break
		}
		id := b.ids[0]
		if tid, ok := b.factory.StartTrackedSoundEvent(id, vmath.Zero, vmath.Zero, true); ok {
			b.trackedID = tid
			b.tracked = true
			b.status = fmt.Sprintf("tracked %s as #%d", id, tid)
		}
	case r == 'c':
		if b.tracked && b.factory.TriggerTrackedSoundEventCue(b.trackedID) {
			b.status = "cue triggered"
		}
	case r == 's':
		if b.tracked {
			b.factory.StopTrackedSoundEvent(b.trackedID, false)
			b.tracked = false
			b.status = "tracked stop (graceful)"
		}
	case r == 'x':
		if b.tracked {
			b.factory.StopTrackedSoundEvent(b.trackedID, true)
			b.tracked = false
			b.status = "tracked stop (immediate)"
		}
	case r == 'm':
		b.muted = !b.muted
		b.manager.SetMasterMute(b.muted)
	case r == 'p':
		b.paused = !b.paused
		b.manager.SetMasterPaused(b.paused)
	case r == '+', r == '=':
		b.volume = vmath.Clamp(b.volume+0.1, 0, 1)
		b.manager.SetMasterVolume(b.volume)
	case r == '-':
		b.volume = vmath.Clamp(b.volume-0.1, 0, 1)
		b.manager.SetMasterVolume(b.volume)
	}
	return false
}

var (
	styleDefault = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorAqua)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

func (b *board) draw() {
	b.screen.Clear()

	row := 0
	b.text(0, row, styleHeader, "soundcore board")
	row += 2

	if b.factory.IsLoading() {
		b.text(0, row, styleDim, "loading banks...")
	} else {
		b.text(0, row, styleDefault, "banks loaded")
	}
	row += 2

	for i, id := range b.ids {
		if i >= 9 {
			break
		}
		b.text(0, row, styleDefault, fmt.Sprintf("[%d] %s", i+1, id))
		row++
	}
	row++

	b.text(0, row, styleHeader, "categories")
	row++
	for _, name := range b.library.Categories(b.project) {
		b.text(2, row, styleDefault,
			fmt.Sprintf("%-20s %.2f", name, b.manager.GetCategoryVolume(name)))
		row++
	}
	row++

	for i, d := range b.factory.Duckers() {
		style := styleDim
		state := "idle"
		if d.Active() {
			style = styleActive
			state = "DUCKING"
		}
		b.text(0, row, style, fmt.Sprintf("ducker %d: %s", i, state))
		row++
	}
	row++

	b.text(0, row, styleDefault, fmt.Sprintf(
		"live: %d tracked / %d unnamed  master: %.1f  muted: %v  paused: %v",
		b.factory.TrackedCount(), b.factory.UnnamedCount(), b.volume, b.muted, b.paused))
	row += 2

	b.text(0, row, styleDim, "1-9 fire  l loop  c cue  s/x stop  m mute  p pause  +/- volume  q quit")
	row++
	b.text(0, row, styleDim, b.status)

	b.screen.Show()
}

func (b *board) text(x, y int, style tcell.Style, s string) {
	for i, r := range s {
		b.screen.SetContent(x+i, y, r, nil, style)
	}
}
