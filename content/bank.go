package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParameterDef describes a runtime-settable knob on an event.
// Target selects what the value drives; min/max bound incoming values.
type ParameterDef struct {
	Target string  `yaml:"target"` // "volume" or "pitch"
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// EventDef is one playable event inside a bank
type EventDef struct {
	Name        string                  `yaml:"-"`
	File        string                  `yaml:"file"`
	Category    string                  `yaml:"category"`
	Gain        float64                 `yaml:"gain"`
	LoopStartMS int                     `yaml:"loop_start_ms"`
	LoopEndMS   int                     `yaml:"loop_end_ms"`
	Parameters  map[string]ParameterDef `yaml:"parameters"`
}

// HasSustain reports whether the event declares a sustain loop region
func (d EventDef) HasSustain() bool {
	return d.LoopEndMS > d.LoopStartMS
}

// Bank is a parsed sound project file: the buses it declares plus
// its event definitions
type Bank struct {
	Name       string              `yaml:"name"`
	Categories []string            `yaml:"categories"`
	Events     map[string]EventDef `yaml:"events"`
}

// ParseBank decodes a bank document. Event entries missing a file are
// rejected; missing categories default to the SFX bus, missing gain to
// unity. The caller supplies fallbackName for banks that omit "name".
func ParseBank(data []byte, fallbackName string) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bank %s: %w", fallbackName, err)
	}
	if b.Name == "" {
		b.Name = fallbackName
	}
	if b.Events == nil {
		b.Events = make(map[string]EventDef)
	}

	for name, def := range b.Events {
		if strings.TrimSpace(def.File) == "" {
			return nil, fmt.Errorf("bank %s: event %q has no file", b.Name, name)
		}
		def.Name = name
		if def.Category == "" {
			def.Category = defaultEventCategory
		}
		if def.Gain == 0 {
			def.Gain = 1.0
		}
		b.Events[name] = def
	}

	return &b, nil
}

const defaultEventCategory = "bus:/SFX"
