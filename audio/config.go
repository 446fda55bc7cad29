package audio

import (
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/soundcore/content"
)

// Configure applies a full sound configuration: the event registry and
// the ducker set. With append the new definitions merge into the
// existing ones; otherwise the factory resets first, stopping all live
// entries. Returns false when any entry was malformed; well-formed
// entries are applied regardless.
//
// source names where the configuration came from and only feeds the
// warning log.
func (f *EventFactory) Configure(source string, events map[string]any, duckers any, appendTo bool) bool {
	ok := f.ConfigureSoundEvents(source, events, appendTo)
	if !f.ConfigureSoundDuckers(source, duckers, appendTo) {
		ok = false
	}
	return ok
}

// ConfigureSoundEvents replaces or extends the id-to-key registry.
// Each value can be:
//
//	"name"                        event in the default project
//	["name"], ["name", false]    same, with optional preload flag
//	{project: p, event: n, preload: b}
//
// Preload defaults to true. Malformed values are skipped with a
// warning and make the result false.
func (f *EventFactory) ConfigureSoundEvents(source string, events map[string]any, appendTo bool) bool {
	// Reconfiguration always drains live instances; append only
	// preserves the registry and preload cache
	if appendTo {
		f.clearTransient()
	} else {
		f.Reset()
	}

	ok := true
	for id, value := range events {
		key, preload, valid := f.parseEventValue(value)
		if !valid {
			f.log.Warn().
				Str("source", source).
				Str("id", id).
				Msg("malformed sound event definition; skipping")
			ok = false
			continue
		}
		f.registerEvent(id, key, preload)
	}
	return ok
}

// ConfigureSoundDuckers replaces or extends the ducker set. Accepts
// []*Ducker or []Ducker directly, or the generic []any shape produced
// by decoding configuration files, which is re-marshaled into typed
// duckers.
func (f *EventFactory) ConfigureSoundDuckers(source string, duckers any, appendTo bool) bool {
	if !appendTo {
		f.resetDuckers()
		f.duckers = nil
	}
	if duckers == nil {
		return true
	}

	switch v := duckers.(type) {
	case []*Ducker:
		f.duckers = append(f.duckers, v...)
		return true
	case []Ducker:
		for i := range v {
			d := v[i]
			f.duckers = append(f.duckers, &d)
		}
		return true
	default:
		parsed, err := decodeDuckers(duckers)
		if err != nil {
			f.log.Warn().
				Str("source", source).
				Err(err).
				Msg("malformed ducker configuration; skipping")
			return false
		}
		f.duckers = append(f.duckers, parsed...)
		return true
	}
}

// registerEvent records one id-to-key binding, instantiating the
// template immediately when preload is requested
func (f *EventFactory) registerEvent(id string, key content.Key, preload bool) {
	if key.Project == "" {
		key.Project = f.manager.DefaultProject()
	}

	if prev, ok := f.events[id]; ok && prev != key {
		f.log.Warn().
			Str("id", id).
			Str("previous", prev.String()).
			Str("next", key.String()).
			Msg("sound event redefined; replacing earlier definition")
		f.dropCached(id)
	}

	f.events[id] = key
	if preload {
		f.cacheEvent(id, key)
	}
}

// parseEventValue decodes the accepted shorthand forms into a content
// key and preload flag
func (f *EventFactory) parseEventValue(value any) (key content.Key, preload bool, ok bool) {
	preload = true

	switch v := value.(type) {
	case string:
		if v == "" {
			return key, false, false
		}
		key.Name = v
		return key, preload, true

	case []any:
		if len(v) == 0 {
			return key, false, false
		}
		name, isString := v[0].(string)
		if !isString || name == "" {
			return key, false, false
		}
		key.Name = name
		if len(v) > 1 {
			flag, isBool := v[len(v)-1].(bool)
			if !isBool {
				return key, false, false
			}
			preload = flag
		}
		return key, preload, true

	case map[string]any:
		name, isString := v["event"].(string)
		if !isString || name == "" {
			return key, false, false
		}
		key.Name = name
		if project, present := v["project"]; present {
			p, isString := project.(string)
			if !isString {
				return key, false, false
			}
			key.Project = p
		}
		if flag, present := v["preload"]; present {
			b, isBool := flag.(bool)
			if !isBool {
				return key, false, false
			}
			preload = b
		}
		return key, preload, true

	default:
		return key, false, false
	}
}

// decodeDuckers round-trips an untyped ducker list through YAML to get
// typed structs without hand-rolled map walking
func decodeDuckers(raw any) ([]*Ducker, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out []*Ducker
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
