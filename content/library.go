package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/soundcore/log"
)

// Sample is a fully decoded, immutable audio buffer
type Sample struct {
	Buffer *beep.Buffer
	Format beep.Format
}

// bankState tracks one project's load lifecycle. generation increments
// on every completed load attempt (success or failure) so consumers can
// detect hot reloads by comparing against a remembered value.
type bankState struct {
	bank       *Bank
	samples    map[string]Sample
	loading    bool
	generation int64
	err        error
}

// Library owns sound banks and their decoded samples. Loading is
// asynchronous; completion is observed only by polling IsLoading and
// Generation - no callbacks, no futures.
type Library struct {
	mu             sync.RWMutex
	dir            string
	defaultProject string
	banks          map[string]*bankState
	wg             sync.WaitGroup
	log            zerolog.Logger
}

// NewLibrary creates a library rooted at dir. defaultProject names the
// bank used for keys that do not specify a project.
func NewLibrary(dir, defaultProject string) *Library {
	return &Library{
		dir:            dir,
		defaultProject: defaultProject,
		banks:          make(map[string]*bankState),
		log:            log.WithComponent("content"),
	}
}

// DefaultProject returns the project used for bare event names
func (l *Library) DefaultProject() string {
	return l.defaultProject
}

// Load schedules an asynchronous load of project. No-op if the project
// is already loaded or loading.
func (l *Library) Load(project string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.banks[project]
	if ok && (st.loading || st.bank != nil) {
		return
	}
	l.startLoadLocked(project)
}

// Reload forces a fresh load of project, e.g. after its bank file
// changed on disk. Skipped if a load is already in flight.
func (l *Library) Reload(project string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.banks[project]
	if ok && st.loading {
		return
	}
	l.startLoadLocked(project)
}

// ReloadAll re-queues every known project
func (l *Library) ReloadAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for project, st := range l.banks {
		if st.loading {
			continue
		}
		l.startLoadLocked(project)
	}
}

// startLoadLocked flips the project to loading and spawns the decode
// goroutine. Caller holds l.mu.
func (l *Library) startLoadLocked(project string) {
	st, ok := l.banks[project]
	if !ok {
		st = &bankState{}
		l.banks[project] = st
	}
	st.loading = true

	l.wg.Add(1)
	go l.loadBank(project)
}

// loadBank reads, parses and decodes one bank off the main goroutine
func (l *Library) loadBank(project string) {
	defer l.wg.Done()

	bank, samples, err := l.readBank(project)

	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.banks[project]
	st.loading = false
	st.generation++
	st.err = err
	if err != nil {
		l.log.Warn().Str("project", project).Err(err).Msg("bank load failed")
		st.bank = nil
		st.samples = nil
		return
	}
	st.bank = bank
	st.samples = samples
}

// readBank does the file IO and decoding, without holding l.mu
func (l *Library) readBank(project string) (*Bank, map[string]Sample, error) {
	path, err := l.bankPath(project)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	bank, err := ParseBank(data, project)
	if err != nil {
		return nil, nil, err
	}

	samples := make(map[string]Sample)
	for _, def := range bank.Events {
		if _, ok := samples[def.File]; ok {
			continue
		}
		sample, err := l.decodeSample(def.File)
		if err != nil {
			return nil, nil, fmt.Errorf("event %q: %w", def.Name, err)
		}
		samples[def.File] = sample
	}

	return bank, samples, nil
}

func (l *Library) bankPath(project string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(l.dir, project+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("bank %q not found in %s", project, l.dir)
}

func (l *Library) decodeSample(file string) (Sample, error) {
	f, err := os.Open(filepath.Join(l.dir, file))
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return Sample{}, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	return Sample{Buffer: buf, Format: format}, nil
}

// IsLoading reports whether project has a load in flight. Unknown
// projects report false - schedule them with Load first.
func (l *Library) IsLoading(project string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.banks[project]
	return ok && st.loading
}

// Generation returns the load counter for project; zero if it has
// never completed a load attempt
func (l *Library) Generation(project string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if st, ok := l.banks[project]; ok {
		return st.generation
	}
	return 0
}

// Err returns the most recent load error for project, if any
func (l *Library) Err(project string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if st, ok := l.banks[project]; ok {
		return st.err
	}
	return nil
}

// Lookup resolves key to its event definition. Returns false while the
// owning bank is loading, missing, or does not define the event.
func (l *Library) Lookup(key Key) (EventDef, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.banks[key.Project]
	if !ok || st.loading || st.bank == nil {
		return EventDef{}, false
	}
	def, ok := st.bank.Events[key.Name]
	return def, ok
}

// Sample returns the decoded buffer for file within project
func (l *Library) Sample(project, file string) (Sample, bool) {
	if project == "" {
		project = l.defaultProject
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.banks[project]
	if !ok || st.samples == nil {
		return Sample{}, false
	}
	s, ok := st.samples[file]
	return s, ok
}

// Categories returns the buses declared by project's bank
func (l *Library) Categories(project string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.banks[project]
	if !ok || st.bank == nil {
		return nil
	}
	out := make([]string, len(st.bank.Categories))
	copy(out, st.bank.Categories)
	return out
}

// Projects returns every project the library knows about
func (l *Library) Projects() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.banks))
	for p := range l.banks {
		out = append(out, p)
	}
	return out
}

// WaitIdle blocks until all in-flight loads complete. Teardown/test aid.
func (l *Library) WaitIdle() {
	l.wg.Wait()
}
