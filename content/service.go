package content

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/soundcore/log"
	"github.com/lixenwraith/soundcore/service"
)

var _ service.Service = (*Service)(nil)

// Service wraps a Library plus its hot-reload watcher in the standard
// lifecycle. Init args: dir string, defaultProject string, then any
// additional projects to preload.
type Service struct {
	mu       sync.Mutex
	library  *Library
	watcher  *Watcher
	dir      string
	projects []string
	stopped  bool
}

// NewService creates an unconfigured content service
func NewService() *Service {
	return &Service{}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "content"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: string - bank directory
// args[1]: string - default project name
// args[2:]: string - additional projects to preload
func (s *Service) Init(args ...any) error {
	if len(args) < 2 {
		return fmt.Errorf("content service requires dir and default project")
	}
	dir, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("content service: dir must be a string")
	}
	defaultProject, ok := args[1].(string)
	if !ok {
		return fmt.Errorf("content service: default project must be a string")
	}

	s.dir = dir
	s.projects = []string{defaultProject}
	for _, arg := range args[2:] {
		if p, ok := arg.(string); ok {
			s.projects = append(s.projects, p)
		}
	}

	s.library = NewLibrary(dir, defaultProject)
	return nil
}

// Start implements service.Service
// Schedules preloads and launches the hot-reload watcher. A watcher
// failure is downgraded to "no hot reload" rather than a startup error.
func (s *Service) Start() error {
	if s.library == nil {
		return fmt.Errorf("content service not initialized")
	}

	for _, p := range s.projects {
		s.library.Load(p)
	}

	watcher, err := NewWatcher(s.dir)
	if err != nil {
		logger := log.WithComponent("content")
		logger.Warn().
			Err(err).
			Str("dir", s.dir).
			Msg("bank watcher unavailable; hot reload disabled")
		return nil
	}
	s.watcher = watcher
	go s.watch()
	return nil
}

func (s *Service) watch() {
	for project := range s.watcher.Events {
		if project == "" {
			s.library.ReloadAll()
			continue
		}
		s.library.Reload(project)
	}
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.library != nil {
		s.library.WaitIdle()
	}
	return nil
}

// Library returns the underlying bank library (nil before Init)
func (s *Service) Library() *Library {
	return s.library
}
