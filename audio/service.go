package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/soundcore/content"
	"github.com/lixenwraith/soundcore/log"
	"github.com/lixenwraith/soundcore/service"
)

var _ service.Service = (*Service)(nil)

// Service wraps a Manager in the standard lifecycle.
// Handles graceful degradation when no audio output is available: a
// speaker that fails to open drops to the null backend rather than
// failing the service.
type Service struct {
	manager  Manager
	library  *content.Library
	backend  string
	degraded atomic.Bool
}

// NewService creates an unconfigured audio service
func NewService() *Service {
	return &Service{}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return []string{"content"}
}

// Init implements service.Service
// args[0]: *content.Library - loaded bank library
// args[1]: string - backend name, "speaker" (default) or "null"
func (s *Service) Init(args ...any) error {
	if len(args) < 1 {
		return fmt.Errorf("audio service requires a content library")
	}
	library, ok := args[0].(*content.Library)
	if !ok || library == nil {
		return fmt.Errorf("audio service: first arg must be a *content.Library")
	}
	s.library = library

	s.backend = "speaker"
	if len(args) > 1 {
		if backend, ok := args[1].(string); ok {
			s.backend = backend
		}
	}
	return nil
}

// Start implements service.Service
// Opens the selected backend; a speaker failure degrades to the null
// backend so the caller keeps a working Manager either way
func (s *Service) Start() error {
	if s.library == nil {
		return fmt.Errorf("audio service not initialized")
	}

	if s.backend == "null" {
		s.manager = NewNullManager(s.library.DefaultProject())
		return nil
	}

	manager, err := NewSpeakerManager(s.library)
	if err != nil {
		log.WithComponent("audio").Warn().
			Err(err).
			Msg("speaker unavailable; continuing without audio output")
		s.degraded.Store(true)
		s.manager = NewNullManager(s.library.DefaultProject())
		return nil
	}
	s.manager = manager
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.manager != nil {
		s.manager.Close()
		s.manager = nil
	}
	return nil
}

// IsDegraded reports whether the speaker backend failed and the null
// backend took its place
func (s *Service) IsDegraded() bool {
	return s.degraded.Load()
}

// Manager returns the active backend (nil before Start)
func (s *Service) Manager() Manager {
	return s.manager
}
