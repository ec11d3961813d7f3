package batch

import (
	"errors"
	"sync"

	"attendex/event-portal-backend/internal/certificates/template"
)

// ErrStageHeld is returned when a batch run tries to capture the rendering
// stage while another run owns it.
var ErrStageHeld = errors.New("rendering stage is held by another batch run")

// Stage is the single "currently-rendered document" slot shared between
// the live editor and batch runs. A batch run owns it exclusively from
// capture until restore; the mutex keeps the contract intact on
// preemptive-threading hosts even though the editor runtime is
// cooperatively scheduled.
type Stage struct {
	mu      sync.Mutex
	current template.Document
	held    bool
}

// NewStage creates a stage presenting the given document.
func NewStage(doc template.Document) *Stage {
	return &Stage{current: doc.Clone()}
}

// Acquire takes exclusive ownership of the stage. The returned release
// must be called (normally deferred) once the run has restored the stage.
func (s *Stage) Acquire() (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil, ErrStageHeld
	}
	s.held = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.held = false
			s.mu.Unlock()
		})
	}, nil
}

// Present installs doc as the currently-rendered document.
func (s *Stage) Present(doc template.Document) {
	s.mu.Lock()
	s.current = doc.Clone()
	s.mu.Unlock()
}

// Current returns a snapshot of the currently-rendered document.
func (s *Stage) Current() template.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}
