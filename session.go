package main

import (
	"errors"
	"sync"

	"vmxio.com/sop-cards/course"
)

var ErrGenerationBusy = errors.New("a generation is already running")

// Session is the editor's working copy of the course. Handlers never share a
// Course value with it; every read is a copy and every write replaces it.
type Session struct {
	mu   sync.Mutex
	doc  course.Course
	busy bool
}

func NewSession(c course.Course) *Session {
	return &Session{doc: c.Clone()}
}

func (s *Session) Snapshot() course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Apply runs one editor operation against the current document. The result is
// committed only when op succeeds.
func (s *Session) Apply(op func(course.Course) (course.Course, error)) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := op(s.doc)
	if err != nil {
		return s.doc.Clone(), err
	}
	s.doc = next.Clone()
	return next, nil
}

func (s *Session) Replace(c course.Course) course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = c.Clone()
	return c
}

// BeginGeneration claims the single generation slot. Callers must call
// EndGeneration when it returns nil.
func (s *Session) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrGenerationBusy
	}
	s.busy = true
	return nil
}

func (s *Session) EndGeneration() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
