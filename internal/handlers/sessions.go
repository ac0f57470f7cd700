package handlers

import (
	"sync"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
)

// sessions holds one form controller per open form.
type sessions struct {
	mu    sync.RWMutex
	forms map[string]*form.Controller
	newID func() string
	build func() *form.Controller
}

func newSessions(newID func() string, build func() *form.Controller) *sessions {
	return &sessions{
		forms: map[string]*form.Controller{},
		newID: newID,
		build: build,
	}
}

func (s *sessions) open() (string, *form.Controller) {
	id := s.newID()
	c := s.build()

	s.mu.Lock()
	s.forms[id] = c
	s.mu.Unlock()
	return id, c
}

func (s *sessions) get(id string) (*form.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.forms[id]
	return c, ok
}

func (s *sessions) close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return false
	}
	delete(s.forms, id)
	return true
}
