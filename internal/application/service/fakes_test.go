package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"breakreminder/internal/domain/entity"
)

type memoryRepo struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	setKeys []string

	// When gateKey is set, Get for that key signals reached and then blocks
	// until release is closed.
	gateKey string
	reached chan struct{}
	release chan struct{}
}

func newMemoryRepo(kv ...string) *memoryRepo {
	r := &memoryRepo{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.values[kv[i]] = kv[i+1]
	}
	return r
}

func (r *memoryRepo) gate(key string) {
	r.gateKey = key
	r.reached = make(chan struct{})
	r.release = make(chan struct{})
}

func (r *memoryRepo) Get(_ context.Context, key string) (string, bool, error) {
	if r.gateKey != "" && key == r.gateKey {
		close(r.reached)
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", false, r.getErr
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *memoryRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.values[key] = value
	r.setKeys = append(r.setKeys, key)
	return nil
}

func (r *memoryRepo) value(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key]
}

func (r *memoryRepo) put(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

type display struct {
	next time.Time
	cfg  entity.Configuration
}

type recordingPresenter struct {
	displays chan display
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{displays: make(chan display, 64)}
}

func (p *recordingPresenter) Display(next time.Time, cfg entity.Configuration) {
	p.displays <- display{next: next, cfg: cfg}
}

type recordingSink struct {
	alerts chan entity.Alert

	mu    sync.Mutex
	err   error
	panic bool
	hold  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{alerts: make(chan entity.Alert, 64)}
}

func (s *recordingSink) Fire(_ context.Context, a entity.Alert) error {
	s.alerts <- a
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panic {
		panic("sink exploded")
	}
	return s.err
}

func (s *recordingSink) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *recordingSink) explode() {
	s.mu.Lock()
	s.panic = true
	s.mu.Unlock()
}

// block makes Fire ignore ctx and hang until the returned func is called.
func (s *recordingSink) block() (unblock func()) {
	hold := make(chan struct{})
	s.mu.Lock()
	s.hold = hold
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(hold) }) }
}

var errSinkDown = errors.New("sink down")
