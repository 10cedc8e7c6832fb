// Package sandbox is the reference isolate runtime for tracechain: a
// manager that owns isolate lifetimes, isolates that maintain a guest
// call-stack ledger and raise guest exceptions, and the boundary
// plumbing that feeds crossings into the trace chain.
//
// Engines embedding a real guest runtime implement the same surface;
// this package keeps the contract honest and gives tests, examples,
// and the demo command something to run.
package sandbox

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Manager creates, tracks, and disposes isolates. It is the lifetime
// authority: disposing an isolate notifies the trace-chain registry,
// so captures taken inside the isolate render empty afterwards.
type Manager struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	isolates map[string]*Isolate
}

// NewManager returns a Manager logging through log. A nil log uses the
// logrus standard logger.
func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		log:      log,
		isolates: make(map[string]*Isolate),
	}
}

// Create allocates and registers an isolate under name. Names are
// unique per manager.
func (m *Manager) Create(name string) (*Isolate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.isolates[name]; ok {
		return nil, errors.Errorf("sandbox: isolate %q already exists", name)
	}
	iso := &Isolate{name: name, log: m.log.WithField("isolate", name)}
	m.isolates[name] = iso
	iso.log.Debug("isolate created")
	return iso, nil
}

// Get returns the isolate registered under name, or nil if there is
// none.
func (m *Manager) Get(name string) *Isolate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isolates[name]
}

// Dispose destroys the isolate registered under name and unregisters
// it. Traces captured inside it render empty from this point on.
func (m *Manager) Dispose(name string) error {
	m.mu.Lock()
	iso, ok := m.isolates[name]
	delete(m.isolates, name)
	m.mu.Unlock()
	if !ok {
		return errors.Errorf("sandbox: no isolate %q", name)
	}
	iso.dispose()
	return nil
}

// Shutdown disposes every isolate the manager still tracks.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	isolates := m.isolates
	m.isolates = make(map[string]*Isolate)
	m.mu.Unlock()
	for _, iso := range isolates {
		iso.dispose()
	}
	m.log.Debug("sandbox shut down")
}
