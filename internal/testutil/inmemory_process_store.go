package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/billrun/billrun/internal/domain/process"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/types"
)

type InMemoryProcessStore struct {
	mu        sync.RWMutex
	processes map[string]*process.Process
}

func NewInMemoryProcessStore() *InMemoryProcessStore {
	return &InMemoryProcessStore{
		processes: make(map[string]*process.Process),
	}
}

func (s *InMemoryProcessStore) Create(ctx context.Context, p *process.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.processes[p.ID]; exists {
		return ierr.NewErrorf("process %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.processes[p.ID] = p
	return nil
}

func (s *InMemoryProcessStore) Get(ctx context.Context, id string) (*process.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.processes[id]; exists {
		return p, nil
	}
	return nil, ierr.NewErrorf("process %s not found", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryProcessStore) Complete(ctx context.Context, id string, status types.ProcessStatus, createdCount int, notes string) error {
	if !status.IsTerminal() {
		return ierr.NewErrorf("process status %s is not terminal", status).
			Mark(ierr.ErrInvalidOperation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.processes[id]
	if !exists {
		return ierr.NewErrorf("process %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	if p.ProcessStatus != types.ProcessStatusInProgress {
		return ierr.NewErrorf("process %s is not in progress", id).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	p.ProcessStatus = status
	p.CreatedCount = createdCount
	p.Notes = &notes
	p.FinishedAt = &now
	return nil
}

// All returns every stored run, for assertions on runs whose id the caller
// never saw
func (s *InMemoryProcessStore) All() []*process.Process {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*process.Process, 0, len(s.processes))
	for _, p := range s.processes {
		runs = append(runs, p)
	}
	return runs
}

func (s *InMemoryProcessStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes = make(map[string]*process.Process)
}
