package testutil

import (
	"context"
	"sync"

	"github.com/billrun/billrun/internal/domain/template"
	ierr "github.com/billrun/billrun/internal/errors"
)

type InMemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

func NewInMemoryTemplateStore() *InMemoryTemplateStore {
	return &InMemoryTemplateStore{
		templates: make(map[string]*template.Template),
	}
}

func (s *InMemoryTemplateStore) Create(ctx context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[t.ID]; exists {
		return ierr.NewErrorf("template %s already exists", t.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.templates[t.ID] = t
	return nil
}

func (s *InMemoryTemplateStore) GetActiveByType(ctx context.Context, tenantID, templateType string) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.templates {
		if t.TenantID == tenantID && t.Type == templateType && t.Active {
			return t, nil
		}
	}
	return nil, ierr.NewErrorf("no active %s template for tenant %s", templateType, tenantID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTemplateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = make(map[string]*template.Template)
}
