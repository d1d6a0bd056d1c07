package repository

import (
	"context"
	"sort"
	"sync"

	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/google/uuid"
)

// MemoryDeskStore keeps desks in a mutex-guarded map. It backs tests and
// the "memory" backend key; listing order is the sorted id set, matching
// the watermark cursors of the other drivers.
type MemoryDeskStore struct {
	mu    sync.RWMutex
	desks map[string]models.Desk
}

func NewMemoryDeskStore() *MemoryDeskStore {
	return &MemoryDeskStore{desks: make(map[string]models.Desk)}
}

func (r *MemoryDeskStore) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	afterID, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}

	r.mu.RLock()
	ids := make([]string, 0, len(r.desks))
	for id := range r.desks {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var desks []models.Desk
	for _, id := range ids {
		desks = append(desks, r.desks[id])
		if len(desks) == pageSize+1 {
			break
		}
	}
	r.mu.RUnlock()

	var next string
	if len(desks) > pageSize {
		desks = desks[:pageSize]
		next = encodeCursor(desks[len(desks)-1].ID)
	}
	return desks, next, nil
}

func (r *MemoryDeskStore) Create(ctx context.Context, desk *models.Desk) error {
	if desk.ID == "" {
		desk.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.desks[desk.ID]; exists {
		return domain.NewValidationError("id", "already exists")
	}
	r.desks[desk.ID] = *desk
	return nil
}

func (r *MemoryDeskStore) Read(ctx context.Context, id string) (*models.Desk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desk, ok := r.desks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &desk, nil
}

func (r *MemoryDeskStore) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.desks[id]; !ok {
		return nil, domain.ErrNotFound
	}
	desk.ID = id
	r.desks[id] = desk
	return &desk, nil
}

func (r *MemoryDeskStore) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.desks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.desks, id)
	return nil
}

func (r *MemoryDeskStore) Close() error {
	return nil
}
