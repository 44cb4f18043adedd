// internal/adapters/memory/request_repository.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// RequestRepository provides in-memory request storage. Stored requests are
// cloned on the way in and out so callers never share ledger slices.
type RequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.Request
	rows     *KeyedMutex
}

// Verify interface compliance
var _ ports.RequestRepository = (*RequestRepository)(nil)

// NewRequestRepository creates a new in-memory request repository
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		requests: make(map[uuid.UUID]*domain.Request),
		rows:     NewKeyedMutex(),
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return fmt.Errorf("request %s already exists", req.ID)
	}
	if req.Version == 0 {
		req.Version = 1
	}
	r.requests[req.ID] = req.Clone()
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return req.Clone(), nil
}

// Update holds the row mutex of id for the whole read-modify-write.
func (r *RequestRepository) Update(ctx context.Context, id uuid.UUID, fn ports.RequestMutation) (*domain.Request, error) {
	unlock, err := r.rows.LockContext(ctx, id.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrRequestNotFound)
	}

	if err := fn(current); err != nil {
		return nil, err
	}
	current.Version++

	r.mu.Lock()
	r.requests[id] = current.Clone()
	r.mu.Unlock()

	return current, nil
}

func (r *RequestRepository) List(ctx context.Context, params ports.RequestListParams) (*ports.RequestListResult, error) {
	params.Normalize()

	r.mu.RLock()
	matched := make([]*domain.Request, 0)
	for _, req := range r.requests {
		if params.UserID != "" && req.UserID != params.UserID {
			continue
		}
		if params.Status != "" && req.Status != params.Status {
			continue
		}
		if params.AssignedTo != "" && req.AssignedTo != params.AssignedTo {
			continue
		}
		matched = append(matched, req.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	return &ports.RequestListResult{
		Items:      matched[start:end],
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: int64(total),
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

func (r *RequestRepository) ListActive(ctx context.Context, items []string) ([]*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Request, 0)
	for _, req := range r.requests {
		if !req.Status.IsActive() {
			continue
		}
		if len(items) > 0 && !borrowsAny(req, items) {
			continue
		}
		out = append(out, req.Clone())
	}
	return out, nil
}

func (r *RequestRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Request, 0)
	for _, req := range r.requests {
		if req.IsOverdue(asOf) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReturnDate.Before(out[j].ReturnDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.RequestStatus]int64)
	for _, req := range r.requests {
		counts[req.Status]++
	}
	return counts, nil
}

func borrowsAny(req *domain.Request, items []string) bool {
	for _, name := range items {
		if _, ok := req.BorrowLineFor(name); ok {
			return true
		}
	}
	return false
}
