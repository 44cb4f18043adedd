// internal/core/ports/request_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// RequestMutation mutates a loaded request. Returning an error aborts the
// update and nothing is persisted.
type RequestMutation func(req *domain.Request) error

// RequestRepository persists requests together with their ledgers and
// audit trail.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	// FindByID returns (nil, nil) when the request does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	// Update performs a read-modify-write of one request under per-request
	// mutual exclusion, so two updates of the same id never interleave.
	// It returns domain.ErrRequestNotFound for an unknown id.
	Update(ctx context.Context, id uuid.UUID, fn RequestMutation) (*domain.Request, error)
	List(ctx context.Context, params RequestListParams) (*RequestListResult, error)
	// ListActive returns pending and in-progress requests borrowing any of
	// items, or every active request when items is empty.
	ListActive(ctx context.Context, items []string) ([]*domain.Request, error)
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Request, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
}

// RequestListParams filters and paginates request listings.
type RequestListParams struct {
	UserID     string
	Status     domain.RequestStatus
	AssignedTo string
	Page       int
	PageSize   int
}

// Normalize applies pagination defaults and bounds.
func (p *RequestListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset returns the row offset of the current page.
func (p RequestListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// RequestListResult is one page of requests.
type RequestListResult struct {
	Items      []*domain.Request `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int64             `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
}
