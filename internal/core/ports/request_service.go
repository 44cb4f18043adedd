// internal/core/ports/request_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// RequestService drives the request lifecycle and the return ledger.
type RequestService interface {
	Create(ctx context.Context, actor domain.Actor, in domain.NewRequestInput) (*domain.Request, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error)
	List(ctx context.Context, actor domain.Actor, params RequestListParams) (*RequestListResult, error)
	Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, assignee string) (*domain.Request, error)
	Return(ctx context.Context, actor domain.Actor, id uuid.UUID, returns []domain.ReturnInput) (*ReturnResult, error)
	ReturnAllRemaining(ctx context.Context, actor domain.Actor, id uuid.UUID, item string) (*ReturnResult, error)
	ConfirmReturn(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error)
	PostMessage(ctx context.Context, actor domain.Actor, id uuid.UUID, text string) (*domain.Request, error)
	Summary(ctx context.Context) (*RequestSummary, error)
}

// ReturnResult is the updated request plus one outcome per accepted line.
type ReturnResult struct {
	Request  *domain.Request        `json:"request"`
	Outcomes []domain.ReturnOutcome `json:"outcomes"`
}

// RequestSummary backs the dashboard.
type RequestSummary struct {
	ByStatus    map[domain.RequestStatus]int64 `json:"byStatus"`
	Outstanding map[string]int                 `json:"outstanding"`
	Overdue     int                            `json:"overdue"`
}
