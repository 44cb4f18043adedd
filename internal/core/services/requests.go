// internal/core/services/requests.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// RequestService coordinates request lifecycle transitions and ledger updates.
type RequestService struct {
	requests  ports.RequestRepository
	inventory ports.InventoryRepository
	locker    ports.RequestLocker
	notifier  ports.Notifier
	cache     ports.CacheRepository
	cacheTTL  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Statically assert that *RequestService implements the RequestService interface.
var _ ports.RequestService = (*RequestService)(nil)

// RequestServiceConfig groups the optional collaborators of RequestService.
// Any of them may be nil.
type RequestServiceConfig struct {
	Locker   ports.RequestLocker
	Notifier ports.Notifier
	Cache    ports.CacheRepository
	CacheTTL time.Duration
	Clock    func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(
	requests ports.RequestRepository,
	inventory ports.InventoryRepository,
	cfg RequestServiceConfig,
	logger *slog.Logger,
) *RequestService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &RequestService{
		requests:  requests,
		inventory: inventory,
		locker:    cfg.Locker,
		notifier:  cfg.Notifier,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		now:       cfg.Clock,
		logger:    logger.With(slog.String("service", "requests")),
	}
}

// Create validates a new logistics request and admits it against current
// availability. Admission is best-effort: two concurrent creations may both
// pass, and handler approval is the second check.
func (s *RequestService) Create(ctx context.Context, actor domain.Actor, in domain.NewRequestInput) (*domain.Request, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if in.UserID == "" && !actor.IsHandler() {
		in.UserID = actor.ID
	}
	if !actor.IsHandler() && in.UserID != actor.ID {
		return nil, fmt.Errorf("%w: requesters can only create requests for themselves", domain.ErrForbidden)
	}

	req, err := domain.NewRequest(in, s.now())
	if err != nil {
		return nil, err
	}

	names := req.ItemNames()
	items, err := s.inventory.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory items: %w", err)
	}
	byName := make(map[string]*domain.InventoryItem, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}

	active, err := s.requests.ListActive(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load active requests: %w", err)
	}

	for _, line := range req.Items {
		item, ok := byName[line.Item]
		if !ok {
			return nil, fmt.Errorf("%q: %w", line.Item, domain.ErrItemNotFound)
		}
		available, err := domain.AvailableQuantity(item, active)
		if err != nil {
			s.logger.ErrorContext(ctx, "availability computation failed",
				slog.String("item", line.Item),
				slog.String("error", err.Error()))
			return nil, err
		}
		if line.Quantity > available {
			return nil, fmt.Errorf("%q: requested %d, available %d: %w",
				line.Item, line.Quantity, max(available, 0), domain.ErrInsufficientStock)
		}
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "created request",
		slog.String("request_id", req.ID.String()),
		slog.String("user_id", req.UserID),
		slog.Int("lines", len(req.Items)))
	return req, nil
}

// Get returns a request visible to actor.
func (s *RequestService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrRequestNotFound)
	}
	if !req.CanAccess(actor) {
		return nil, domain.ErrForbidden
	}

	if err := req.CheckIntegrity(); err != nil {
		s.logger.ErrorContext(ctx, "request failed integrity check",
			slog.String("request_id", id.String()),
			slog.String("error", err.Error()))
	}
	return req, nil
}

// List returns a page of requests. Requesters only ever see their own.
func (s *RequestService) List(ctx context.Context, actor domain.Actor, params ports.RequestListParams) (*ports.RequestListResult, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.IsHandler() {
		params.UserID = actor.ID
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, domain.Validationf("unknown status %q", params.Status)
	}
	params.Normalize()

	result, err := s.requests.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return result, nil
}

// Approve moves a pending request to in progress.
func (s *RequestService) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, assignee string) (*domain.Request, error) {
	req, err := s.mutate(ctx, actor, id, "approve", func(req *domain.Request, at time.Time) error {
		return req.Approve(actor, assignee, at)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.notify(ctx, domain.ApprovedNotification(req))
	return req, nil
}

// Return applies a batch of returns atomically.
func (s *RequestService) Return(ctx context.Context, actor domain.Actor, id uuid.UUID, returns []domain.ReturnInput) (*ports.ReturnResult, error) {
	var outcomes []domain.ReturnOutcome
	req, err := s.mutate(ctx, actor, id, "return", func(req *domain.Request, at time.Time) error {
		var err error
		outcomes, err = req.ApplyReturns(actor, returns, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterReturn(ctx, req, outcomes)
	return &ports.ReturnResult{Request: req, Outcomes: outcomes}, nil
}

// ReturnAllRemaining returns everything still outstanding of one item.
func (s *RequestService) ReturnAllRemaining(ctx context.Context, actor domain.Actor, id uuid.UUID, item string) (*ports.ReturnResult, error) {
	var outcome domain.ReturnOutcome
	req, err := s.mutate(ctx, actor, id, "return_remaining", func(req *domain.Request, at time.Time) error {
		var err error
		outcome, err = req.ReturnAllRemaining(actor, item, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	outcomes := []domain.ReturnOutcome{outcome}
	s.afterReturn(ctx, req, outcomes)
	return &ports.ReturnResult{Request: req, Outcomes: outcomes}, nil
}

func (s *RequestService) afterReturn(ctx context.Context, req *domain.Request, outcomes []domain.ReturnOutcome) {
	s.invalidate(ctx)

	settled := false
	for _, o := range outcomes {
		settled = settled || o.Settled
	}
	s.logger.InfoContext(ctx, "recorded returns",
		slog.String("request_id", req.ID.String()),
		slog.Int("lines", len(outcomes)),
		slog.Bool("settled", settled))

	s.notify(ctx, domain.ReturnRecordedNotification(req, outcomes))
}

// ConfirmReturn closes a fully returned request.
func (s *RequestService) ConfirmReturn(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error) {
	req, err := s.mutate(ctx, actor, id, "confirm", func(req *domain.Request, at time.Time) error {
		return req.ConfirmReturn(actor, at)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.notify(ctx, domain.ClosedNotification(req))
	return req, nil
}

// Cancel voids a pending or in-progress request.
func (s *RequestService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error) {
	var outstanding map[string]int
	req, err := s.mutate(ctx, actor, id, "cancel", func(req *domain.Request, at time.Time) error {
		var err error
		outstanding, err = req.Cancel(actor, reason, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "cancelled request",
		slog.String("request_id", id.String()),
		slog.Any("outstanding", outstanding))
	s.notify(ctx, domain.CancelledNotification(req))
	return req, nil
}

// PostMessage appends a text message to the audit trail.
func (s *RequestService) PostMessage(ctx context.Context, actor domain.Actor, id uuid.UUID, text string) (*domain.Request, error) {
	req, err := s.mutate(ctx, actor, id, "message", func(req *domain.Request, at time.Time) error {
		_, err := req.PostMessage(actor, text, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	if actor.ID != req.UserID {
		s.notify(ctx, domain.Notification{
			UserID:      req.UserID,
			RequestID:   req.ID,
			Title:       "New message",
			Description: fmt.Sprintf("%s commented on %q.", actor.ID, req.Title),
		})
	}
	return req, nil
}

// Summary aggregates request counts and outstanding units for the dashboard.
func (s *RequestService) Summary(ctx context.Context) (*ports.RequestSummary, error) {
	if s.cache == nil {
		return s.computeSummary(ctx)
	}

	var (
		summary  ports.RequestSummary
		fetchErr error
	)
	err := s.cache.GetOrSet(ctx, dashboardCacheKey, &summary, func() (interface{}, error) {
		fresh, err := s.computeSummary(ctx)
		fetchErr = err
		return fresh, err
	}, s.cacheTTL)
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard cache unavailable, computing directly",
			slog.String("error", err.Error()))
		return s.computeSummary(ctx)
	}
	return &summary, nil
}

func (s *RequestService) computeSummary(ctx context.Context) (*ports.RequestSummary, error) {
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	active, err := s.requests.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load active requests: %w", err)
	}

	now := s.now()
	summary := &ports.RequestSummary{
		ByStatus:    counts,
		Outstanding: make(map[string]int),
	}
	for _, req := range active {
		outstanding, err := req.Outstanding()
		if err != nil {
			return nil, err
		}
		for item, qty := range outstanding {
			if qty > 0 {
				summary.Outstanding[item] += qty
			}
		}
		if req.IsOverdue(now) {
			summary.Overdue++
		}
	}
	return summary, nil
}

// mutate runs fn against the stored request under the distributed request
// lock and the repository's per-request exclusion.
func (s *RequestService) mutate(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	op string,
	fn func(req *domain.Request, at time.Time) error,
) (*domain.Request, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Request
	err := s.withLock(ctx, id, func(ctx context.Context) error {
		var err error
		updated, err = s.requests.Update(ctx, id, func(req *domain.Request) error {
			if !req.CanAccess(actor) {
				return domain.ErrForbidden
			}
			return fn(req, s.now())
		})
		return err
	})
	if err != nil {
		s.logFailure(ctx, op, id, actor, err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "request updated",
		slog.String("op", op),
		slog.String("request_id", id.String()),
		slog.Int64("version", updated.Version))
	return updated, nil
}

func (s *RequestService) withLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	return s.locker.WithLock(ctx, "request:"+id.String(), fn)
}

func (s *RequestService) logFailure(ctx context.Context, op string, id uuid.UUID, actor domain.Actor, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", id.String()),
		slog.String("actor", actor.ID),
		slog.String("code", domain.Code(err)),
		slog.String("error", err.Error()),
	}

	switch domain.KindOf(err) {
	case domain.KindIntegrity:
		s.logger.ErrorContext(ctx, "ledger integrity violation", attrs...)
	case domain.KindInternal:
		s.logger.ErrorContext(ctx, "request update failed", attrs...)
	default:
		var lineErr *domain.ReturnLineError
		if errors.As(err, &lineErr) {
			attrs = append(attrs, slog.Int("line", lineErr.Index))
		}
		s.logger.InfoContext(ctx, "request update rejected", attrs...)
	}
}

// notify hands n to the notifier. Failures are logged and never propagate.
func (s *RequestService) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "failed to dispatch notification",
			slog.String("request_id", n.RequestID.String()),
			slog.String("user_id", n.UserID),
			slog.String("error", err.Error()))
	}
}

func (s *RequestService) invalidate(ctx context.Context) {
	invalidateReadModels(ctx, s.cache, s.logger)
}
