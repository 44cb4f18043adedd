// internal/adapters/db/request_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

var requestColumns = []string{
	"r.id", "r.user_id", "r.type", "r.title", "r.description", "r.status", "r.priority",
	"r.assigned_to", "r.location", "r.event_date", "r.return_date", "r.is_returned",
	"r.version", "r.created_at", "r.updated_at", "r.closed_at",
}

// querier is satisfied by both *Database and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RequestRepository implements ports.RequestRepository on PostgreSQL. Borrow
// lines, return lines and messages live in child tables; return lines and
// messages are only ever appended.
type RequestRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.RequestRepository = (*RequestRepository)(nil)

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *Database, logger *slog.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "requests")),
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	if req.Version == 0 {
		req.Version = 1
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query, args, err := psql().Insert("requests").
			Columns("id", "user_id", "type", "title", "description", "status", "priority",
				"assigned_to", "location", "event_date", "return_date", "is_returned",
				"version", "created_at", "updated_at", "closed_at").
			Values(req.ID, req.UserID, req.Type, req.Title, req.Description, req.Status, req.Priority,
				req.AssignedTo, req.Location, req.EventDate, req.ReturnDate, req.IsReturned,
				req.Version, req.CreatedAt, req.UpdatedAt, req.ClosedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert request: %w", err)
		}

		if len(req.Items) > 0 {
			ib := psql().Insert("request_borrow_lines").Columns("request_id", "item", "quantity", "position")
			for i, line := range req.Items {
				ib = ib.Values(req.ID, line.Item, line.Quantity, i)
			}
			query, args, err := ib.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build query: %w", err)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to insert borrow lines: %w", err)
			}
		}

		return appendLedgers(ctx, tx, req, 0, 0)
	})
}

func (r *RequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	req, err := findRequest(ctx, r.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return req, nil
}

// Update locks the request row for the duration of the transaction. Only
// return lines and messages appended by fn are inserted.
func (r *RequestRepository) Update(ctx context.Context, id uuid.UUID, fn ports.RequestMutation) (*domain.Request, error) {
	var updated *domain.Request

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		req, err := findRequest(ctx, tx, id, true)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if req == nil {
			return fmt.Errorf("%s: %w", id, domain.ErrRequestNotFound)
		}

		version := req.Version
		returns, messages := len(req.ReturnedItems), len(req.Messages)

		if err := fn(req); err != nil {
			return err
		}
		if len(req.ReturnedItems) < returns || len(req.Messages) < messages {
			return fmt.Errorf("%w: ledger entries removed for %s", domain.ErrIntegrityViolation, id)
		}

		query, args, err := psql().Update("requests").
			Set("status", req.Status).
			Set("assigned_to", req.AssignedTo).
			Set("is_returned", req.IsReturned).
			Set("updated_at", req.UpdatedAt).
			Set("closed_at", req.ClosedAt).
			Set("version", squirrel.Expr("version + 1")).
			Where(squirrel.Eq{"id": id, "version": version}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: %w", id, domain.ErrConcurrentModification)
		}

		if err := appendLedgers(ctx, tx, req, returns, messages); err != nil {
			return err
		}

		req.Version = version + 1
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "request updated",
		slog.String("request_id", id.String()),
		slog.Int64("version", updated.Version))
	return updated, nil
}

func (r *RequestRepository) List(ctx context.Context, params ports.RequestListParams) (*ports.RequestListResult, error) {
	params.Normalize()

	filter := squirrel.And{}
	if params.UserID != "" {
		filter = append(filter, squirrel.Eq{"r.user_id": params.UserID})
	}
	if params.Status != "" {
		filter = append(filter, squirrel.Eq{"r.status": params.Status})
	}
	if params.AssignedTo != "" {
		filter = append(filter, squirrel.Eq{"r.assigned_to": params.AssignedTo})
	}

	countQuery, countArgs, err := psql().Select("COUNT(*)").From("requests r").Where(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	items, err := r.selectRequests(ctx, psql().Select(requestColumns...).
		From("requests r").
		Where(filter).
		OrderBy("r.created_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())))
	if err != nil {
		return nil, err
	}

	return &ports.RequestListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
	}, nil
}

func (r *RequestRepository) ListActive(ctx context.Context, items []string) ([]*domain.Request, error) {
	qb := psql().Select(requestColumns...).
		From("requests r").
		Where(squirrel.Eq{"r.status": []string{string(domain.StatusPending), string(domain.StatusInProgress)}})

	if len(items) > 0 {
		qb = qb.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM request_borrow_lines b WHERE b.request_id = r.id AND b.item = ANY(?))", items))
	}
	return r.selectRequests(ctx, qb.OrderBy("r.created_at"))
}

func (r *RequestRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Request, error) {
	qb := psql().Select(requestColumns...).
		From("requests r").
		Where(squirrel.Eq{"r.status": string(domain.StatusInProgress), "r.is_returned": false}).
		Where(squirrel.Lt{"r.return_date": asOf}).
		OrderBy("r.return_date")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	return r.selectRequests(ctx, qb)
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT status, COUNT(*) FROM requests GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan request count: %w", err)
		}
		counts[domain.RequestStatus(status)] = count
	}
	return counts, rows.Err()
}

func (r *RequestRepository) selectRequests(ctx context.Context, qb squirrel.SelectBuilder) ([]*domain.Request, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	reqs, err := ScanMany(rows, func(row pgx.Rows) (*domain.Request, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan requests: %w", err)
	}
	if err := loadLedgers(ctx, r.db, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func findRequest(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Request, error) {
	qb := psql().Select(requestColumns...).From("requests r").Where(squirrel.Eq{"r.id": id})
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	req, err := scanRequest(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := loadLedgers(ctx, q, []*domain.Request{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// loadLedgers fills borrow lines, return lines and messages for reqs with one
// query per child table.
func loadLedgers(ctx context.Context, q querier, reqs []*domain.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.Request, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		req.Items = []domain.BorrowLine{}
		req.ReturnedItems = []domain.ReturnLine{}
		req.Messages = []domain.Message{}
		byID[req.ID] = req
		ids = append(ids, req.ID)
	}

	rows, err := q.Query(ctx,
		"SELECT request_id, item, quantity FROM request_borrow_lines WHERE request_id = ANY($1) ORDER BY request_id, position", ids)
	if err != nil {
		return fmt.Errorf("failed to load borrow lines: %w", err)
	}
	err = forEachRow(rows, func(row pgx.Rows) error {
		var (
			id   uuid.UUID
			line domain.BorrowLine
		)
		if err := row.Scan(&id, &line.Item, &line.Quantity); err != nil {
			return err
		}
		byID[id].Items = append(byID[id].Items, line)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan borrow lines: %w", err)
	}

	rows, err = q.Query(ctx,
		"SELECT request_id, item, quantity, returned_by, returned_at FROM request_return_lines WHERE request_id = ANY($1) ORDER BY request_id, seq", ids)
	if err != nil {
		return fmt.Errorf("failed to load return lines: %w", err)
	}
	err = forEachRow(rows, func(row pgx.Rows) error {
		var (
			id   uuid.UUID
			line domain.ReturnLine
		)
		if err := row.Scan(&id, &line.Item, &line.Quantity, &line.ReturnedBy, &line.ReturnedAt); err != nil {
			return err
		}
		byID[id].ReturnedItems = append(byID[id].ReturnedItems, line)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan return lines: %w", err)
	}

	rows, err = q.Query(ctx,
		"SELECT request_id, sender_id, message_type, message, created_at FROM request_messages WHERE request_id = ANY($1) ORDER BY request_id, seq", ids)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	err = forEachRow(rows, func(row pgx.Rows) error {
		var (
			id  uuid.UUID
			msg domain.Message
		)
		if err := row.Scan(&id, &msg.SenderID, &msg.MessageType, &msg.Message, &msg.Timestamp); err != nil {
			return err
		}
		byID[id].Messages = append(byID[id].Messages, msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan messages: %w", err)
	}
	return nil
}

// appendLedgers inserts the return lines and messages of req from the given
// offsets onwards.
func appendLedgers(ctx context.Context, q querier, req *domain.Request, returnsFrom, messagesFrom int) error {
	if len(req.ReturnedItems) > returnsFrom {
		ib := psql().Insert("request_return_lines").
			Columns("request_id", "seq", "item", "quantity", "returned_by", "returned_at")
		for i := returnsFrom; i < len(req.ReturnedItems); i++ {
			line := req.ReturnedItems[i]
			ib = ib.Values(req.ID, i, line.Item, line.Quantity, line.ReturnedBy, line.ReturnedAt)
		}
		query, args, err := ib.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to append return lines: %w", err)
		}
	}

	if len(req.Messages) > messagesFrom {
		ib := psql().Insert("request_messages").
			Columns("request_id", "seq", "sender_id", "message_type", "message", "created_at")
		for i := messagesFrom; i < len(req.Messages); i++ {
			msg := req.Messages[i]
			ib = ib.Values(req.ID, i, msg.SenderID, msg.MessageType, msg.Message, msg.Timestamp)
		}
		query, args, err := ib.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to append messages: %w", err)
		}
	}
	return nil
}

func forEachRow(rows pgx.Rows, fn func(pgx.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	req := &domain.Request{}
	err := row.Scan(
		&req.ID, &req.UserID, &req.Type, &req.Title, &req.Description, &req.Status, &req.Priority,
		&req.AssignedTo, &req.Location, &req.EventDate, &req.ReturnDate, &req.IsReturned,
		&req.Version, &req.CreatedAt, &req.UpdatedAt, &req.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
