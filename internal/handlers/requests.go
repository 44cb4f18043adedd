// internal/handlers/requests.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// RequestHandler handles logistics request HTTP requests
type RequestHandler struct {
	service ports.RequestService
	logger  *slog.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(service ports.RequestService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "requests")),
	}
}

// CreateRequest handles POST /api/v1/requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var body CreateRequestBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}

	req, err := h.service.Create(r.Context(), actor, body.ToDomain(actor))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "request created",
		slog.String("request_id", req.ID.String()),
		slog.String("user_id", req.UserID))

	respondJSON(w, h.logger, http.StatusCreated, req)
}

// ListRequests handles GET /api/v1/requests
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	params, err := parseRequestListParams(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.service.List(r.Context(), actor, params)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetRequest handles GET /api/v1/requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, req)
}

// ApproveRequest handles POST /api/v1/requests/{id}/approve
func (h *RequestHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var body ApproveRequestBody
	if r.ContentLength != 0 {
		if fields, err := decodeBody(w, r, &body); err != nil {
			respondDecodeError(w, r, h.logger, fields, err)
			return
		}
	}

	req, err := h.service.Approve(r.Context(), actor, id, body.HandlerID)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, req)
}

// ReturnItems handles PATCH /api/v1/requests/{id}/return
func (h *RequestHandler) ReturnItems(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var body ReturnItemsBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}

	result, err := h.service.Return(r.Context(), actor, id, body.ToDomain())
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ReturnRemaining handles PATCH /api/v1/requests/{id}/return/remaining
func (h *RequestHandler) ReturnRemaining(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var body ReturnRemainingBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}

	result, err := h.service.ReturnAllRemaining(r.Context(), actor, id, body.Item)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ConfirmReturn handles PATCH /api/v1/requests/{id}/return/confirm
func (h *RequestHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.service.ConfirmReturn(r.Context(), actor, id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, req)
}

// CancelRequest handles POST /api/v1/requests/{id}/cancel
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var body CancelRequestBody
	if r.ContentLength != 0 {
		if fields, err := decodeBody(w, r, &body); err != nil {
			respondDecodeError(w, r, h.logger, fields, err)
			return
		}
	}

	req, err := h.service.Cancel(r.Context(), actor, id, body.Reason)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, req)
}

// PostMessage handles POST /api/v1/requests/{id}/messages
func (h *RequestHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var body PostMessageBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}

	req, err := h.service.PostMessage(r.Context(), actor, id, body.Message)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, req)
}

func (h *RequestHandler) actorAndID(w http.ResponseWriter, r *http.Request) (domain.Actor, uuid.UUID, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return domain.Actor{}, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "ValidationFailed", "Invalid request ID format")
		return domain.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func parseRequestListParams(r *http.Request) (ports.RequestListParams, error) {
	q := r.URL.Query()
	params := ports.RequestListParams{
		UserID:     q.Get("user_id"),
		AssignedTo: q.Get("assigned_to"),
	}

	if s := q.Get("status"); s != "" {
		status := domain.RequestStatus(s)
		if !status.Valid() {
			return params, domain.Validationf("unknown status %q", s)
		}
		params.Status = status
	}

	if p := q.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			return params, domain.Validationf("page must be a positive integer")
		}
		params.Page = page
	}

	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			return params, domain.Validationf("limit must be a positive integer")
		}
		params.PageSize = limit
	}

	params.Normalize()
	return params, nil
}

// Request/Response DTOs

// BorrowLineBody is one requested item.
type BorrowLineBody struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity"`
}

// CreateRequestBody is the body of POST /requests. UserID defaults to the caller.
type CreateRequestBody struct {
	UserID      string           `json:"userId,omitempty"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Priority    string           `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Location    string           `json:"location" validate:"required"`
	EventDate   time.Time        `json:"eventDate" validate:"required"`
	ReturnDate  time.Time        `json:"returnDate" validate:"required"`
	Items       []BorrowLineBody `json:"items" validate:"required,min=1,dive"`
}

// ToDomain converts the body to the service input
func (b *CreateRequestBody) ToDomain(actor domain.Actor) domain.NewRequestInput {
	userID := b.UserID
	if userID == "" {
		userID = actor.ID
	}

	lines := make([]domain.BorrowLine, 0, len(b.Items))
	for _, item := range b.Items {
		lines = append(lines, domain.BorrowLine{Item: item.Item, Quantity: item.Quantity})
	}

	return domain.NewRequestInput{
		UserID:      userID,
		Title:       b.Title,
		Description: b.Description,
		Priority:    domain.Priority(b.Priority),
		Location:    b.Location,
		EventDate:   b.EventDate,
		ReturnDate:  b.ReturnDate,
		Items:       lines,
	}
}

// ApproveRequestBody is the body of POST /requests/{id}/approve.
type ApproveRequestBody struct {
	HandlerID string `json:"handlerId,omitempty"`
}

// ReturnLineBody is one line of a return batch.
type ReturnLineBody struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity"`
}

// ReturnItemsBody is the body of PATCH /requests/{id}/return.
type ReturnItemsBody struct {
	Returns []ReturnLineBody `json:"returns" validate:"required,min=1,dive"`
}

// ToDomain converts the body to return inputs
func (b *ReturnItemsBody) ToDomain() []domain.ReturnInput {
	returns := make([]domain.ReturnInput, 0, len(b.Returns))
	for _, line := range b.Returns {
		returns = append(returns, domain.ReturnInput{Item: line.Item, Quantity: line.Quantity})
	}
	return returns
}

// ReturnRemainingBody is the body of PATCH /requests/{id}/return/remaining.
type ReturnRemainingBody struct {
	Item string `json:"item" validate:"required"`
}

// CancelRequestBody is the body of POST /requests/{id}/cancel.
type CancelRequestBody struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// PostMessageBody is the body of POST /requests/{id}/messages.
type PostMessageBody struct {
	Message string `json:"message" validate:"required,max=2000"`
}
