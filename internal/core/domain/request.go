// internal/core/domain/request.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in progress"
	StatusDone       RequestStatus = "done"
	StatusCancelled  RequestStatus = "cancelled"
)

// IsActive reports whether a request in this status still commits inventory.
func (s RequestStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsClosed reports whether the status is terminal.
func (s RequestStatus) IsClosed() bool {
	return s == StatusDone || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s.IsActive() || s.IsClosed()
}

// Priority of a request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// RequestType distinguishes request variants. Only logistics requests carry ledgers.
type RequestType string

const RequestTypeLogistics RequestType = "logistics"

// Role of a caller.
type Role string

const (
	RoleRequester Role = "requester"
	RoleHandler   Role = "handler"
)

// Actor identifies the caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsHandler reports whether the actor acts as a handler.
func (a Actor) IsHandler() bool {
	return a.Role == RoleHandler
}

// Validate checks that the actor is identified and has a known role.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: caller identity is required", ErrForbidden)
	}
	if a.Role != RoleRequester && a.Role != RoleHandler {
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, a.Role)
	}
	return nil
}

// SystemSenderID is the sender of automatically generated messages.
const SystemSenderID = "system"

// MessageType distinguishes user-authored from generated messages.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
)

const MaxMessageLength = 2000

// Message is one entry in a request's audit trail.
type Message struct {
	SenderID    string      `json:"senderId"`
	MessageType MessageType `json:"messageType"`
	Message     string      `json:"message"`
	Timestamp   time.Time   `json:"timestamp"`
}

// BorrowLine is a quantity of one item committed at creation time. Immutable.
type BorrowLine struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// ReturnLine is one discrete return transaction. Append-only.
type ReturnLine struct {
	Item       string    `json:"item"`
	Quantity   int       `json:"quantity"`
	ReturnedBy string    `json:"returnedBy"`
	ReturnedAt time.Time `json:"returnedAt"`
}

// Request is the aggregate root owning its borrow and return ledgers.
type Request struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"userId"`
	Type          RequestType   `json:"type"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Status        RequestStatus `json:"status"`
	Priority      Priority      `json:"priority"`
	AssignedTo    string        `json:"assignedTo,omitempty"`
	Location      string        `json:"location"`
	EventDate     time.Time     `json:"eventDate"`
	ReturnDate    time.Time     `json:"returnDate"`
	Items         []BorrowLine  `json:"items"`
	ReturnedItems []ReturnLine  `json:"returnedItems"`
	IsReturned    bool          `json:"isReturned"`
	Messages      []Message     `json:"messages"`
	Version       int64         `json:"version"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	ClosedAt      *time.Time    `json:"closedAt,omitempty"`
}

// NewRequestInput carries the fields a requester supplies on creation.
type NewRequestInput struct {
	UserID      string
	Title       string
	Description string
	Priority    Priority
	Location    string
	EventDate   time.Time
	ReturnDate  time.Time
	Items       []BorrowLine
}

// NewRequest validates the input and builds a pending logistics request.
func NewRequest(in NewRequestInput, at time.Time) (*Request, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, Validationf("userId is required")
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, Validationf("location is required")
	}
	if in.EventDate.IsZero() {
		return nil, Validationf("eventDate is required")
	}
	if in.ReturnDate.IsZero() {
		return nil, Validationf("returnDate is required")
	}
	if in.ReturnDate.Before(in.EventDate) {
		return nil, Validationf("returnDate cannot be before eventDate")
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, Validationf("unknown priority %q", priority)
	}

	items, err := normalizeBorrowLines(in.Items)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Logistics request"
	}

	req := &Request{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          RequestTypeLogistics,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Status:        StatusPending,
		Priority:      priority,
		Location:      location,
		EventDate:     in.EventDate.UTC(),
		ReturnDate:    in.ReturnDate.UTC(),
		Items:         items,
		ReturnedItems: []ReturnLine{},
		Messages:      []Message{},
		Version:       1,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	req.appendSystemMessage(at, "Request created by %s for %s", userID, formatLines(items))

	return req, nil
}

func normalizeBorrowLines(lines []BorrowLine) ([]BorrowLine, error) {
	if len(lines) == 0 {
		return nil, Validationf("at least one item is required")
	}

	seen := make(map[string]struct{}, len(lines))
	out := make([]BorrowLine, 0, len(lines))
	for i, line := range lines {
		name := NormalizeItemName(line.Item)
		if name == "" {
			return nil, Validationf("items[%d].item is required", i)
		}
		if line.Quantity <= 0 || line.Quantity > MaxQuantity {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("items[%d] %q: %w", i, name, ErrDuplicateItem)
		}
		seen[name] = struct{}{}
		out = append(out, BorrowLine{Item: name, Quantity: line.Quantity})
	}
	return out, nil
}

// BorrowLineFor returns the borrow line of item, if the request borrowed it.
func (r *Request) BorrowLineFor(item string) (BorrowLine, bool) {
	item = NormalizeItemName(item)
	for _, line := range r.Items {
		if line.Item == item {
			return line, true
		}
	}
	return BorrowLine{}, false
}

// ItemNames returns the names of all borrowed items in ledger order.
func (r *Request) ItemNames() []string {
	names := make([]string, 0, len(r.Items))
	for _, line := range r.Items {
		names = append(names, line.Item)
	}
	return names
}

// IsOwnedBy reports whether actor created the request.
func (r *Request) IsOwnedBy(actor Actor) bool {
	return r.UserID == actor.ID
}

// CanAccess reports whether actor may read or act on the request.
func (r *Request) CanAccess(actor Actor) bool {
	return actor.IsHandler() || r.IsOwnedBy(actor)
}

// IsOverdue reports whether the request is still out past its return date.
func (r *Request) IsOverdue(asOf time.Time) bool {
	return r.Status == StatusInProgress && !r.IsReturned && r.ReturnDate.Before(asOf)
}

// PostMessage appends a user-authored text message.
func (r *Request) PostMessage(actor Actor, text string, at time.Time) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, Validationf("message is required")
	}
	if len(text) > MaxMessageLength {
		return Message{}, Validationf("message must be at most %d characters", MaxMessageLength)
	}

	msg := Message{
		SenderID:    actor.ID,
		MessageType: MessageText,
		Message:     text,
		Timestamp:   at,
	}
	r.Messages = append(r.Messages, msg)
	r.UpdatedAt = at
	return msg, nil
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	c := *r
	c.Items = append([]BorrowLine(nil), r.Items...)
	c.ReturnedItems = append([]ReturnLine{}, r.ReturnedItems...)
	c.Messages = append([]Message{}, r.Messages...)
	if r.ClosedAt != nil {
		t := *r.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

func (r *Request) appendSystemMessage(at time.Time, format string, args ...any) {
	r.Messages = append(r.Messages, Message{
		SenderID:    SystemSenderID,
		MessageType: MessageSystem,
		Message:     fmt.Sprintf(format, args...),
		Timestamp:   at,
	})
	r.UpdatedAt = at
}

func formatLines(lines []BorrowLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Item, l.Quantity))
	}
	return strings.Join(parts, ", ")
}
