// internal/core/domain/lifecycle.go
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Approve moves a pending request to in progress and assigns it.
func (r *Request) Approve(handler Actor, assignee string, at time.Time) error {
	if !handler.IsHandler() {
		return fmt.Errorf("%w: only handlers can approve requests", ErrForbidden)
	}
	if r.Status.IsClosed() {
		return fmt.Errorf("approve %s request: %w", r.Status, ErrRequestClosed)
	}
	if r.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusInProgress)
	}

	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		assignee = handler.ID
	}

	r.Status = StatusInProgress
	r.AssignedTo = assignee
	r.appendSystemMessage(at, "Request approved by %s and assigned to %s", handler.ID, assignee)
	return nil
}

// ConfirmReturn closes an in-progress request whose items are all returned.
// Returns never close a request on their own.
func (r *Request) ConfirmReturn(actor Actor, at time.Time) error {
	if r.Status.IsClosed() {
		return fmt.Errorf("confirm %s request: %w", r.Status, ErrRequestClosed)
	}
	if r.Status == StatusPending {
		return ErrNotApproved
	}

	full, err := r.FullyReturned()
	if err != nil {
		return err
	}
	if full != r.IsReturned {
		return fmt.Errorf("%w: request %s isReturned=%t but ledgers say %t",
			ErrIntegrityViolation, r.ID, r.IsReturned, full)
	}
	if !full {
		return ErrNotFullyReturned
	}

	r.Status = StatusDone
	closed := at
	r.ClosedAt = &closed
	r.appendSystemMessage(at, "All items returned; request closed by %s", actor.ID)
	return nil
}

// Cancel voids a pending or in-progress request and returns the quantities that
// were still outstanding. Those quantities stop counting against availability.
// A settled request can only be closed through ConfirmReturn.
func (r *Request) Cancel(actor Actor, reason string, at time.Time) (map[string]int, error) {
	if r.Status.IsClosed() {
		return nil, fmt.Errorf("cancel %s request: %w", r.Status, ErrRequestClosed)
	}
	if r.IsReturned {
		return nil, fmt.Errorf("%w: request %s is fully returned and awaits confirmation",
			ErrInvalidTransition, r.ID)
	}

	outstanding, err := r.Outstanding()
	if err != nil {
		return nil, err
	}

	wasInProgress := r.Status == StatusInProgress
	r.Status = StatusCancelled
	closed := at
	r.ClosedAt = &closed

	msg := fmt.Sprintf("Request cancelled by %s", actor.ID)
	if reason = strings.TrimSpace(reason); reason != "" {
		msg += ": " + reason
	}
	if wasInProgress {
		if open := formatOutstanding(outstanding); open != "" {
			msg += ". Outstanding at cancellation: " + open
		}
	}
	r.appendSystemMessage(at, "%s", msg)

	return outstanding, nil
}

func (r *Request) checkAcceptsReturns() error {
	switch r.Status {
	case StatusInProgress:
		return nil
	case StatusPending:
		return ErrNotApproved
	default:
		return fmt.Errorf("return against %s request: %w", r.Status, ErrRequestClosed)
	}
}

func formatOutstanding(outstanding map[string]int) string {
	names := make([]string, 0, len(outstanding))
	for name, qty := range outstanding {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s x%d", name, outstanding[name]))
	}
	return strings.Join(parts, ", ")
}
