// internal/core/domain/notification.go
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Notification is the payload handed to the external push subsystem.
type Notification struct {
	UserID      string    `json:"userId"`
	RequestID   uuid.UUID `json:"requestId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// ApprovedNotification tells the requester their request was approved.
func ApprovedNotification(r *Request) Notification {
	return Notification{
		UserID:      r.UserID,
		RequestID:   r.ID,
		Title:       "Request approved",
		Description: fmt.Sprintf("%q is now in progress and assigned to %s.", r.Title, r.AssignedTo),
	}
}

// ReturnRecordedNotification tells the requester a return was recorded.
func ReturnRecordedNotification(r *Request, outcomes []ReturnOutcome) Notification {
	desc := fmt.Sprintf("%d return(s) recorded on %q.", len(outcomes), r.Title)
	if r.IsReturned {
		desc += " All items are back and awaiting confirmation."
	}
	return Notification{
		UserID:      r.UserID,
		RequestID:   r.ID,
		Title:       "Return recorded",
		Description: desc,
	}
}

// ClosedNotification tells the requester the request is done.
func ClosedNotification(r *Request) Notification {
	return Notification{
		UserID:      r.UserID,
		RequestID:   r.ID,
		Title:       "Request completed",
		Description: fmt.Sprintf("All items for %q were returned and the request is closed.", r.Title),
	}
}

// CancelledNotification tells the requester the request was cancelled.
func CancelledNotification(r *Request) Notification {
	return Notification{
		UserID:      r.UserID,
		RequestID:   r.ID,
		Title:       "Request cancelled",
		Description: fmt.Sprintf("%q was cancelled.", r.Title),
	}
}

// OverdueNotification reminds the requester of items past their return date.
func OverdueNotification(r *Request, outstanding map[string]int) Notification {
	return Notification{
		UserID:    r.UserID,
		RequestID: r.ID,
		Title:     "Return overdue",
		Description: fmt.Sprintf("%q was due back on %s. Still outstanding: %s.",
			r.Title, r.ReturnDate.Format("2006-01-02"), formatOutstanding(outstanding)),
	}
}
