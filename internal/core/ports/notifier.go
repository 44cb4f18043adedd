// internal/core/ports/notifier.go
package ports

import (
	"context"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// Notifier hands notifications to the external push subsystem. Delivery is
// best-effort; callers never roll back on a Notify error.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
