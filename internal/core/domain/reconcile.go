// internal/core/domain/reconcile.go
package domain

import (
	"fmt"
	"time"
)

// ReturnInput is one requested return of an item.
type ReturnInput struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// ReturnOutcome describes an accepted return.
type ReturnOutcome struct {
	Line      ReturnLine `json:"line"`
	Remaining int        `json:"remaining"`
	// Settled is true when this return made the whole request fully returned.
	// It does not close the request; closing requires ConfirmReturn.
	Settled bool `json:"settled"`
}

// ReturnedQuantity sums every return line recorded for item.
func ReturnedQuantity(r *Request, item string) int {
	item = NormalizeItemName(item)
	total := 0
	for _, line := range r.ReturnedItems {
		if line.Item == item {
			total += line.Quantity
		}
	}
	return total
}

// RemainingQuantity is the borrowed quantity of line minus everything returned
// against it. A negative result means the ledger is corrupt and is reported
// as ErrIntegrityViolation rather than clamped.
func RemainingQuantity(r *Request, line BorrowLine) (int, error) {
	remaining := line.Quantity - ReturnedQuantity(r, line.Item)
	if remaining < 0 {
		return 0, fmt.Errorf("%w: request %s item %q returned %d of %d",
			ErrIntegrityViolation, r.ID, line.Item, line.Quantity-remaining, line.Quantity)
	}
	return remaining, nil
}

// Outstanding maps every borrowed item to its remaining quantity.
func (r *Request) Outstanding() (map[string]int, error) {
	out := make(map[string]int, len(r.Items))
	for _, line := range r.Items {
		remaining, err := RemainingQuantity(r, line)
		if err != nil {
			return nil, err
		}
		out[line.Item] = remaining
	}
	return out, nil
}

// FullyReturned reports whether every borrow line has zero remaining quantity.
// Every line is checked, so an over-returned line is reported even when an
// earlier line still has units out.
func (r *Request) FullyReturned() (bool, error) {
	full := true
	for _, line := range r.Items {
		remaining, err := RemainingQuantity(r, line)
		if err != nil {
			return false, err
		}
		if remaining > 0 {
			full = false
		}
	}
	return full, nil
}

// OutstandingQuantity sums the remaining quantity of item across all active
// requests. Done and cancelled requests hold nothing.
func OutstandingQuantity(item string, requests []*Request) (int, error) {
	item = NormalizeItemName(item)
	total := 0
	for _, req := range requests {
		if req == nil || !req.Status.IsActive() {
			continue
		}
		line, ok := req.BorrowLineFor(item)
		if !ok {
			continue
		}
		remaining, err := RemainingQuantity(req, line)
		if err != nil {
			return 0, err
		}
		total += remaining
	}
	return total, nil
}

// AvailableQuantity is the item's total quantity minus everything outstanding
// on active requests. It may be negative when admission was over-committed.
func AvailableQuantity(item *InventoryItem, requests []*Request) (int, error) {
	outstanding, err := OutstandingQuantity(item.Name, requests)
	if err != nil {
		return 0, err
	}
	return item.TotalQuantity - outstanding, nil
}

// Availability builds the availability view of item.
func Availability(item *InventoryItem, requests []*Request) (ItemAvailability, error) {
	outstanding, err := OutstandingQuantity(item.Name, requests)
	if err != nil {
		return ItemAvailability{}, err
	}
	return ItemAvailability{
		InventoryItem: *item,
		Outstanding:   outstanding,
		Available:     item.TotalQuantity - outstanding,
	}, nil
}

// ApplyReturn records that actor returned qty units of item. The request is
// left unchanged when the return is rejected.
func (r *Request) ApplyReturn(actor Actor, item string, qty int, at time.Time) (ReturnOutcome, error) {
	if err := r.checkAcceptsReturns(); err != nil {
		return ReturnOutcome{}, err
	}
	if qty <= 0 {
		return ReturnOutcome{}, ErrInvalidQuantity
	}
	if _, err := r.FullyReturned(); err != nil {
		return ReturnOutcome{}, err
	}

	line, ok := r.BorrowLineFor(item)
	if !ok {
		return ReturnOutcome{}, fmt.Errorf("%q: %w", NormalizeItemName(item), ErrNotBorrowed)
	}

	remaining, err := RemainingQuantity(r, line)
	if err != nil {
		return ReturnOutcome{}, err
	}
	if qty > remaining {
		return ReturnOutcome{}, fmt.Errorf("%q: %d requested, %d remaining: %w",
			line.Item, qty, remaining, ErrOverReturn)
	}

	wasReturned := r.IsReturned
	returned := ReturnLine{
		Item:       line.Item,
		Quantity:   qty,
		ReturnedBy: actor.ID,
		ReturnedAt: at,
	}
	prev := r.ReturnedItems
	r.ReturnedItems = append(r.ReturnedItems, returned)

	full, err := r.FullyReturned()
	if err != nil {
		r.ReturnedItems = prev
		return ReturnOutcome{}, err
	}
	r.IsReturned = full

	remaining -= qty
	r.appendSystemMessage(at, "%s returned %d x %s (%d remaining)", actor.ID, qty, line.Item, remaining)

	return ReturnOutcome{
		Line:      returned,
		Remaining: remaining,
		Settled:   full && !wasReturned,
	}, nil
}

// ApplyReturns applies a batch of returns atomically: either every line is
// recorded or the request is left untouched and a *ReturnLineError names the
// first rejected line.
func (r *Request) ApplyReturns(actor Actor, inputs []ReturnInput, at time.Time) ([]ReturnOutcome, error) {
	if len(inputs) == 0 {
		return nil, Validationf("at least one return line is required")
	}

	draft := r.Clone()
	outcomes := make([]ReturnOutcome, 0, len(inputs))
	for i, in := range inputs {
		outcome, err := draft.ApplyReturn(actor, in.Item, in.Quantity, at)
		if err != nil {
			return nil, &ReturnLineError{
				Index:    i,
				Item:     NormalizeItemName(in.Item),
				Quantity: in.Quantity,
				Err:      err,
			}
		}
		outcomes = append(outcomes, outcome)
	}

	*r = *draft
	return outcomes, nil
}

// ReturnAllRemaining returns whatever is still outstanding of item. It is
// ApplyReturn with the current remaining quantity, so a fully returned item
// is rejected with ErrInvalidQuantity.
func (r *Request) ReturnAllRemaining(actor Actor, item string, at time.Time) (ReturnOutcome, error) {
	line, ok := r.BorrowLineFor(item)
	if !ok {
		if err := r.checkAcceptsReturns(); err != nil {
			return ReturnOutcome{}, err
		}
		return ReturnOutcome{}, fmt.Errorf("%q: %w", NormalizeItemName(item), ErrNotBorrowed)
	}
	remaining, err := RemainingQuantity(r, line)
	if err != nil {
		return ReturnOutcome{}, err
	}
	return r.ApplyReturn(actor, line.Item, remaining, at)
}

// CheckIntegrity verifies the ledgers against each other and against IsReturned.
func (r *Request) CheckIntegrity() error {
	for _, ret := range r.ReturnedItems {
		if _, ok := r.BorrowLineFor(ret.Item); !ok {
			return fmt.Errorf("%w: request %s has a return of unborrowed item %q",
				ErrIntegrityViolation, r.ID, ret.Item)
		}
		if ret.Quantity <= 0 {
			return fmt.Errorf("%w: request %s has a non-positive return of %q",
				ErrIntegrityViolation, r.ID, ret.Item)
		}
	}

	full, err := r.FullyReturned()
	if err != nil {
		return err
	}
	if full != r.IsReturned {
		return fmt.Errorf("%w: request %s isReturned=%t but ledgers say %t",
			ErrIntegrityViolation, r.ID, r.IsReturned, full)
	}
	return nil
}
