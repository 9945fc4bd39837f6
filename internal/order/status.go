package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

// transitions is the validated transition table. The lifecycle is monotonic
// (pending -> confirmed -> processing -> shipped -> delivered) with a side
// exit to cancelled from every state that has not shipped yet.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

var labels = map[Status]string{
	StatusPending:    "Order placed, awaiting confirmation",
	StatusConfirmed:  "Order confirmed",
	StatusProcessing: "Order is being prepared",
	StatusShipped:    "Order shipped",
	StatusDelivered:  "Order delivered",
	StatusCancelled:  "Order cancelled",
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Label returns the human-readable tracking label for a status.
func (s Status) Label() string { return labels[s] }

// CanTransition reports whether from -> to is allowed by the table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Apply validates and applies a transition to the order in memory, stamping
// the side effects that belong to the target status, and returns the tracking
// entry to append. The caller persists order and entry together.
func Apply(o *Order, to Status, note string, now time.Time) (TrackingEntry, error) {
	if !to.Valid() {
		return TrackingEntry{}, ErrUnknownStatus
	}
	if !CanTransition(o.Status, to) {
		return TrackingEntry{}, ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = now
	switch to {
	case StatusDelivered:
		o.Paid = true
		t := now
		o.DeliveredAt = &t
	case StatusCancelled:
		t := now
		o.CancelledAt = &t
	}
	return TrackingEntry{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Status:    to,
		Label:     to.Label(),
		Note:      note,
		CreatedAt: now,
	}, nil
}
