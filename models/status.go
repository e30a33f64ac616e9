package models

// Status is an order's position in the delivery lifecycle
type Status string

const (
	StatusPending          Status = "pending"
	StatusAssigned         Status = "assigned"
	StatusWriting          Status = "writing"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusOutForDelivery   Status = "out_for_delivery"
	StatusDelivered        Status = "delivered"
)

// Valid reports whether the status is one of the known lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusWriting, StatusReadyForDelivery, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// statusFlow maps each status to its single legal successor.
// Admin edits bypass this table (administrative override); the
// transition endpoint does not.
var statusFlow = map[Status]Status{
	StatusPending:          StatusAssigned,
	StatusAssigned:         StatusWriting,
	StatusWriting:          StatusReadyForDelivery,
	StatusReadyForDelivery: StatusOutForDelivery,
	StatusOutForDelivery:   StatusDelivered,
}

// CanTransitionTo reports whether next is the legal successor of s
func (s Status) CanTransitionTo(next Status) bool {
	return statusFlow[s] == next
}

// TransitionAction maps a target status to the gated action that sets
// it, so the role check goes through the same CanPerform policy as
// every other gated operation.
func TransitionAction(target Status) (Action, bool) {
	switch target {
	case StatusAssigned:
		return ActionAssignOrders, true
	case StatusWriting:
		return ActionStartWriting, true
	case StatusReadyForDelivery:
		return ActionMarkReady, true
	case StatusOutForDelivery:
		return ActionStartDelivery, true
	case StatusDelivered:
		return ActionMarkDelivered, true
	}
	return "", false
}
