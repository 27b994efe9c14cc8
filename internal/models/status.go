package models

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[OrderStatus][]OrderStatus{
	StatusNew:        {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
}

// IsTerminal reports whether no further transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Writing the current status again is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s, excluding s itself.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}
