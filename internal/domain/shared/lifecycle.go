package shared

// LifecycleState is the explicit lifecycle of a soft-deletable record.
// It replaces nullable-timestamp sentinels: a row is countable for quota
// purposes only while Active.
type LifecycleState string

const (
	LifecycleActive   LifecycleState = "active"
	LifecycleArchived LifecycleState = "archived"
	LifecycleDeleted  LifecycleState = "deleted"
)

// IsValid returns true for a known lifecycle state
func (s LifecycleState) IsValid() bool {
	switch s {
	case LifecycleActive, LifecycleArchived, LifecycleDeleted:
		return true
	}
	return false
}

// IsCountable reports whether rows in this state count toward quotas
func (s LifecycleState) IsCountable() bool {
	return s == LifecycleActive
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// Active may archive or delete, Archived may reactivate or delete,
// Deleted is terminal.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	if !next.IsValid() || s == next {
		return false
	}
	switch s {
	case LifecycleActive:
		return true
	case LifecycleArchived:
		return true
	case LifecycleDeleted:
		return false
	}
	return false
}
