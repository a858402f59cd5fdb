package delta

// SubscriptionState is the lifecycle state of a Subscription.
type SubscriptionState int32

const (
	// StateAwaitingSubscription indicates the subscription has been created
	// but not yet handed to its sink. Values are buffered, never delivered.
	StateAwaitingSubscription SubscriptionState = iota

	// StateSubscribed indicates the sink holds the subscription and values
	// flow as demand allows.
	StateSubscribed

	// StateTerminal indicates the subscription was cancelled or completed.
	// Terminal is absorbing.
	StateTerminal
)

// String returns the string representation of the state.
func (s SubscriptionState) String() string {
	switch s {
	case StateAwaitingSubscription:
		return "awaiting-subscription"
	case StateSubscribed:
		return "subscribed"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
