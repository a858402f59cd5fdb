package delta

import "github.com/zoobzio/capitan"

// Relay lifecycle signals.
var (
	// RelaySubscribed is emitted when a subscriber attaches to a relay or replay.
	RelaySubscribed = capitan.NewSignal(
		"delta.relay.subscribed",
		"Subscriber attached",
	)

	// RelayCancelled is emitted when a subscriber cancels its subscription.
	RelayCancelled = capitan.NewSignal(
		"delta.relay.cancelled",
		"Subscription cancelled by subscriber",
	)

	// RelayCompleted is emitted when a relay delivers its terminal signal.
	RelayCompleted = capitan.NewSignal(
		"delta.relay.completed",
		"Relay completed",
	)

	// RelayOverflow is emitted right before a relay panics on runaway re-entrant sends.
	RelayOverflow = capitan.NewSignal(
		"delta.relay.overflow",
		"Re-entrant send depth exceeded",
	)

	// DemandRejected is emitted when a subscriber requests negative demand.
	DemandRejected = capitan.NewSignal(
		"delta.demand.rejected",
		"Negative demand clamped to zero",
	)
)

// Container signals.
var (
	// ContainerChanged is emitted when an assignment is forwarded to subscribers.
	ContainerChanged = capitan.NewSignal(
		"delta.container.changed",
		"Assignment forwarded",
	)

	// ContainerSuppressed is emitted when an assignment changes no watched field.
	ContainerSuppressed = capitan.NewSignal(
		"delta.container.suppressed",
		"Assignment suppressed",
	)
)

// Hook binding signals.
var (
	// BindingDetached is emitted when a binding drops because its target was collected.
	BindingDetached = capitan.NewSignal(
		"delta.binding.detached",
		"Hook target released, binding detached",
	)

	// HookFailed is emitted when the dispatch pipeline of a binding returns an error.
	HookFailed = capitan.NewSignal(
		"delta.hook.failed",
		"Hook dispatch failed",
	)

	// QueueDropped is emitted when a task is submitted to a closed serial queue.
	QueueDropped = capitan.NewSignal(
		"delta.queue.dropped",
		"Task dropped by closed queue",
	)
)
