package feed

import "context"

// Watcher observes a source and emits its raw contents on a channel.
//
// Watch must emit the current contents first, so a Feed can load its initial
// value, then emit again on every change. The channel is closed when ctx is
// done or the source fails for good.
type Watcher interface {
	Watch(ctx context.Context) (<-chan []byte, error)
}

// WatcherFunc adapts a function to Watcher.
type WatcherFunc func(ctx context.Context) (<-chan []byte, error)

// Watch calls fn(ctx).
func (fn WatcherFunc) Watch(ctx context.Context) (<-chan []byte, error) {
	return fn(ctx)
}
