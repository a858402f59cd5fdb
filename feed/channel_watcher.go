package feed

import "context"

// ChannelWatcher turns an existing byte channel into a Watcher. Useful for
// tests and for sources that already push bytes.
type ChannelWatcher struct {
	ch     <-chan []byte
	direct bool
}

// NewChannelWatcher forwards values from ch through a goroutine that stops
// when the watch context is done.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher hands ch to the feed as is. Pair it with
// Feed.SyncMode for deterministic tests.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, direct: true}
}

// Watch returns a channel carrying the wrapped channel's values.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.direct {
		return w.ch, nil
	}
	out := make(chan []byte)
	go forward(ctx, w.ch, out)
	return out, nil
}

// forward copies in to out until in closes or ctx is done, then closes out.
func forward(ctx context.Context, in <-chan []byte, out chan<- []byte) {
	defer close(out)
	for {
		var v []byte
		select {
		case <-ctx.Done():
			return
		case next, ok := <-in:
			if !ok {
				return
			}
			v = next
		}
		if !send(ctx, out, v) {
			return
		}
	}
}

// send delivers v on out unless ctx is done first.
func send(ctx context.Context, out chan<- []byte, v []byte) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
