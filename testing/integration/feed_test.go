package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/delta"
	"github.com/zoobzio/delta/feed"
)

type appConfig struct {
	Feature string `json:"feature" yaml:"feature"`
	Limit   int    `json:"limit" yaml:"limit"`
}

// Validate implements feed.Validator.
func (c appConfig) Validate() error {
	if c.Feature == "" {
		return errors.New("feature is required")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", c.Limit)
	}
	return nil
}

var (
	featureField = delta.Field("feature", func(c appConfig) string { return c.Feature })
	limitField   = delta.Field("limit", func(c appConfig) int { return c.Limit })
)

// limits records every limit handed to its hook.
type limits struct {
	mu     sync.Mutex
	values []int
}

func (l *limits) SetLimit(n int) {
	l.mu.Lock()
	l.values = append(l.values, n)
	l.mu.Unlock()
}

func (l *limits) Values() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.values...)
}

func writeConfig(t *testing.T, path string, cfg appConfig) {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func startFeed(t *testing.T, path string) (*feed.Feed[appConfig], *delta.Container[appConfig], *limits) {
	t.Helper()

	c := delta.New(appConfig{}, limitField).Name("app")
	t.Cleanup(c.Close)

	view := &limits{}
	delta.ObserveField(c, limitField, view, delta.Method((*limits).SetLimit))

	f := feed.New[appConfig](feed.NewFileWatcher(path), c).
		Name("app").
		Codec(feed.CodecFor(path)).
		Debounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return f, c, view
}

func TestFeed_FileWatcher_InitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, appConfig{Feature: "test", Limit: 100})

	f, c, view := startFeed(t, path)

	if f.State() != feed.StateHealthy {
		t.Errorf("expected StateHealthy, got %s", f.State())
	}
	if got := c.Current(); got.Feature != "test" || got.Limit != 100 {
		t.Errorf("unexpected container value: %+v", got)
	}

	// Zero value on bind, then the loaded limit.
	if got := view.Values(); len(got) != 2 || got[1] != 100 {
		t.Errorf("expected hook values [0 100], got %v", got)
	}
}

func TestFeed_FileWatcher_UnwatchedFieldDoesNotNotify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, appConfig{Feature: "v1", Limit: 10})

	_, c, view := startFeed(t, path)

	writeConfig(t, path, appConfig{Feature: "v2", Limit: 10})
	if !waitFor(t, 2*time.Second, func() bool { return c.Current().Feature == "v2" }) {
		t.Fatalf("container never saw v2, current %+v", c.Current())
	}

	if got := view.Values(); len(got) != 2 {
		t.Errorf("expected no hook call for a feature-only change, got %v", got)
	}

	writeConfig(t, path, appConfig{Feature: "v3", Limit: 20})
	if !waitFor(t, 2*time.Second, func() bool { return len(view.Values()) == 3 }) {
		t.Fatalf("expected hook call for the limit change, got %v", view.Values())
	}
	if got := view.Values(); got[2] != 20 {
		t.Errorf("expected limit 20, got %v", got)
	}
}

func TestFeed_FileWatcher_InvalidUpdateRetainsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, appConfig{Feature: "valid", Limit: 50})

	f, c, _ := startFeed(t, path)

	writeConfig(t, path, appConfig{Feature: "", Limit: 60})
	if !waitFor(t, 2*time.Second, func() bool { return f.State() == feed.StateDegraded }) {
		t.Fatalf("expected StateDegraded, got %s", f.State())
	}

	if got := c.Current(); got.Feature != "valid" || got.Limit != 50 {
		t.Errorf("expected previous value retained, got %+v", got)
	}
	if f.LastError() == nil {
		t.Error("expected LastError to be set")
	}
}

func TestFeed_FileWatcher_RecoveryFromDegraded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, appConfig{Feature: "v1", Limit: 10})

	f, c, _ := startFeed(t, path)

	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return f.State() == feed.StateDegraded }) {
		t.Fatalf("expected StateDegraded, got %s", f.State())
	}

	writeConfig(t, path, appConfig{Feature: "v2", Limit: 30})
	if !waitFor(t, 2*time.Second, func() bool { return f.State() == feed.StateHealthy }) {
		t.Fatalf("expected StateHealthy, got %s", f.State())
	}
	if got := c.Current(); got.Limit != 30 {
		t.Errorf("expected limit 30, got %+v", got)
	}
	if f.LastError() != nil {
		t.Errorf("expected LastError cleared, got %v", f.LastError())
	}
}

func TestFeed_FileWatcher_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("feature: yaml\nlimit: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, c, _ := startFeed(t, path)

	if got := c.Current(); got.Feature != "yaml" || got.Limit != 7 {
		t.Errorf("unexpected container value: %+v", got)
	}
}

func TestFeed_FileWatcher_EmptyOnMalformedInitial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{bad`), 0o600); err != nil {
		t.Fatal(err)
	}

	c := delta.New(appConfig{}, featureField)
	t.Cleanup(c.Close)

	f := feed.New[appConfig](feed.NewFileWatcher(path), c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.Start(ctx); !errors.Is(err, feed.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if f.State() != feed.StateEmpty {
		t.Errorf("expected StateEmpty, got %s", f.State())
	}
	if c.Current() != (appConfig{}) {
		t.Errorf("expected container untouched, got %+v", c.Current())
	}
}
