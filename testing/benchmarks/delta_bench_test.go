package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zoobzio/delta"
	"github.com/zoobzio/delta/feed"
)

type benchConfig struct {
	Value int    `yaml:"value" json:"value"`
	Name  string `yaml:"name" json:"name"`
}

// Validate implements feed.Validator.
func (c benchConfig) Validate() error {
	if c.Value < 0 {
		return fmt.Errorf("value must be >= 0, got %d", c.Value)
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

var (
	valueField = delta.Field("value", func(c benchConfig) int { return c.Value })
	nameField  = delta.Field("name", func(c benchConfig) string { return c.Name })
)

func BenchmarkRelay_Send(b *testing.B) {
	for _, subscribers := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("subscribers=%d", subscribers), func(b *testing.B) {
			r := delta.NewRelay(0)
			for i := 0; i < subscribers; i++ {
				delta.Observe[int](r, func(int) {}, nil)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.Send(i)
			}
		})
	}
}

func BenchmarkContainer_SetForwarded(b *testing.B) {
	c := delta.New(benchConfig{}, valueField, nameField)
	delta.Observe[benchConfig](c, func(benchConfig) {}, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(benchConfig{Value: i, Name: "bench"})
	}
}

func BenchmarkContainer_SetSuppressed(b *testing.B) {
	c := delta.New(benchConfig{}, valueField)
	delta.Observe[benchConfig](c, func(benchConfig) {}, nil)

	names := []string{"a", "b"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(benchConfig{Name: names[i%2]})
	}
}

func BenchmarkDiff(b *testing.B) {
	set := delta.NewSelectors[benchConfig](valueField, nameField)
	old := benchConfig{Value: 1, Name: "a"}
	next := benchConfig{Value: 2, Name: "a"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = delta.Diff(set, old, next)
	}
}

func BenchmarkBind_Dispatch(b *testing.B) {
	c := delta.New(benchConfig{}, valueField)
	delta.BindFunc(c, valueField, func(int) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(benchConfig{Value: i + 1})
	}
}

func BenchmarkFeed_ProcessIntoContainer(b *testing.B) {
	ch := make(chan []byte, b.N+1)
	ch <- []byte(`{"value": 0, "name": "initial"}`)
	for i := 1; i <= b.N; i++ {
		ch <- []byte(fmt.Sprintf(`{"value": %d, "name": "test"}`, i))
	}

	c := delta.New(benchConfig{}, valueField)
	f := feed.New[benchConfig](feed.NewSyncChannelWatcher(ch), c).SyncMode()

	ctx := context.Background()
	if err := f.Start(ctx); err != nil {
		b.Fatalf("Start() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Process(ctx)
	}
}

func BenchmarkChannelWatcher_Forwarding(b *testing.B) {
	source := make(chan []byte, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := feed.NewChannelWatcher(source).Watch(ctx)
	if err != nil {
		b.Fatalf("Watch() error = %v", err)
	}
	data := []byte(`{"value": 1}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		source <- data
		<-out
	}
}
