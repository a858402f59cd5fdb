package delta

import (
	"slices"
	"testing"
)

type pair struct {
	Str string
	Int int
}

type doc struct {
	Label string
	Count int
	Note  string
}

var (
	pairStr = Field("str", func(p pair) string { return p.Str })
	pairInt = Field("int", func(p pair) int { return p.Int })

	docLabel = Field("label", func(d doc) string { return d.Label })
	docCount = Field("count", func(d doc) int { return d.Count })
)

func TestContainer_WatchedFieldScenario(t *testing.T) {
	byInt := New(pair{}, pairInt)
	byStr := New(pair{}, pairStr)

	intRec := newRecorder[pair](Unlimited)
	strRec := newRecorder[pair](Unlimited)
	byInt.Subscribe(intRec)
	byStr.Subscribe(strRec)

	byInt.Set(pair{Str: "x", Int: 0})
	byStr.Set(pair{Str: "x", Int: 0})

	if got := intRec.Values(); !equalSlices(got, []pair{{}}) {
		t.Errorf("expected int watcher to see only the initial value, got %v", got)
	}
	if got := strRec.Values(); !equalSlices(got, []pair{{}, {Str: "x"}}) {
		t.Errorf("expected str watcher to see the first set, got %v", got)
	}

	byInt.Set(pair{Str: "x", Int: 5})
	byStr.Set(pair{Str: "x", Int: 5})

	if got := intRec.Values(); !equalSlices(got, []pair{{}, {Str: "x", Int: 5}}) {
		t.Errorf("expected int watcher to see {x 5}, got %v", got)
	}
	if got := strRec.Values(); len(got) != 2 {
		t.Errorf("expected str watcher to ignore the second set, got %v", got)
	}
}

func TestContainer_NoOpSuppression(t *testing.T) {
	c := New(doc{Count: 1}, docCount)
	rec := newRecorder[doc](Unlimited)
	c.Subscribe(rec)

	c.Set(doc{Label: "a", Count: 1})

	if got := len(rec.Values()); got != 1 {
		t.Errorf("expected only the initial delivery, got %d", got)
	}
	if got := c.Current(); got.Label != "a" {
		t.Errorf("expected current to advance to label 'a', got %+v", got)
	}
	if got := c.Relay().Current(); got.Label != "" {
		t.Errorf("expected relay current unchanged, got %+v", got)
	}
}

func TestContainer_StoredValueAlwaysAdvances(t *testing.T) {
	c := New(doc{Count: 1}, docCount)
	rec := newRecorder[doc](Unlimited)
	c.Subscribe(rec)

	c.Set(doc{Label: "a", Count: 1})
	c.Set(doc{Label: "b", Count: 1})
	c.Set(doc{Label: "c", Count: 1})
	if got := len(rec.Values()); got != 1 {
		t.Fatalf("expected three suppressed sets, got %d deliveries", got)
	}

	c.Set(doc{Label: "d", Count: 2})

	values := rec.Values()
	if len(values) != 2 {
		t.Fatalf("expected the watched change to be forwarded, got %d deliveries", len(values))
	}
	if values[1].Label != "d" || values[1].Count != 2 {
		t.Errorf("expected {d 2}, got %+v", values[1])
	}
}

func TestContainer_DiffAgainstPriorStoredValue(t *testing.T) {
	// drift reports a change only when Count moves by more than one.
	drift := NewSelector("drift", func(old, new doc) bool {
		d := new.Count - old.Count
		return d > 1 || d < -1
	})
	c := New(doc{Count: 0}, drift)
	rec := newRecorder[doc](Unlimited)
	c.Subscribe(rec)

	c.Set(doc{Count: 1})
	c.Set(doc{Count: 2})
	c.Set(doc{Count: 3})

	if got := len(rec.Values()); got != 1 {
		t.Errorf("expected each step compared to the previous set, got %d deliveries", got)
	}
	if c.Current().Count != 3 {
		t.Errorf("expected current count 3, got %d", c.Current().Count)
	}

	c.Set(doc{Count: 0})
	if got := len(rec.Values()); got != 2 {
		t.Errorf("expected drift from 3 to 0 forwarded, got %d deliveries", got)
	}
}

func TestContainer_WholeValueFallback(t *testing.T) {
	c := New(pair{Str: "a"})
	rec := newRecorder[pair](Unlimited)
	c.Subscribe(rec)

	c.Set(pair{Str: "a"})
	c.Set(pair{Str: "b"})
	c.Set(pair{Str: "b"})
	c.Set(pair{Str: "b", Int: 1})

	want := []pair{{Str: "a"}, {Str: "b"}, {Str: "b", Int: 1}}
	if got := rec.Values(); !equalSlices(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestContainer_NewFuncUsesEqual(t *testing.T) {
	c := NewFunc(testState{Tags: []string{"a"}}, func(a, b testState) bool {
		return a.Label == b.Label && a.Count == b.Count && slices.Equal(a.Tags, b.Tags)
	})
	rec := newRecorder[testState](Unlimited)
	c.Subscribe(rec)

	c.Set(testState{Tags: []string{"a"}})
	c.Set(testState{Tags: []string{"a", "b"}})

	if got := len(rec.Values()); got != 2 {
		t.Errorf("expected 2 deliveries, got %d", got)
	}
}

func TestContainer_SetInsideSubscriber(t *testing.T) {
	c := New(0)
	var seen []int
	Observe[int](c, func(v int) {
		seen = append(seen, v)
		if v == 1 {
			c.Set(2)
		}
	}, nil)

	c.Set(1)

	if !equalSlices(seen, []int{0, 1, 2}) {
		t.Errorf("expected [0 1 2], got %v", seen)
	}
	if c.Current() != 2 {
		t.Errorf("expected current 2, got %d", c.Current())
	}
}

func TestContainer_Close(t *testing.T) {
	c := New(0)
	rec := newRecorder[int](Unlimited)
	c.Subscribe(rec)

	c.Close()
	c.Set(1)

	if comps := rec.Completions(); len(comps) != 1 || !comps[0].IsFinished() {
		t.Errorf("expected finished completion, got %v", comps)
	}
	if got := rec.Values(); !equalSlices(got, []int{0}) {
		t.Errorf("expected no delivery after close, got %v", got)
	}
	if c.Current() != 1 {
		t.Errorf("expected stored value to advance after close, got %d", c.Current())
	}
	if !c.Relay().Completed() {
		t.Error("expected relay completed")
	}
}

func TestContainer_Metrics(t *testing.T) {
	m := &countingMetrics{}
	c := New(doc{}, docCount, docLabel).Metrics(m)
	c.Subscribe(newRecorder[doc](Unlimited))

	c.Set(doc{Count: 1, Label: "a"})
	c.Set(doc{Count: 1, Label: "a", Note: "x"})
	c.Set(doc{Count: 2, Label: "a"})

	if !equalSlices(m.changes, []int{2, 1}) {
		t.Errorf("expected changes [2 1], got %v", m.changes)
	}
	if m.suppressed != 1 {
		t.Errorf("expected 1 suppressed, got %d", m.suppressed)
	}
	if m.sends != 2 {
		t.Errorf("expected 2 sends, got %d", m.sends)
	}
}

func TestContainer_Selectors(t *testing.T) {
	c := New(doc{}, docCount)

	if !c.Selectors().Contains(docCount) {
		t.Error("expected count selector")
	}
	if c.Selectors().Contains(docLabel) {
		t.Error("expected label selector absent")
	}
}
