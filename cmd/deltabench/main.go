// Command deltabench measures container fan-out latency across subscriber
// and selector counts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
	"github.com/zoobzio/delta"
)

const (
	iterationsKey  = "iterations"
	subscribersKey = "subscribers"
	selectorsKey   = "selectors"
	suppressKey    = "suppress"
)

// fieldCount bounds the selectors a record can be watched with.
const fieldCount = 16

type record struct {
	Fields [fieldCount]int
	Note   int
}

func main() {
	cmd := &cli.Command{
		Name:  "deltabench",
		Usage: "Measure Container.Set fan-out latency",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  iterationsKey,
				Usage: "Assignments per scenario",
				Value: 1_000,
			},
			&cli.UintFlag{
				Name:  subscribersKey,
				Usage: "Largest subscriber count; scenarios grow by 10x from 1",
				Value: 1_000,
			},
			&cli.UintFlag{
				Name:  selectorsKey,
				Usage: fmt.Sprintf("Largest selector count, at most %d; scenarios double from 1", fieldCount),
				Value: fieldCount,
			},
			&cli.BoolFlag{
				Name:  suppressKey,
				Usage: "Also measure assignments that change no watched field",
				Value: true,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	iterations := int(cmd.Uint(iterationsKey))
	maxSubscribers := int(cmd.Uint(subscribersKey))
	maxSelectors := int(cmd.Uint(selectorsKey))
	if iterations < 1 {
		return fmt.Errorf("%s must be at least 1", iterationsKey)
	}
	if maxSelectors < 1 || maxSelectors > fieldCount {
		return fmt.Errorf("%s must be between 1 and %d", selectorsKey, fieldCount)
	}

	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("Container.Set (%s iterations)", humanize.Comma(int64(iterations))))
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"scenario", "deliveries", "avg", "min", "p75", "p99", "max"})

	for subscribers := 1; subscribers <= maxSubscribers; subscribers *= 10 {
		for selectors := 1; selectors <= maxSelectors; selectors *= 2 {
			tbl.AppendRow(measure(fmt.Sprintf("changed: %d subs * %d sels", subscribers, selectors),
				subscribers, selectors, iterations, false))
			if cmd.Bool(suppressKey) {
				tbl.AppendRow(measure(fmt.Sprintf("suppressed: %d subs * %d sels", subscribers, selectors),
					subscribers, selectors, iterations, true))
			}
		}
	}

	tbl.Render()
	return nil
}

func measure(name string, subscribers, selectors, iterations int, suppress bool) table.Row {
	c := delta.New(record{}, watch(selectors)...)
	defer c.Close()

	var deliveries uint64
	for i := 0; i < subscribers; i++ {
		delta.Observe[record](c, func(record) { deliveries++ }, nil)
	}
	deliveries = 0

	tach := tachymeter.New(&tachymeter.Config{Size: iterations})
	next := c.Current()
	for i := 0; i < iterations; i++ {
		if suppress {
			next.Note++
		} else {
			next.Fields[selectors-1]++
		}

		start := time.Now()
		c.Set(next)
		tach.AddTime(time.Since(start))
	}

	calc := tach.Calc()
	return table.Row{
		name,
		humanize.Comma(int64(deliveries)), //nolint:gosec // bounded by iterations * subscribers
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	}
}

// watch returns n selectors over the first n fields of a record.
func watch(n int) []delta.Selector[record] {
	sels := make([]delta.Selector[record], n)
	for i := range sels {
		sels[i] = delta.NewSelector(fmt.Sprintf("f%d", i), func(old, new record) bool {
			return old.Fields[i] != new.Fields[i]
		})
	}
	return sels
}
