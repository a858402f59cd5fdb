package delta

import (
	"math"
	"strconv"
)

// Demand is the number of values a subscriber has authorized a publisher to
// deliver. It saturates at Unlimited.
type Demand int64

const (
	// None requests nothing.
	None Demand = 0

	// Unlimited requests every value; it is never decremented.
	Unlimited Demand = math.MaxInt64
)

// Max returns a finite demand of n values. Negative n yields None.
func Max(n int) Demand {
	if n <= 0 {
		return None
	}
	return Demand(n)
}

// IsUnlimited reports whether d is Unlimited.
func (d Demand) IsUnlimited() bool { return d == Unlimited }

// String returns "unlimited" or the decimal count.
func (d Demand) String() string {
	if d.IsUnlimited() {
		return "unlimited"
	}
	return strconv.FormatInt(int64(d), 10)
}

// add returns d+o, saturating at Unlimited. Negative operands count as None.
func (d Demand) add(o Demand) Demand {
	if d < 0 {
		d = None
	}
	if o <= 0 {
		return d
	}
	if d.IsUnlimited() || o.IsUnlimited() || d > Unlimited-o {
		return Unlimited
	}
	return d + o
}

// take consumes one unit of demand.
func (d Demand) take() Demand {
	if d.IsUnlimited() || d <= 0 {
		return d
	}
	return d - 1
}

// Completion is the terminal signal delivered to a sink. A nil Err means the
// publisher finished normally.
type Completion struct {
	Err error
}

// Finished is the completion of a publisher that ended normally.
var Finished = Completion{}

// Failure returns a completion carrying err.
func Failure(err error) Completion { return Completion{Err: err} }

// IsFinished reports whether c is a normal completion.
func (c Completion) IsFinished() bool { return c.Err == nil }

func (c Completion) String() string {
	if c.Err == nil {
		return "finished"
	}
	return "failure: " + c.Err.Error()
}
