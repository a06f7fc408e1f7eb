package engine

import "time"

// Defaults for the batch scheduler. A quarter of the items per batch,
// five minutes of wall clock per batch, keeps a big tenant sweep
// interruptible without making small sweeps crawl.
const (
	DefaultBatchPercent    = 25
	DefaultMaxBatchMinutes = 5
)

// NormalizePercent corrects an out-of-range batch percentage to the
// default instead of failing the run over a config typo.
func NormalizePercent(p int) int {
	if p <= 0 || p > 100 {
		return DefaultBatchPercent
	}
	return p
}

// Range is a half-open [Start,End) slice of the run's item list.
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// BatchQuota is the per-batch item ceiling: ceil(total×percent/100),
// or all items when batching is bypassed.
func BatchQuota(total, percent int, bypass bool) int {
	if bypass {
		return total
	}
	percent = NormalizePercent(percent)
	return (total*percent + 99) / 100
}

// Partition is the static batch plan: quota-sized ranges covering
// [0,total) exactly, with no gaps and no overlaps. Execution may end a
// batch earlier when its time window expires; the plan is what the run
// announces up front.
func Partition(total, percent int, bypass bool) []Range {
	if total <= 0 {
		return nil
	}
	quota := BatchQuota(total, percent, bypass)
	ranges := make([]Range, 0, (total+quota-1)/quota)
	for start := 0; start < total; start += quota {
		end := start + quota
		if end > total {
			end = total
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// Window bounds one batch's wall-clock time. The zero Window never
// expires, which is the bypass-batching case.
type Window struct {
	start time.Time
	limit time.Duration
}

// NewWindow starts a batch window at start. bypass disables the bound.
func NewWindow(start time.Time, maxMinutes int, bypass bool) Window {
	if bypass {
		return Window{}
	}
	if maxMinutes <= 0 {
		maxMinutes = DefaultMaxBatchMinutes
	}
	return Window{start: start, limit: time.Duration(maxMinutes) * time.Minute}
}

// Exceeded reports whether the window has expired at now. Callers check
// before each item, so the first item of a batch always runs.
func (w Window) Exceeded(now time.Time) bool {
	if w.limit == 0 {
		return false
	}
	return now.Sub(w.start) >= w.limit
}
