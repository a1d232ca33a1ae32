package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock position in minutes since local midnight.
// EndOfDay (24:00) is only meaningful as the end of a window.
type TimeOfDay int

const EndOfDay TimeOfDay = 24 * 60

// ParseTimeOfDay accepts "HH:MM" (24h) and the special end value "24:00".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Window is a half-open time-of-day range [Start, End) on a single day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if !w.Valid() {
		return Window{}, fmt.Errorf("window %s-%s does not fit in one day", start, end)
	}
	return w, nil
}

func (w Window) Valid() bool {
	return w.Start >= 0 && w.Start < w.End && w.End <= EndOfDay
}

// On anchors the window to the calendar day that starts at midnight.
func (w Window) On(midnight time.Time) Interval {
	y, m, d := midnight.Date()
	loc := midnight.Location()
	return Interval{
		Start: time.Date(y, m, d, 0, int(w.Start), 0, 0, loc),
		End:   time.Date(y, m, d, 0, int(w.End), 0, 0, loc),
	}
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// MergeWindows drops invalid windows, sorts the rest and unions overlapping
// or touching ones.
func MergeWindows(ws []Window) []Window {
	valid := make([]Window, 0, len(ws))
	for _, w := range ws {
		if w.Valid() {
			valid = append(valid, w)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start == valid[j].Start {
			return valid[i].End < valid[j].End
		}
		return valid[i].Start < valid[j].Start
	})

	out := []Window{valid[0]}
	for _, w := range valid[1:] {
		last := &out[len(out)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// SubtractWindow removes cut from every window in ws.
func SubtractWindow(ws []Window, cut Window) []Window {
	if !cut.Valid() {
		return ws
	}
	out := make([]Window, 0, len(ws)+1)
	for _, w := range ws {
		if cut.End <= w.Start || w.End <= cut.Start {
			out = append(out, w)
			continue
		}
		if w.Start < cut.Start {
			out = append(out, Window{Start: w.Start, End: cut.Start})
		}
		if cut.End < w.End {
			out = append(out, Window{Start: cut.End, End: w.End})
		}
	}
	return out
}

// Interval is a half-open range of absolute instants [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps is the half-open overlap test: a.Start < b.End && b.Start < a.End.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

func (i Interval) Duration() time.Duration {
	if !i.End.After(i.Start) {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Clip returns the part of i inside bounds; ok is false when nothing is left.
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	start := i.Start
	if bounds.Start.After(start) {
		start = bounds.Start
	}
	end := i.End
	if bounds.End.Before(end) {
		end = bounds.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

// MergeIntervals sorts and unions overlapping or touching intervals.
func MergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]Interval, 0, len(in))
	for _, iv := range in {
		if iv.End.After(iv.Start) {
			sorted = append(sorted, iv)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sortIntervals(sorted)

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Subtract removes every busy interval from the open ones, preserving order.
// busy does not need to be merged but must be sorted by start.
func Subtract(open, busy []Interval) []Interval {
	var out []Interval
	for _, o := range open {
		cur := o.Start
		for _, b := range busy {
			if !b.End.After(cur) {
				continue
			}
			if !b.Start.Before(o.End) {
				break
			}
			if b.Start.After(cur) {
				out = append(out, Interval{Start: cur, End: b.Start})
			}
			if b.End.After(cur) {
				cur = b.End
			}
			if !cur.Before(o.End) {
				break
			}
		}
		if cur.Before(o.End) {
			out = append(out, Interval{Start: cur, End: o.End})
		}
	}
	return out
}

// OverlapDuration sums how much of busy falls inside open. Both lists must be
// merged (disjoint).
func OverlapDuration(open, busy []Interval) time.Duration {
	var total time.Duration
	for _, o := range open {
		for _, b := range busy {
			if c, ok := b.Clip(o); ok {
				total += c.Duration()
			}
		}
	}
	return total
}

func sortIntervals(in []Interval) {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Start.Equal(in[j].Start) {
			return in[i].End.Before(in[j].End)
		}
		return in[i].Start.Before(in[j].Start)
	})
}
