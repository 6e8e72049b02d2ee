package planner

import (
	"fmt"
	"slices"
	"time"

	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
)

const (
	daysPerWeek = 7
	// MaxDateAttempts bounds the random draws per slot before the deterministic fallback.
	MaxDateAttempts = 20
)

// Slot is one planned post: a type and the moment it should go out.
type Slot struct {
	PostType     domainPost.Type `json:"post_type"`
	ScheduledFor time.Time       `json:"scheduled_for"`
}

// Planner lays out a week of posts.
type Planner struct {
	times *Randomizer
	src   Source
}

func New(window Window, src Source) (*Planner, error) {
	if src == nil {
		src = DefaultSource()
	}
	r, err := NewRandomizer(window, src)
	if err != nil {
		return nil, err
	}
	return &Planner{times: r, src: src}, nil
}

func (p *Planner) Window() Window {
	return p.times.Window()
}

// Plan returns the 7 slots of the week starting at weekStart, sorted by time.
// Dates are computed in weekStart's location; the time of day of weekStart is ignored.
func (p *Planner) Plan(slowest time.Weekday, weekStart time.Time) ([]Slot, error) {
	if !timeutils.IsValidWeekday(slowest) {
		return nil, fmt.Errorf("invalid slowest day %d: must be Sunday(0)..Saturday(6)", int(slowest))
	}
	if weekStart.IsZero() {
		return nil, fmt.Errorf("week start is required")
	}

	start := timeutils.StartOfDay(weekStart)
	first, second := PromotionalOffsets(slowest, start.Weekday())

	var used [daysPerWeek]bool
	offsets := make([]int, 0, domainPost.PostsPerWeek)
	types := make([]domainPost.Type, 0, domainPost.PostsPerWeek)

	for _, off := range []int{first, second} {
		used[off] = true
		offsets = append(offsets, off)
		types = append(types, domainPost.TypePromotional)
	}

	for _, t := range []domainPost.Type{domainPost.TypeInformative, domainPost.TypeFunFact} {
		for i := 0; i < domainPost.WeeklyMix[t]; i++ {
			off := p.pickOffset(&used)
			used[off] = true
			offsets = append(offsets, off)
			types = append(types, t)
		}
	}

	slots := make([]Slot, len(offsets))
	for i, off := range offsets {
		day := timeutils.AddDays(start, off)
		ct := p.times.PickTime()
		slots[i] = Slot{
			PostType:     types[i],
			ScheduledFor: time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, 0, 0, start.Location()),
		}
	}

	slices.SortStableFunc(slots, func(a, b Slot) int {
		return a.ScheduledFor.Compare(b.ScheduledFor)
	})
	return slots, nil
}

// pickOffset draws random day offsets until one is free, then falls back to the lowest free offset.
func (p *Planner) pickOffset(used *[daysPerWeek]bool) int {
	for attempt := 0; attempt < MaxDateAttempts; attempt++ {
		off := p.src.IntN(daysPerWeek)
		if off >= 0 && off < daysPerWeek && !used[off] {
			return off
		}
	}
	for off := 0; off < daysPerWeek; off++ {
		if !used[off] {
			return off
		}
	}
	// unreachable while fewer than 7 days are taken
	return daysPerWeek - 1
}

// PromotionalOffsets returns the day offsets (from the week start) of the two
// promotional posts: four and two days before the first slowest day on or after
// the week start. The first clamps to 0, the second to 1, and the second is
// always strictly after the first.
func PromotionalOffsets(slowest, weekStartDay time.Weekday) (int, int) {
	slowestOffset := (int(slowest) - int(weekStartDay) + daysPerWeek) % daysPerWeek

	first := slowestOffset - 4
	if first < 0 {
		first = 0
	}
	second := slowestOffset - 2
	if second < 0 {
		second = 1
	}
	if second <= first {
		second = first + 1
	}
	return first, second
}

// SlowestDate returns the first date on or after weekStart that falls on slowest.
func SlowestDate(slowest time.Weekday, weekStart time.Time) time.Time {
	start := timeutils.StartOfDay(weekStart)
	return timeutils.AddDays(start, (int(slowest)-int(start.Weekday())+daysPerWeek)%daysPerWeek)
}
