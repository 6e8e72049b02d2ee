package planner

import (
	"fmt"
	"math/rand/v2"

	"github.com/imbizlab/groomflo-app/pkg/timeutils"
)

// Source is the entropy used by the planner. *rand.Rand satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the process-wide generator and is safe for concurrent use.
func DefaultSource() Source { return globalSource{} }

// Window is an inclusive range of wall-clock minutes within a day.
type Window struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// DefaultWindow is 07:00 through 09:30.
func DefaultWindow() Window {
	return Window{StartHour: 7, StartMinute: 0, EndHour: 9, EndMinute: 30}
}

// ParseWindow builds a window from two "HH:MM" values.
func ParseWindow(start, end string) (Window, error) {
	sh, sm, err := timeutils.ParseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("window start: %w", err)
	}
	eh, em, err := timeutils.ParseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("window end: %w", err)
	}
	w := Window{StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em}
	return w, w.Validate()
}

func (w Window) startMinutes() int { return w.StartHour*60 + w.StartMinute }
func (w Window) endMinutes() int   { return w.EndHour*60 + w.EndMinute }

func (w Window) Validate() error {
	for _, v := range []struct {
		name  string
		value int
		max   int
	}{
		{"start hour", w.StartHour, 23},
		{"start minute", w.StartMinute, 59},
		{"end hour", w.EndHour, 23},
		{"end minute", w.EndMinute, 59},
	} {
		if v.value < 0 || v.value > v.max {
			return fmt.Errorf("invalid window: %s %d out of range", v.name, v.value)
		}
	}
	if w.endMinutes() < w.startMinutes() {
		return fmt.Errorf("invalid window: end %02d:%02d is before start %02d:%02d",
			w.EndHour, w.EndMinute, w.StartHour, w.StartMinute)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.StartHour, w.StartMinute, w.EndHour, w.EndMinute)
}

// ClockTime is an hour and minute of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Randomizer picks uniformly distributed times inside a window.
type Randomizer struct {
	window Window
	src    Source
}

func NewRandomizer(window Window, src Source) (*Randomizer, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = DefaultSource()
	}
	return &Randomizer{window: window, src: src}, nil
}

// PickTime returns a minute in [start, end], both ends included.
func (r *Randomizer) PickTime() ClockTime {
	span := r.window.endMinutes() - r.window.startMinutes()
	m := r.window.startMinutes() + r.src.IntN(span+1)
	return ClockTime{Hour: m / 60, Minute: m % 60}
}

func (r *Randomizer) Window() Window {
	return r.window
}
