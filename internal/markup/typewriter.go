package markup

import (
	"context"
	"time"
)

const (
	MinDelay = 10 * time.Millisecond
	MaxDelay = 50 * time.Millisecond

	// Longer content reveals faster so the whole animation stays near this.
	revealBudget = 2 * time.Second
)

// Sink receives the markup of the entry being revealed.
type Sink interface {
	SetMarkup(markup string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(markup string)

func (f SinkFunc) SetMarkup(markup string) { f(markup) }

// Clock suspends the reveal between characters.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SystemClock sleeps in real time.
var SystemClock Clock = systemClock{}

// Delay is the pause between two reveal steps for content of the given length.
func Delay(length int) time.Duration {
	if length <= 0 {
		return MaxDelay
	}
	d := revealBudget / time.Duration(length)
	if d < MinDelay {
		return MinDelay
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}

// Typewriter reveals markup character by character.
type Typewriter struct {
	clock         Clock
	reducedMotion func() bool
	scroll        func()
}

type Option func(*Typewriter)

func WithClock(clock Clock) Option {
	return func(tw *Typewriter) {
		tw.clock = clock
	}
}

// WithReducedMotion installs the accessibility preference probe. It is asked
// once per reveal.
func WithReducedMotion(prefers func() bool) Option {
	return func(tw *Typewriter) {
		tw.reducedMotion = prefers
	}
}

// WithScroll sets the side effect triggered on every reveal step.
func WithScroll(scroll func()) Option {
	return func(tw *Typewriter) {
		tw.scroll = scroll
	}
}

func NewTypewriter(opts ...Option) *Typewriter {
	tw := &Typewriter{
		clock:         SystemClock,
		reducedMotion: func() bool { return false },
		scroll:        func() {},
	}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

// Reveal animates content into sink and returns once all of it is visible.
// Reduced motion writes the full content at once. The loop has no
// cancellation of its own; a cancelled ctx only skips the remaining delays,
// and the sink still ends up holding the full content.
func (tw *Typewriter) Reveal(ctx context.Context, sink Sink, content string) {
	if tw.reducedMotion() {
		sink.SetMarkup(content)
		return
	}

	plan := NewPlan(content)
	delay := Delay(plan.Len())

	for i := 0; i <= plan.Len(); i++ {
		sink.SetMarkup(plan.Frame(i))
		tw.scroll()

		if i < plan.Len() {
			if err := tw.clock.Sleep(ctx, delay); err != nil {
				sink.SetMarkup(content)
				tw.scroll()
				return
			}
		}
	}
}
