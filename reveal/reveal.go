// Package reveal implements the fade-and-rise-on-scroll behavior used by every
// section of the portfolio.
//
// A Unit starts hidden (transparent, shifted down by Offset pixels). The first
// time a VisibilityObserver reports its region as visible, the unit begins a
// one-shot transition to its resting state and stays there for the rest of
// its life. Units mounted without an observer are shown in their final state
// immediately.
package reveal

import (
	"strconv"
	"strings"
	"time"
)

const (
	// Offset is the initial downward shift of a hidden unit, in pixels.
	Offset = 24.0

	// Duration is the length of the reveal transition.
	Duration = 600 * time.Millisecond

	// DefaultMargin shrinks the viewport by 100px on every side, so units
	// trigger once they are well inside the visible area.
	DefaultMargin = -100.0

	// Easing is the CSS timing function matching EaseOut.
	Easing = "cubic-bezier(0,0,0.58,1)"
)

// State is the lifecycle position of a Unit.
type State int

const (
	Hidden State = iota
	Revealing
	Revealed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealing:
		return "revealing"
	case Revealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// Trigger describes when a region counts as visible.
type Trigger struct {
	// Margin is applied to the viewport before testing; negative shrinks it.
	Margin float64
	// Amount is the visible fraction required. Zero means any overlap.
	Amount float64
}

// VisibilityObserver delivers a one-shot notification when a region becomes
// visible. The returned cancel func unsubscribes; calling it after the
// notification fired is a no-op.
type VisibilityObserver interface {
	Observe(target Rect, t Trigger, onVisible func()) (cancel func())
}

// ClientSide hands observation to the browser. It never fires on the server,
// so units mounted with it render hidden and the page script finishes the
// reveal.
type ClientSide struct{}

// Observe implements VisibilityObserver.
func (ClientSide) Observe(Rect, Trigger, func()) func() { return func() {} }

// Unit is a single reveal-on-scroll wrapper. It is owned by one component
// instance and is not safe for concurrent use.
type Unit struct {
	delay   time.Duration
	trigger Trigger
	now     func() time.Time

	mounted     bool
	unmounted   bool
	triggered   bool
	immediate   bool
	triggeredAt time.Time
	cancel      func()
}

// Option configures a Unit.
type Option func(*Unit)

// WithDelay postpones the transition, used to stagger siblings.
func WithDelay(d time.Duration) Option {
	return func(u *Unit) {
		if d > 0 {
			u.delay = d
		}
	}
}

// WithMargin overrides DefaultMargin.
func WithMargin(px float64) Option {
	return func(u *Unit) { u.trigger.Margin = px }
}

// WithAmount sets the visible fraction needed to trigger.
func WithAmount(f float64) Option {
	return func(u *Unit) { u.trigger.Amount = min(max(f, 0), 1) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *Unit) { u.now = now }
}

// New returns a hidden, unmounted Unit.
func New(opts ...Option) *Unit {
	u := &Unit{
		trigger: Trigger{Margin: DefaultMargin},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Delay returns the configured stagger delay.
func (u *Unit) Delay() time.Duration { return u.delay }

// Trigger returns the visibility condition.
func (u *Unit) Trigger() Trigger { return u.trigger }

// Triggered reports whether the unit has ever become visible.
func (u *Unit) Triggered() bool { return u.triggered }

// Mount subscribes target with obs. A nil observer means visibility cannot be
// observed, so the unit is shown at once. Mount is effective only once.
func (u *Unit) Mount(obs VisibilityObserver, target Rect) {
	if u.mounted || u.unmounted {
		return
	}
	u.mounted = true
	if obs == nil {
		u.triggered = true
		u.immediate = true
		return
	}
	cancel := obs.Observe(target, u.trigger, u.onVisible)
	if u.triggered {
		cancel()
		return
	}
	u.cancel = cancel
}

// Unmount drops the subscription. Notifications arriving afterwards are
// ignored.
func (u *Unit) Unmount() {
	u.unmounted = true
	u.release()
}

func (u *Unit) onVisible() {
	if u.triggered || u.unmounted {
		return
	}
	u.triggered = true
	u.triggeredAt = u.now()
	u.release()
}

func (u *Unit) release() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

// State derives the lifecycle position from the trigger time and the clock.
func (u *Unit) State() State {
	switch {
	case !u.triggered:
		return Hidden
	case u.immediate:
		return Revealed
	case u.now().Sub(u.triggeredAt) < u.delay+Duration:
		return Revealing
	default:
		return Revealed
	}
}

// Style is the visual state of a unit at one instant.
type Style struct {
	Opacity float64
	OffsetY float64
}

// Initial is the style of every hidden unit.
func Initial() Style { return Style{Opacity: 0, OffsetY: Offset} }

// Final is the style of every revealed unit.
func Final() Style { return Style{Opacity: 1, OffsetY: 0} }

// Style returns the interpolated visual state.
func (u *Unit) Style() Style {
	switch u.State() {
	case Hidden:
		return Initial()
	case Revealed:
		return Final()
	}
	elapsed := u.now().Sub(u.triggeredAt) - u.delay
	if elapsed <= 0 {
		return Initial()
	}
	e := EaseOut(float64(elapsed) / float64(Duration))
	return Style{Opacity: e, OffsetY: Offset * (1 - e)}
}

// CSS renders s as inline style declarations.
func (s Style) CSS() string {
	if s.OffsetY == 0 {
		return "opacity:" + formatFloat(s.Opacity) + ";transform:none"
	}
	return "opacity:" + formatFloat(s.Opacity) + ";transform:translateY(" + formatFloat(s.OffsetY) + "px)"
}

// Transition returns the CSS transition the browser should run when the unit
// reveals.
func (u *Unit) Transition() string {
	timing := strconv.FormatInt(Duration.Milliseconds(), 10) + "ms " + Easing + " " +
		strconv.FormatInt(u.delay.Milliseconds(), 10) + "ms"
	return strings.Join([]string{"opacity " + timing, "transform " + timing}, ",")
}

// EaseOut evaluates the cubic-bezier(0,0,0.58,1) timing curve at progress p.
func EaseOut(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	const x2 = 0.58
	bez := func(t, c2 float64) float64 {
		mt := 1 - t
		return 3*mt*t*t*c2 + t*t*t
	}
	lo, hi := 0.0, 1.0
	t := p
	for i := 0; i < 32; i++ {
		x := bez(t, x2)
		if x < p {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bez(t, 1)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
