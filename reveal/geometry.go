package reveal

import "sort"

// Rect is an axis-aligned region in page coordinates. Units are CSS pixels
// and y grows downward.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Expand grows r by px on every side. A negative px shrinks it, never below
// zero size.
func (r Rect) Expand(px float64) Rect {
	out := Rect{X: r.X - px, Y: r.Y - px, Width: r.Width + 2*px, Height: r.Height + 2*px}
	if out.Width < 0 {
		out.X += out.Width / 2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Y += out.Height / 2
		out.Height = 0
	}
	return out
}

// Intersect returns the overlap of r and o. ok is false when the two do not
// share any area.
func (r Rect) Intersect(o Rect) (overlap Rect, ok bool) {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// VisibleFraction reports how much of target lies inside viewport once the
// viewport has been adjusted by margin.
func VisibleFraction(target, viewport Rect, margin float64) float64 {
	if target.Area() == 0 {
		return 0
	}
	overlap, ok := target.Intersect(viewport.Expand(margin))
	if !ok {
		return 0
	}
	return overlap.Area() / target.Area()
}

// Crossed reports whether target satisfies t against viewport.
func Crossed(target, viewport Rect, t Trigger) bool {
	frac := VisibleFraction(target, viewport, t.Margin)
	if t.Amount <= 0 {
		return frac > 0
	}
	return frac >= t.Amount
}

// GeometryObserver evaluates subscribed regions against a scrolling
// viewport. It must be driven from a single goroutine, like the UI event
// loop it stands in for.
type GeometryObserver struct {
	viewport Rect
	next     int
	subs     map[int]subscription
}

type subscription struct {
	target  Rect
	trigger Trigger
	fn      func()
}

// NewGeometryObserver returns an observer whose viewport starts at viewport.
func NewGeometryObserver(viewport Rect) *GeometryObserver {
	return &GeometryObserver{
		viewport: viewport,
		subs:     make(map[int]subscription),
	}
}

// Observe subscribes target. A region already inside the viewport is
// notified before Observe returns. Each subscription fires at most once.
func (g *GeometryObserver) Observe(target Rect, t Trigger, onVisible func()) func() {
	id := g.next
	g.next++
	g.subs[id] = subscription{target: target, trigger: t, fn: onVisible}
	g.check(id)
	return func() { delete(g.subs, id) }
}

// ScrollTo moves the top edge of the viewport to y and notifies every region
// that became visible.
func (g *GeometryObserver) ScrollTo(y float64) {
	g.viewport.Y = y
	g.evaluate()
}

// Resize changes the viewport size, keeping its origin.
func (g *GeometryObserver) Resize(width, height float64) {
	g.viewport.Width = width
	g.viewport.Height = height
	g.evaluate()
}

// Viewport returns the current viewport.
func (g *GeometryObserver) Viewport() Rect { return g.viewport }

// Pending returns the number of subscriptions that have not fired yet.
func (g *GeometryObserver) Pending() int { return len(g.subs) }

func (g *GeometryObserver) evaluate() {
	ids := make([]int, 0, len(g.subs))
	for id := range g.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		g.check(id)
	}
}

func (g *GeometryObserver) check(id int) {
	s, ok := g.subs[id]
	if !ok || !Crossed(s.target, g.viewport, s.trigger) {
		return
	}
	delete(g.subs, id)
	s.fn()
}
