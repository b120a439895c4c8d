// Package motion moves a point along eased piecewise linear paths. It
// provides the external transform an anchor follows.
package motion

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/spatial/r3"
)

// Leg is a straight segment of a Path ending at To after Duration seconds.
type Leg struct {
	To       r3.Vec
	Duration float64
}

// Path is a sequence of legs traveled one after the other, each eased
// with the same easing function. The zero value is not usable.
type Path struct {
	start  r3.Vec
	legs   []Leg
	easing ease.TweenFunc

	leg     int
	elapsed float64 // time into the current leg.
	from    r3.Vec
	pos     r3.Vec
	tween   *gween.Tween
}

// NewPath returns a Path starting at start. A nil easing is linear.
func NewPath(easing ease.TweenFunc, start r3.Vec, legs ...Leg) (*Path, error) {
	if len(legs) == 0 {
		return nil, errors.New("path needs at least one leg")
	}
	for i, l := range legs {
		if !(l.Duration > 0) || math.IsInf(l.Duration, 0) {
			return nil, fmt.Errorf("leg %d: duration %g must be positive and finite", i, l.Duration)
		}
	}
	if easing == nil {
		easing = ease.Linear
	}
	p := &Path{start: start, legs: legs, easing: easing}
	p.Reset()
	return p, nil
}

// Reset rewinds the path to its start.
func (p *Path) Reset() {
	p.leg = 0
	p.elapsed = 0
	p.from = p.start
	p.pos = p.start
	p.tween = p.newTween(0)
}

func (p *Path) newTween(leg int) *gween.Tween {
	return gween.New(0, 1, float32(p.legs[leg].Duration), p.easing)
}

// Update advances the path by dt seconds and returns the new position and
// whether the end of the last leg was reached. Time left over at the end of
// a leg carries into the next.
func (p *Path) Update(dt float64) (r3.Vec, bool) {
	for dt > 0 && !p.Done() {
		l := p.legs[p.leg]
		remaining := l.Duration - p.elapsed
		if dt < remaining {
			progress, _ := p.tween.Update(float32(dt))
			p.elapsed += dt
			p.pos = lerp(p.from, l.To, float64(progress))
			return p.pos, false
		}
		// Leg finished, snap to its end to avoid float32 drift.
		dt -= remaining
		p.pos = l.To
		p.from = l.To
		p.leg++
		p.elapsed = 0
		if p.leg < len(p.legs) {
			p.tween = p.newTween(p.leg)
		}
	}
	return p.pos, p.Done()
}

// Position returns the current position on the path.
func (p *Path) Position() r3.Vec { return p.pos }

// Done reports whether the path has been traveled completely.
func (p *Path) Done() bool { return p.leg >= len(p.legs) }

// Duration returns the total time to travel the path.
func (p *Path) Duration() (total float64) {
	for _, l := range p.legs {
		total += l.Duration
	}
	return total
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"insine":     ease.InSine,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
	"outbounce":  ease.OutBounce,
	"outelastic": ease.OutElastic,
}

// Easing looks up an easing function by its case insensitive name,
// such as "linear" or "inOutQuad".
func Easing(name string) (ease.TweenFunc, error) {
	f, ok := easings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q, want one of %s", name, strings.Join(EasingNames(), ", "))
	}
	return f, nil
}

// EasingNames returns the sorted names accepted by Easing.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
