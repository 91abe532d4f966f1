package arbor

import (
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation advances by dt seconds per Update and reports when it is done.
type Animation interface {
	Update(dt float32) (done bool)
}

// AnimationID identifies a started animation.
type AnimationID uint32

// Animator is the animation-runner capability views consume: start with a
// completion callback, cancel before completion.
type Animator interface {
	Start(a Animation, onComplete func()) AnimationID
	Cancel(id AnimationID) bool
}

// TweenGroup animates up to 4 float64 values of a View simultaneously.
// Create one via the convenience constructors (TweenTranslation,
// TweenScale, ...) and drive it with an AnimationRunner or Update(dt). The
// group re-applies the values through the view's setters each step, so
// clamping and transform re-application still happen. If the target view
// is destroyed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float64
	apply  func(vals []float64)
	target *View
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values. Reports
// whether the group is done.
func (g *TweenGroup) Update(dt float32) bool {
	if g.Done {
		return true
	}
	if g.target != nil && g.target.Destroyed() {
		g.Done = true
		return true
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.values[:g.count])
	return g.Done
}

// TweenTranslation animates the view's translation to (toX, toY).
func TweenTranslation(v *View, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: v}
	g.tweens[0] = gween.New(float32(v.tx), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(v.ty), float32(toY), duration, fn)
	g.apply = func(vals []float64) { v.SetTranslation(vals[0], vals[1]) }
	return g
}

// TweenRotation animates the view's rotation to the target in radians.
func TweenRotation(v *View, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: v}
	g.tweens[0] = gween.New(float32(v.rotation), float32(to), duration, fn)
	g.apply = func(vals []float64) { v.SetRotation(vals[0]) }
	return g
}

// TweenScale animates the view's scale. Values are clamped as by SetScale.
func TweenScale(v *View, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: v}
	g.tweens[0] = gween.New(float32(v.scale), float32(to), duration, fn)
	g.apply = func(vals []float64) { v.SetScale(vals[0]) }
	return g
}

// TweenOpacity animates the view's opacity channel.
func TweenOpacity(v *View, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: v}
	g.tweens[0] = gween.New(float32(v.opacity), float32(to), duration, fn)
	g.apply = func(vals []float64) { v.SetOpacity(vals[0]) }
	return g
}

// --- Runner ---

type runningAnimation struct {
	id         AnimationID
	anim       Animation
	onComplete func()
}

// AnimationRunner is the default Animator. Call Update once per frame.
type AnimationRunner struct {
	nextID  AnimationID
	running []runningAnimation
}

// NewAnimationRunner creates an idle runner.
func NewAnimationRunner() *AnimationRunner {
	return &AnimationRunner{}
}

// Start queues a for updates. onComplete (may be nil) runs once, after the
// update in which a reports done.
func (r *AnimationRunner) Start(a Animation, onComplete func()) AnimationID {
	r.nextID++
	r.running = append(r.running, runningAnimation{id: r.nextID, anim: a, onComplete: onComplete})
	return r.nextID
}

// Cancel stops the animation without running its completion callback.
func (r *AnimationRunner) Cancel(id AnimationID) bool {
	i := slices.IndexFunc(r.running, func(ra runningAnimation) bool { return ra.id == id })
	if i < 0 {
		return false
	}
	r.running = slices.Delete(r.running, i, i+1)
	return true
}

// Update advances every running animation by dt seconds and runs the
// completion callbacks of those that finished. Callbacks may start or
// cancel animations; new ones first update on the next call.
func (r *AnimationRunner) Update(dt float32) {
	var finished []runningAnimation
	for _, ra := range slices.Clone(r.running) {
		if !slices.ContainsFunc(r.running, func(cur runningAnimation) bool { return cur.id == ra.id }) {
			continue
		}
		if ra.anim.Update(dt) {
			r.Cancel(ra.id)
			finished = append(finished, ra)
		}
	}
	for _, ra := range finished {
		if ra.onComplete != nil {
			ra.onComplete()
		}
	}
}

// Active returns the number of running animations.
func (r *AnimationRunner) Active() int {
	return len(r.running)
}

// Animate starts anim on a and propagates EventAnimationEnd with anim as
// data when it completes.
func (v *View) Animate(a Animator, anim Animation) AnimationID {
	return a.Start(anim, func() {
		if !v.Destroyed() {
			v.Propagate(EventAnimationEnd, anim)
		}
	})
}
