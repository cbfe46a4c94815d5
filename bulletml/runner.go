package bulletml

import (
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

const (
	// FrameRate converts simulation seconds into BulletML frames
	FrameRate = 60
	// maxStepsPerFrame stops a script that loops without waiting
	maxStepsPerFrame = 4096
	// maxCallDepth stops a thread whose action nesting keeps growing
	maxCallDepth = 256
	// defaultSpeed applies to fires without any speed element
	defaultSpeed = 1
)

// frame is one activation record of an action
type frame struct {
	steps  []step
	pc     int
	params []float64
	repeat int // remaining iterations when the frame is a repeat body
}

// thread executes one action tree
type thread struct {
	stack []*frame
	wait  int
}

func (t *thread) done() bool { return len(t.stack) == 0 }

// change interpolates a scalar over a number of frames
type change struct {
	delta  float64
	frames int
}

func (c *change) active() bool { return c.frames > 0 }

// runner is the Script attached to every mover the interpreter drives
type runner struct {
	host  engine.Host
	yDown bool
	horiz bool

	threads []*thread

	direction float64 // degrees, 0 = up, clockwise
	speed     float64 // units per frame
	accel     vmath.Vec2

	speedChange change
	dirChange   change
	accelXCh    change
	accelYCh    change

	lastFireDir   float64
	lastFireSpeed float64
	hasFired      bool

	carry    float64
	vanished bool
}

var _ engine.Script = (*runner)(nil)

func newRunner(host engine.Host, conv engine.Convention, horiz bool) *runner {
	return &runner{
		host:  host,
		yDown: conv == engine.YDown,
		horiz: horiz,
	}
}

func (r *runner) start(a *actionDef, params []float64) {
	if a == nil {
		return
	}
	r.threads = append(r.threads, &thread{stack: []*frame{{steps: a.steps, params: params, repeat: 1}}})
}

// Finished reports whether every action thread ran to completion
func (r *runner) Finished() bool {
	if r.vanished {
		return true
	}
	for _, t := range r.threads {
		if !t.done() {
			return false
		}
	}
	return true
}

// Advance runs as many whole frames as dt covers
func (r *runner) Advance(m *engine.Mover, dt float64) {
	r.carry += dt * FrameRate
	for r.carry >= 1-1e-9 && !r.vanished {
		r.carry--
		r.frame(m)
	}
	if r.carry < 0 {
		r.carry = 0
	}
}

// frame executes actions, applies pending changes and moves the mover
func (r *runner) frame(m *engine.Mover) {
	for _, t := range r.threads {
		r.run(t, m)
		if r.vanished {
			return
		}
	}

	if r.speedChange.active() {
		r.speed += r.speedChange.delta
		r.speedChange.frames--
	}
	if r.dirChange.active() {
		r.direction = vmath.NormalizeDegrees(r.direction + r.dirChange.delta)
		r.dirChange.frames--
	}
	if r.accelXCh.active() {
		r.accel.X += r.accelXCh.delta
		r.accelXCh.frames--
	}
	if r.accelYCh.active() {
		r.accel.Y += r.accelYCh.delta
		r.accelYCh.frames--
	}

	vel := vmath.Heading(r.direction, r.yDown).Scale(r.speed)
	acc := r.accel
	if !r.yDown {
		acc.Y = -acc.Y
	}
	m.Pos = m.Pos.Add(vel).Add(acc)
	m.Rotation = r.direction
}

func (r *runner) env(f *frame) *env {
	return &env{params: f.params, rand: r.host.RandomFloat, rank: r.host.Rank()}
}

func evalParams(es []expr, e *env) []float64 {
	if len(es) == 0 {
		return nil
	}
	out := make([]float64, len(es))
	for i, x := range es {
		out[i] = x(e)
	}
	return out
}

// run executes steps of one thread until it waits or finishes
func (r *runner) run(t *thread, m *engine.Mover) {
	if t.wait > 0 {
		t.wait--
		if t.wait > 0 {
			return
		}
	}

	for steps := 0; !t.done() && steps < maxStepsPerFrame; steps++ {
		f := t.stack[len(t.stack)-1]
		if f.pc >= len(f.steps) {
			f.repeat--
			if f.repeat > 0 {
				f.pc = 0
				continue
			}
			t.stack = t.stack[:len(t.stack)-1]
			continue
		}

		s := f.steps[f.pc]
		f.pc++
		e := r.env(f)

		switch s := s.(type) {
		case waitStep:
			if n := int(s.frames(e)); n > 0 {
				t.wait = n
				return
			}

		case vanishStep:
			r.vanished = true
			r.host.Despawn(m)
			return

		case fireStep:
			r.fire(m, s.ref, e)

		case actionStep:
			if r.tooDeep(t) {
				return
			}
			t.stack = append(t.stack, &frame{
				steps:  s.ref.def.steps,
				params: r.refParams(s.ref.params, f, e),
				repeat: 1,
			})

		case repeatStep:
			if n := int(s.times(e)); n > 0 {
				if r.tooDeep(t) {
					return
				}
				t.stack = append(t.stack, &frame{
					steps:  s.action.def.steps,
					params: r.refParams(s.action.params, f, e),
					repeat: n,
				})
			}

		case changeSpeedStep:
			r.startSpeedChange(s, e)

		case changeDirectionStep:
			r.startDirectionChange(m, s, e)

		case accelStep:
			r.startAccel(s, e)

		case spriteStep:
			m.Sprite = int(s.index(e))

		case scaleStep:
			m.Scale = s.scale(e)

		case tintStep:
			m.Tint = s.color
		}
	}
}

// tooDeep ends t when another frame would exceed maxCallDepth
func (r *runner) tooDeep(t *thread) bool {
	if len(t.stack) < maxCallDepth {
		return false
	}
	log.Warningf("action nesting exceeds %d frames, stopping thread", maxCallDepth)
	t.stack = nil
	return true
}

// refParams evaluates reference params, an inline definition inherits the caller's
func (r *runner) refParams(es []expr, f *frame, e *env) []float64 {
	if len(es) == 0 {
		return f.params
	}
	return evalParams(es, e)
}

func (r *runner) aimDirection(m *engine.Mover) float64 {
	return vmath.DirectionTo(m.Pos, r.host.TargetPosition(m), r.yDown)
}

// absolute converts a document angle into the vertical frame used internally
func (r *runner) absolute(v float64) float64 {
	if r.horiz {
		return v + 90
	}
	return v
}

func (r *runner) fire(m *engine.Mover, ref *fireRef, callerEnv *env) {
	def := ref.def
	fireEnv := callerEnv
	if len(ref.params) > 0 {
		fireEnv = &env{params: evalParams(ref.params, callerEnv), rand: callerEnv.rand, rank: callerEnv.rank}
	}

	b := def.bullet.def
	bulletEnv := fireEnv
	if len(def.bullet.params) > 0 {
		bulletEnv = &env{params: evalParams(def.bullet.params, fireEnv), rand: fireEnv.rand, rank: fireEnv.rank}
	}

	dirSpec := def.direction
	dirEnv := fireEnv
	if dirSpec == nil {
		dirSpec, dirEnv = b.direction, bulletEnv
	}
	dir := r.aimDirection(m)
	if dirSpec != nil {
		v := dirSpec.value(dirEnv)
		switch dirSpec.kind {
		case kindAim:
			dir += v
		case kindAbsolute:
			dir = r.absolute(v)
		case kindRelative:
			dir = r.direction + v
		case kindSequence:
			if r.hasFired {
				dir = r.lastFireDir + v
			}
		}
	}
	dir = vmath.NormalizeDegrees(dir)

	speedSpec := def.speed
	speedEnv := fireEnv
	if speedSpec == nil {
		speedSpec, speedEnv = b.speed, bulletEnv
	}
	speed := float64(defaultSpeed)
	if speedSpec != nil {
		v := speedSpec.value(speedEnv)
		switch speedSpec.kind {
		case kindRelative:
			speed = r.speed + v
		case kindSequence:
			if r.hasFired {
				speed = r.lastFireSpeed + v
			} else {
				speed = v
			}
		default:
			speed = v
		}
	}

	r.lastFireDir, r.lastFireSpeed, r.hasFired = dir, speed, true

	child := r.host.Spawn(engine.KindPooled)
	child.Pos = m.Pos
	if b.sprite != nil {
		child.Sprite = int(b.sprite(bulletEnv))
	}
	child.Rotation = dir

	cr := newRunner(r.host, conventionOf(r.yDown), r.horiz)
	cr.direction = dir
	cr.speed = speed
	for _, a := range b.actions {
		params := bulletEnv.params
		if len(a.params) > 0 {
			params = evalParams(a.params, bulletEnv)
		}
		cr.start(a.def, params)
	}
	child.Script = cr
}

func conventionOf(yDown bool) engine.Convention {
	if yDown {
		return engine.YDown
	}
	return engine.YUp
}

func termFrames(term expr, e *env) int {
	n := int(term(e))
	if n < 1 {
		n = 1
	}
	return n
}

func (r *runner) startSpeedChange(s changeSpeedStep, e *env) {
	term := termFrames(s.term, e)
	v := s.speed.value(e)
	var delta float64
	switch s.speed.kind {
	case kindSequence:
		delta = v
	case kindRelative:
		delta = v / float64(term)
	default:
		delta = (v - r.speed) / float64(term)
	}
	r.speedChange = change{delta: delta, frames: term}
}

func (r *runner) startDirectionChange(m *engine.Mover, s changeDirectionStep, e *env) {
	term := termFrames(s.term, e)
	v := s.direction.value(e)
	var delta float64
	switch s.direction.kind {
	case kindSequence:
		delta = v
	case kindAbsolute:
		delta = vmath.NormalizeDegrees(r.absolute(v)-r.direction) / float64(term)
	case kindRelative:
		delta = v / float64(term)
	default:
		delta = vmath.NormalizeDegrees(r.aimDirection(m)+v-r.direction) / float64(term)
	}
	r.dirChange = change{delta: delta, frames: term}
}

func (r *runner) startAccel(s accelStep, e *env) {
	term := termFrames(s.term, e)
	plan := func(spec *valueSpec, current float64) change {
		if spec == nil {
			return change{}
		}
		v := spec.value(e)
		switch spec.kind {
		case kindSequence:
			return change{delta: v, frames: term}
		case kindRelative:
			return change{delta: v / float64(term), frames: term}
		}
		return change{delta: (v - current) / float64(term), frames: term}
	}
	r.accelXCh = plan(s.horizontal, r.accel.X)
	r.accelYCh = plan(s.vertical, r.accel.Y)
}
