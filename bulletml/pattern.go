package bulletml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lixenwraith/vi-danmaku/engine"
)

var (
	ErrNotBulletML  = errors.New("root element is not <bulletml>")
	ErrNoTopAction  = errors.New("no action labelled top*")
	ErrUnknownLabel = errors.New("unknown label")
	ErrRecursion    = errors.New("action re-enters itself without a wait")
)

// Orientation is the shooter layout declared on the root element
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

// node is the raw XML tree, element order is significant for actions
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*node    `xml:",any"`
}

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *node) child(name string) *node {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

// ===== COMPILED DEFINITIONS =====

type valueKind uint8

const (
	kindAim valueKind = iota
	kindAbsolute
	kindRelative
	kindSequence
)

type valueSpec struct {
	kind  valueKind
	value expr
}

type actionDef struct {
	label string
	steps []step
}

type bulletDef struct {
	label     string
	direction *valueSpec
	speed     *valueSpec
	sprite    expr
	actions   []*actionRef
}

type fireDef struct {
	label     string
	direction *valueSpec
	speed     *valueSpec
	bullet    *bulletRef
}

// refs hold either an inline definition or a label resolved after parsing
type actionRef struct {
	label  string
	def    *actionDef
	params []expr
}

type bulletRef struct {
	label  string
	def    *bulletDef
	params []expr
}

type fireRef struct {
	label  string
	def    *fireDef
	params []expr
}

type step interface{ isStep() }

type (
	fireStep   struct{ ref *fireRef }
	waitStep   struct{ frames expr }
	vanishStep struct{}
	actionStep struct{ ref *actionRef }
	repeatStep struct {
		times  expr
		action *actionRef
	}
	changeSpeedStep struct {
		speed valueSpec
		term  expr
	}
	changeDirectionStep struct {
		direction valueSpec
		term      expr
	}
	accelStep struct {
		horizontal *valueSpec
		vertical   *valueSpec
		term       expr
	}
	spriteStep struct{ index expr }
	scaleStep  struct{ scale expr }
	tintStep   struct{ color engine.Color }
)

func (fireStep) isStep()            {}
func (waitStep) isStep()            {}
func (vanishStep) isStep()          {}
func (actionStep) isStep()          {}
func (repeatStep) isStep()          {}
func (changeSpeedStep) isStep()     {}
func (changeDirectionStep) isStep() {}
func (accelStep) isStep()           {}
func (spriteStep) isStep()          {}
func (scaleStep) isStep()           {}
func (tintStep) isStep()            {}

// Pattern is a compiled BulletML document
type Pattern struct {
	name        string
	orientation Orientation
	tops        []*actionDef
	actions     map[string]*actionDef
	bullets     map[string]*bulletDef
	fires       map[string]*fireDef

	defs []*actionDef // every action, labelled or inline

	pendingActions []*actionRef
	pendingBullets []*bulletRef
	pendingFires   []*fireRef
}

var _ engine.Pattern = (*Pattern)(nil)

func (p *Pattern) Name() string { return p.name }

func (p *Pattern) Orientation() Orientation { return p.orientation }

// TopActions returns the labels of the actions started on a root mover
func (p *Pattern) TopActions() []string {
	labels := make([]string, len(p.tops))
	for i, a := range p.tops {
		labels[i] = a.label
	}
	return labels
}

// Parse reads a BulletML document
func Parse(name string, r io.Reader) (*Pattern, error) {
	var root node
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if root.XMLName.Local != "bulletml" {
		return nil, fmt.Errorf("%s: %w (found <%s>)", name, ErrNotBulletML, root.XMLName.Local)
	}

	p := &Pattern{
		name:    name,
		actions: make(map[string]*actionDef),
		bullets: make(map[string]*bulletDef),
		fires:   make(map[string]*fireDef),
	}
	switch strings.ToLower(root.attr("type")) {
	case "", "none", "vertical":
		p.orientation = Vertical
	case "horizontal":
		p.orientation = Horizontal
	default:
		return nil, fmt.Errorf("%s: unknown bulletml type %q", name, root.attr("type"))
	}

	for _, c := range root.Children {
		var err error
		switch c.XMLName.Local {
		case "action":
			_, err = p.compileAction(c)
		case "bullet":
			_, err = p.compileBullet(c)
		case "fire":
			_, err = p.compileFire(c)
		default:
			err = fmt.Errorf("unexpected <%s> under <bulletml>", c.XMLName.Local)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := p.resolve(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(p.tops) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoTopAction)
	}
	return p, nil
}

func checkLabel(kind, label string, exists bool) error {
	if exists {
		return fmt.Errorf("duplicate %s label %q", kind, label)
	}
	return nil
}

func (p *Pattern) compileAction(n *node) (*actionDef, error) {
	a := &actionDef{label: n.attr("label")}
	p.defs = append(p.defs, a)
	if a.label != "" {
		if err := checkLabel("action", a.label, p.actions[a.label] != nil); err != nil {
			return nil, err
		}
		p.actions[a.label] = a
		if strings.HasPrefix(a.label, "top") {
			p.tops = append(p.tops, a)
		}
	}

	for _, c := range n.Children {
		s, err := p.compileStep(c)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", a.label, err)
		}
		a.steps = append(a.steps, s)
	}
	return a, nil
}

func (p *Pattern) compileStep(n *node) (step, error) {
	switch n.XMLName.Local {
	case "fire", "fireRef":
		ref, err := p.compileFireRef(n)
		if err != nil {
			return nil, err
		}
		return fireStep{ref: ref}, nil

	case "action", "actionRef":
		ref, err := p.compileActionRef(n)
		if err != nil {
			return nil, err
		}
		return actionStep{ref: ref}, nil

	case "wait":
		e, err := compileExpr(n.Text)
		if err != nil {
			return nil, err
		}
		return waitStep{frames: e}, nil

	case "vanish":
		return vanishStep{}, nil

	case "repeat":
		timesNode := n.child("times")
		if timesNode == nil {
			return nil, errors.New("<repeat> without <times>")
		}
		times, err := compileExpr(timesNode.Text)
		if err != nil {
			return nil, err
		}
		var body *node
		for _, c := range n.Children {
			if c.XMLName.Local == "action" || c.XMLName.Local == "actionRef" {
				body = c
				break
			}
		}
		if body == nil {
			return nil, errors.New("<repeat> without <action> or <actionRef>")
		}
		ref, err := p.compileActionRef(body)
		if err != nil {
			return nil, err
		}
		return repeatStep{times: times, action: ref}, nil

	case "changeSpeed":
		spec, term, err := p.changeBody(n, "speed")
		if err != nil {
			return nil, err
		}
		return changeSpeedStep{speed: *spec, term: term}, nil

	case "changeDirection":
		spec, term, err := p.changeBody(n, "direction")
		if err != nil {
			return nil, err
		}
		return changeDirectionStep{direction: *spec, term: term}, nil

	case "accel":
		termNode := n.child("term")
		if termNode == nil {
			return nil, errors.New("<accel> without <term>")
		}
		term, err := compileExpr(termNode.Text)
		if err != nil {
			return nil, err
		}
		s := accelStep{term: term}
		if h := n.child("horizontal"); h != nil {
			if s.horizontal, err = compileValue(h, kindAbsolute); err != nil {
				return nil, err
			}
		}
		if v := n.child("vertical"); v != nil {
			if s.vertical, err = compileValue(v, kindAbsolute); err != nil {
				return nil, err
			}
		}
		return s, nil

	case "sprite":
		e, err := compileExpr(n.Text)
		if err != nil {
			return nil, err
		}
		return spriteStep{index: e}, nil

	case "scale":
		e, err := compileExpr(n.Text)
		if err != nil {
			return nil, err
		}
		return scaleStep{scale: e}, nil

	case "tint", "color":
		c, err := engine.ParseColor(n.Text)
		if err != nil {
			return nil, err
		}
		return tintStep{color: c}, nil
	}
	return nil, fmt.Errorf("unexpected <%s> in action", n.XMLName.Local)
}

func (p *Pattern) changeBody(n *node, valueName string) (*valueSpec, expr, error) {
	v := n.child(valueName)
	if v == nil {
		return nil, nil, fmt.Errorf("<%s> without <%s>", n.XMLName.Local, valueName)
	}
	termNode := n.child("term")
	if termNode == nil {
		return nil, nil, fmt.Errorf("<%s> without <term>", n.XMLName.Local)
	}
	def := kindAbsolute
	if valueName == "direction" {
		def = kindAim
	}
	spec, err := compileValue(v, def)
	if err != nil {
		return nil, nil, err
	}
	term, err := compileExpr(termNode.Text)
	if err != nil {
		return nil, nil, err
	}
	return spec, term, nil
}

func (p *Pattern) compileBullet(n *node) (*bulletDef, error) {
	b := &bulletDef{label: n.attr("label")}
	if b.label != "" {
		if err := checkLabel("bullet", b.label, p.bullets[b.label] != nil); err != nil {
			return nil, err
		}
		p.bullets[b.label] = b
	}

	var err error
	for _, c := range n.Children {
		switch c.XMLName.Local {
		case "direction":
			b.direction, err = compileValue(c, kindAim)
		case "speed":
			b.speed, err = compileValue(c, kindAbsolute)
		case "sprite":
			b.sprite, err = compileExpr(c.Text)
		case "action", "actionRef":
			var ref *actionRef
			ref, err = p.compileActionRef(c)
			b.actions = append(b.actions, ref)
		default:
			err = fmt.Errorf("unexpected <%s> in bullet", c.XMLName.Local)
		}
		if err != nil {
			return nil, fmt.Errorf("bullet %q: %w", b.label, err)
		}
	}
	return b, nil
}

func (p *Pattern) compileFire(n *node) (*fireDef, error) {
	f := &fireDef{label: n.attr("label")}
	if f.label != "" {
		if err := checkLabel("fire", f.label, p.fires[f.label] != nil); err != nil {
			return nil, err
		}
		p.fires[f.label] = f
	}

	var err error
	for _, c := range n.Children {
		switch c.XMLName.Local {
		case "direction":
			f.direction, err = compileValue(c, kindAim)
		case "speed":
			f.speed, err = compileValue(c, kindAbsolute)
		case "bullet", "bulletRef":
			f.bullet, err = p.compileBulletRef(c)
		default:
			err = fmt.Errorf("unexpected <%s> in fire", c.XMLName.Local)
		}
		if err != nil {
			return nil, fmt.Errorf("fire %q: %w", f.label, err)
		}
	}
	if f.bullet == nil {
		return nil, fmt.Errorf("fire %q: missing <bullet> or <bulletRef>", f.label)
	}
	return f, nil
}

func compileParams(n *node) ([]expr, error) {
	var params []expr
	for _, c := range n.Children {
		if c.XMLName.Local != "param" {
			continue
		}
		e, err := compileExpr(c.Text)
		if err != nil {
			return nil, err
		}
		params = append(params, e)
	}
	return params, nil
}

func (p *Pattern) compileActionRef(n *node) (*actionRef, error) {
	if n.XMLName.Local == "action" {
		def, err := p.compileAction(n)
		if err != nil {
			return nil, err
		}
		return &actionRef{def: def}, nil
	}
	params, err := compileParams(n)
	if err != nil {
		return nil, err
	}
	ref := &actionRef{label: n.attr("label"), params: params}
	p.pendingActions = append(p.pendingActions, ref)
	return ref, nil
}

func (p *Pattern) compileBulletRef(n *node) (*bulletRef, error) {
	if n.XMLName.Local == "bullet" {
		def, err := p.compileBullet(n)
		if err != nil {
			return nil, err
		}
		return &bulletRef{def: def}, nil
	}
	params, err := compileParams(n)
	if err != nil {
		return nil, err
	}
	ref := &bulletRef{label: n.attr("label"), params: params}
	p.pendingBullets = append(p.pendingBullets, ref)
	return ref, nil
}

func (p *Pattern) compileFireRef(n *node) (*fireRef, error) {
	if n.XMLName.Local == "fire" {
		def, err := p.compileFire(n)
		if err != nil {
			return nil, err
		}
		return &fireRef{def: def}, nil
	}
	params, err := compileParams(n)
	if err != nil {
		return nil, err
	}
	ref := &fireRef{label: n.attr("label"), params: params}
	p.pendingFires = append(p.pendingFires, ref)
	return ref, nil
}

// resolve binds labelled references once every definition is known
func (p *Pattern) resolve() error {
	for _, r := range p.pendingActions {
		if r.def = p.actions[r.label]; r.def == nil {
			return fmt.Errorf("actionRef %q: %w", r.label, ErrUnknownLabel)
		}
	}
	for _, r := range p.pendingBullets {
		if r.def = p.bullets[r.label]; r.def == nil {
			return fmt.Errorf("bulletRef %q: %w", r.label, ErrUnknownLabel)
		}
	}
	for _, r := range p.pendingFires {
		if r.def = p.fires[r.label]; r.def == nil {
			return fmt.Errorf("fireRef %q: %w", r.label, ErrUnknownLabel)
		}
	}
	p.pendingActions, p.pendingBullets, p.pendingFires = nil, nil, nil
	return newRecursionCheck().check(p.defs)
}

// recursionCheck finds action cycles that run without passing a wait
type recursionCheck struct {
	waits map[*actionDef]bool
	state map[*actionDef]uint8 // 1 on the DFS path, 2 finished
}

func newRecursionCheck() *recursionCheck {
	return &recursionCheck{
		waits: make(map[*actionDef]bool),
		state: make(map[*actionDef]uint8),
	}
}

func (c *recursionCheck) check(defs []*actionDef) error {
	for _, a := range defs {
		if err := c.visit(a); err != nil {
			return err
		}
	}
	return nil
}

func (c *recursionCheck) visit(a *actionDef) error {
	switch c.state[a] {
	case 1:
		return fmt.Errorf("action %q: %w", a.label, ErrRecursion)
	case 2:
		return nil
	}
	c.state[a] = 1
	for _, next := range c.immediate(a) {
		if err := c.visit(next); err != nil {
			return err
		}
	}
	c.state[a] = 2
	return nil
}

// immediate lists the actions a enters before its first wait
func (c *recursionCheck) immediate(a *actionDef) []*actionDef {
	var out []*actionDef
	for _, s := range a.steps {
		var def *actionDef
		switch s := s.(type) {
		case waitStep:
			return out
		case actionStep:
			def = s.ref.def
		case repeatStep:
			def = s.action.def
		default:
			continue
		}
		out = append(out, def)
		if c.waitsIn(def) {
			return out
		}
	}
	return out
}

// waitsIn reports whether running a reaches a wait, cycles count as not waiting
func (c *recursionCheck) waitsIn(a *actionDef) bool {
	if w, ok := c.waits[a]; ok {
		return w
	}
	c.waits[a] = false
	w := false
	for _, s := range a.steps {
		switch s := s.(type) {
		case waitStep:
			w = true
		case actionStep:
			w = c.waitsIn(s.ref.def)
		case repeatStep:
			w = c.waitsIn(s.action.def)
		}
		if w {
			break
		}
	}
	c.waits[a] = w
	return w
}

func compileValue(n *node, def valueKind) (*valueSpec, error) {
	kind := def
	switch strings.ToLower(n.attr("type")) {
	case "":
	case "aim":
		kind = kindAim
	case "absolute":
		kind = kindAbsolute
	case "relative":
		kind = kindRelative
	case "sequence":
		kind = kindSequence
	default:
		return nil, fmt.Errorf("<%s>: unknown type %q", n.XMLName.Local, n.attr("type"))
	}
	e, err := compileExpr(n.Text)
	if err != nil {
		return nil, fmt.Errorf("<%s>: %w", n.XMLName.Local, err)
	}
	return &valueSpec{kind: kind, value: e}, nil
}
