package bulletml

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/engine"
)

var log = commonlog.GetLogger("danmaku.bulletml")

// Interpreter runs BulletML patterns against a Host
// The coordinate convention is read from the host each time a root is bound
type Interpreter struct {
	host engine.Host
}

var _ engine.Interpreter = (*Interpreter)(nil)

// NewInterpreter returns an interpreter calling back into host
func NewInterpreter(host engine.Host) *Interpreter {
	return &Interpreter{host: host}
}

// BindRoot starts every top action of p on root
func (in *Interpreter) BindRoot(root *engine.Mover, p engine.Pattern) error {
	bp, ok := p.(*Pattern)
	if !ok {
		return fmt.Errorf("bulletml: cannot bind pattern of type %T", p)
	}
	r := newRunner(in.host, in.host.Convention(), bp.Orientation() == Horizontal)
	for _, top := range bp.tops {
		r.start(top, nil)
	}
	root.Script = r
	log.Debugf("bound %s with %d top action(s)", bp.name, len(bp.tops))
	return nil
}

// Parser adapts Parse to the pattern store's parser contract
type Parser struct{}

func (Parser) Parse(name string, r io.Reader) (engine.Pattern, error) {
	p, err := Parse(name, r)
	if err != nil {
		return nil, err
	}
	return p, nil
}
