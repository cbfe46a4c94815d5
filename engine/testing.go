package engine

// ScriptFunc adapts a function to Script for tests and simple emitters
type ScriptFunc struct {
	Step func(m *Mover, dt float64)
	Done func() bool
}

func (s *ScriptFunc) Advance(m *Mover, dt float64) {
	if s.Step != nil {
		s.Step(m, dt)
	}
}

func (s *ScriptFunc) Finished() bool {
	return s.Done != nil && s.Done()
}
