package policy

// Carry is the opaque state a policy threads between steps (recurrent
// hidden state, running observation normalizers, etc.). The control loop
// never inspects it.
type Carry any

// Runtime is the opaque (init_fn, step_fn) pair loaded from an Archive. Any
// concrete implementation - an ONNX runtime binding, a subprocess bridge, or
// a mock for testing - satisfies this interface; the control loop is
// agnostic to how Step is implemented.
type Runtime interface {
	// Init returns the initial carry state, computed once before the
	// control loop starts ticking.
	Init() (Carry, error)

	// Step evaluates one control-loop tick: observation in, action vector
	// and updated carry out.
	Step(observation []float64, carry Carry) (action []float64, next Carry, err error)
}

// NoopRuntime is a Runtime whose Init returns a nil carry and whose Step
// always returns a zero action vector of length ActionDim together with the
// carry it was given. Useful for wiring tests and dry runs without a real
// inference backend.
type NoopRuntime struct {
	ActionDim int
}

func (r NoopRuntime) Init() (Carry, error) { return nil, nil }

func (r NoopRuntime) Step(observation []float64, carry Carry) ([]float64, Carry, error) {
	return make([]float64, r.ActionDim), carry, nil
}
